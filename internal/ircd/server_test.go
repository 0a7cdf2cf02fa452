package ircd

import (
	"bufio"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/emberircd/emberd/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	cfg := &config.Config{
		ServerName: "test.emberd",
		Network:    "TestNet",
		Options:    config.Options{CaseMapping: "rfc1459"},
		Connect: []config.Class{{
			Name:         "users",
			MaxConns:     10,
			PingInterval: 120,
			RegTimeout:   60,
			CommandRate:  100,
			PenaltyCap:   1000,
			SendQMax:     1 << 20,
			RecvQMax:     8192,
			MaxQuitLen:   300,
		}},
	}

	srv := New(cfg, log.New(io.Discard, "", 0), nil)
	go srv.Run()
	t.Cleanup(srv.Shutdown)
	return srv
}

// testClient wraps the client side of a net.Pipe connected directly into
// the server via acceptConn, bypassing a real TCP listener so the harness
// runs in-process without binding a port.
type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func connectClient(t *testing.T, srv *Server) *testClient {
	serverSide, clientSide := net.Pipe()
	srv.acceptConn(serverSide, "users")
	return &testClient{t: t, conn: clientSide, r: bufio.NewReader(clientSide)}
}

func (c *testClient) send(line string) {
	require.NoError(c.t, c.conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := c.conn.Write([]byte(line + "\r\n"))
	require.NoError(c.t, err)
}

func (c *testClient) readLine() string {
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := c.r.ReadString('\n')
	require.NoError(c.t, err)
	return line
}

// expect reads lines until one contains substr, failing the test if none
// does within a bounded number of reads.
func (c *testClient) expect(substr string) string {
	for i := 0; i < 20; i++ {
		line := c.readLine()
		if containsSubstr(line, substr) {
			return line
		}
	}
	c.t.Fatalf("did not see line containing %q", substr)
	return ""
}

func containsSubstr(s, substr string) bool {
	return len(substr) == 0 || indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func register(t *testing.T, c *testClient, nick string) {
	c.send("NICK " + nick)
	c.send("USER " + nick + " 0 * :" + nick + " Real Name")
	c.expect(" 001 ")
}

func TestRegistrationHappyPath(t *testing.T) {
	srv := newTestServer(t)
	c := connectClient(t, srv)

	c.send("NICK alice")
	c.send("USER alice 0 * :Alice")

	c.expect(" 001 ")
	c.expect(" 002 ")
	c.expect(" 003 ")
	c.expect(" 004 ")
}

func TestCaseInsensitiveNickCollision(t *testing.T) {
	srv := newTestServer(t)
	alice := connectClient(t, srv)
	register(t, alice, "alice")

	bob := connectClient(t, srv)
	bob.send("NICK Alice")
	line := bob.expect(" 433 ")
	require.Contains(t, line, "Alice")
}

func TestScandinavianNickCollision(t *testing.T) {
	srv := newTestServer(t)
	alice := connectClient(t, srv)
	register(t, alice, "foo[bar")

	carol := connectClient(t, srv)
	carol.send("NICK foo{bar")
	carol.expect(" 433 ")
}

func TestChannelJoinAndPrivmsgBroadcast(t *testing.T) {
	srv := newTestServer(t)

	alice := connectClient(t, srv)
	register(t, alice, "alice")
	bob := connectClient(t, srv)
	register(t, bob, "bob")

	alice.send("JOIN #test")
	alice.expect("JOIN #test")
	bob.send("JOIN #test")
	bob.expect("JOIN #test")
	// Alice sees Bob's join too.
	alice.expect("bob!")

	alice.send("PRIVMSG #test :hello")
	line := bob.expect("PRIVMSG #test :hello")
	require.Contains(t, line, "alice!")
}

func TestModeStackingEmitsSingleLine(t *testing.T) {
	srv := newTestServer(t)

	op := connectClient(t, srv)
	register(t, op, "op")
	op.send("JOIN #test")
	op.expect("JOIN #test")

	bob := connectClient(t, srv)
	register(t, bob, "bob")
	bob.send("JOIN #test")
	bob.expect("JOIN #test")
	op.expect("bob!")

	op.send("MODE #test +o-v+b bob bob *!*@evil.example")
	op.expect("MODE #test +o-v+b bob bob *!*@evil.example")
}

func TestQuitIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	alice := connectClient(t, srv)
	register(t, alice, "alice")

	u := srv.findUser("alice")
	require.NotNil(t, u)

	srv.QuitUser(u, "bye", "")
	require.True(t, u.Quitting)
	_, stillIndexed := srv.uuids[u.UUID]
	require.False(t, stillIndexed)

	// Second call must be a no-op: no panic, no double clone decrement.
	srv.QuitUser(u, "bye again", "")
}
