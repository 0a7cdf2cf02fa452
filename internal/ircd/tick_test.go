package ircd

import (
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/emberircd/emberd/internal/config"
	"github.com/stretchr/testify/require"
)

func tickTestServer() *Server {
	cfg := &config.Config{
		ServerName: "test.emberd",
		Network:    "TestNet",
		Options:    config.Options{CaseMapping: "rfc1459"},
		Connect: []config.Class{{
			Name:         "users",
			PingInterval: 60,
			RegTimeout:   30,
			CommandRate:  5,
		}},
	}
	return New(cfg, log.New(io.Discard, "", 0), nil)
}

func insertUser(s *Server, u *User) {
	u.listKey = u.foldedNick()
	s.uuids[u.UUID] = u
	s.users[u.listKey] = u
}

func TestTickDecaysFloodPenalty(t *testing.T) {
	s := tickTestServer()
	u := newUser("u1", nil)
	u.Nick = "alice"
	u.Class = &s.cfg.Connect[0]
	u.FloodPenalty = 12
	insertUser(s, u)

	s.tick()
	require.Equal(t, 7, u.FloodPenalty)

	s.tick()
	require.Equal(t, 2, u.FloodPenalty)

	s.tick()
	require.Equal(t, 0, u.FloodPenalty, "penalty must not go negative")
}

func TestTickSendsPingThenTimesOut(t *testing.T) {
	s := tickTestServer()
	u := newUser("u1", nil)
	u.Nick = "alice"
	u.Registered = RegAll
	u.Class = &s.cfg.Connect[0]
	u.LastPing = true
	u.NPing = time.Now().Add(-time.Second)
	insertUser(s, u)

	s.tick()
	require.False(t, u.LastPing)
	require.True(t, u.NPing.After(time.Now()))

	// Force the next check to see an overdue, un-ponged NPing.
	u.NPing = time.Now().Add(-time.Second)
	s.tick()
	require.True(t, u.Quitting, "a user that never PONGs must be disconnected")
}

// TestAcceptConnStartsWithPingAnswered exercises the real connection-setup
// path (not a hand-built User) to guard against LastPing's zero value
// being mistaken for "never answered": a freshly accepted connection must
// reach its first overdue NPing by receiving a PING, not an immediate
// timeout quit.
func TestAcceptConnStartsWithPingAnswered(t *testing.T) {
	s := tickTestServer()
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()

	s.acceptConn(serverSide, "users")

	u := s.snapshotUsers()[0]
	require.True(t, u.LastPing, "a just-accepted connection must start as if its last ping was answered")

	u.Registered = RegAll
	u.NPing = time.Now().Add(-time.Second)
	s.tick()

	require.False(t, u.Quitting, "the first overdue NPing must send a PING, not quit the user")
	require.False(t, u.LastPing)
}

func TestTickRegistrationTimeout(t *testing.T) {
	s := tickTestServer()
	u := newUser("u1", nil)
	u.Nick = "alice"
	u.Registered = RegNick
	u.Class = &s.cfg.Connect[0]
	u.Signon = time.Now().Add(-time.Hour)
	insertUser(s, u)

	s.tick()
	require.True(t, u.Quitting)
}

func TestGarbageCollectResetsDedupCounters(t *testing.T) {
	s := tickTestServer()
	u := newUser("u1", nil)
	u.alreadySent = 42
	insertUser(s, u)
	s.alreadySentID = 7

	s.garbageCollect()
	require.Zero(t, s.alreadySentID)
	require.Zero(t, u.alreadySent)
}
