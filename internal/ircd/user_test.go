package ircd

import (
	"testing"

	"github.com/emberircd/emberd/internal/xline"
	"github.com/stretchr/testify/require"
)

func TestUserMatchHostFormatsIdentAtHost(t *testing.T) {
	u := &User{Ident: "alice", Host: "host.example.com"}
	require.Equal(t, "alice@host.example.com", u.MatchHost())
}

func TestUserPrefixFormatsNickIdentHost(t *testing.T) {
	u := &User{Nick: "alice", Ident: "al", Host: "host.example.com"}
	require.Equal(t, "alice!al@host.example.com", u.Prefix())
}

func TestCloneKeyMasksIPv6ToFourGroups(t *testing.T) {
	require.Equal(t, "2001:db8:1:2", cloneKey("2001:db8:1:2:3:4:5:6"))
	require.Equal(t, "192.0.2.1", cloneKey("192.0.2.1"))
}

func TestApplyXLineIsNoOpWithoutConn(t *testing.T) {
	u := newUser("uuid-1", nil)
	// Must not panic even though there is no connection or server to quit.
	u.ApplyXLine(xline.KindGline, "test reason")
}
