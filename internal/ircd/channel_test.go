package ircd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobLikeMatchesWildcards(t *testing.T) {
	require.True(t, globLike("*!*@*.example.com", "nick!user@host.example.com"))
	require.True(t, globLike("nick!*@*", "nick!user@host"))
	require.False(t, globLike("nick!*@*", "other!user@host"))
	require.True(t, globLike("n?ck!*@*", "nick!user@host"))
}

func TestChannelIsBannedRespectsExceptions(t *testing.T) {
	ch := newChannel("#test")
	ch.bans = append(ch.bans, "*!*@banned.example.com")
	ch.excepts = append(ch.excepts, "*!good@banned.example.com")

	banned := &User{Ident: "bad", Host: "banned.example.com"}
	require.True(t, ch.isBanned(banned))

	excepted := &User{Ident: "good", Host: "banned.example.com"}
	require.False(t, ch.isBanned(excepted))

	clean := &User{Ident: "bad", Host: "clean.example.com"}
	require.False(t, ch.isBanned(clean))
}

func TestChannelMembershipAndStatus(t *testing.T) {
	ch := newChannel("#test")
	u := &User{UUID: "u1", Nick: "alice"}

	require.Nil(t, ch.memberOf(u))
	require.Equal(t, StatusNone, ch.statusOf(u))

	ch.addMember(u, StatusOp)
	require.Equal(t, StatusOp, ch.statusOf(u))
	require.Equal(t, 1, ch.memberCount())

	ch.removeMember(u)
	require.Equal(t, 0, ch.memberCount())
	require.Nil(t, ch.memberOf(u))
}

func TestChannelModeStringRendersFlagsAndParams(t *testing.T) {
	ch := newChannel("#test")
	ch.modes['n'] = true
	ch.modes['t'] = true
	ch.key = "secret"
	ch.limit = 50

	letters, params := ch.modeString()
	require.Contains(t, letters, "n")
	require.Contains(t, letters, "t")
	require.Contains(t, letters, "k")
	require.Contains(t, letters, "l")
	require.Equal(t, []string{"secret", "50"}, params)
}

func TestChannelInviteConsumptionIsOneShot(t *testing.T) {
	ch := newChannel("#test")
	require.False(t, ch.consumeInvite("uuid-1"))

	ch.addInvite("uuid-1", inviteTTL)
	require.True(t, ch.consumeInvite("uuid-1"))
	require.False(t, ch.consumeInvite("uuid-1"))
}
