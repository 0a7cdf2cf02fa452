package ircd

import (
	"fmt"
	"sort"
	"time"

	"github.com/emberircd/emberd/internal/ircstring"
)

// Status is a member's channel rank, highest value wins when several
// ranks need comparing.
type Status int

const (
	StatusNone Status = iota
	StatusVoice
	StatusHalfOp
	StatusOp
)

type member struct {
	user   *User
	status Status
}

// Channel is owned by the Server's channels map; a channel is destroyed
// once its membership becomes empty (§4.E).
type Channel struct {
	Name    string // display form
	folded  string
	Created time.Time

	Topic      string
	TopicSetBy string
	TopicSetAt time.Time

	modes map[byte]bool   // arity-0 modes: i m n p s t
	key   string          // +k parameter, "" if unset
	limit int             // +l parameter, 0 if unset
	bans  []string        // +b masks, insertion order
	excepts []string      // +e masks, insertion order

	members map[string]*member // user UUID -> member
	invites map[string]time.Time
}

func newChannel(name string) *Channel {
	return &Channel{
		Name:    name,
		folded:  ircstring.FoldChannel(name),
		Created: time.Now(),
		modes:   make(map[byte]bool),
		members: make(map[string]*member),
		invites: make(map[string]time.Time),
	}
}

func (c *Channel) memberCount() int { return len(c.members) }

func (c *Channel) memberOf(u *User) *member {
	return c.members[u.UUID]
}

func (c *Channel) statusOf(u *User) Status {
	if m := c.memberOf(u); m != nil {
		return m.status
	}
	return StatusNone
}

func (c *Channel) addMember(u *User, status Status) {
	c.members[u.UUID] = &member{user: u, status: status}
}

func (c *Channel) removeMember(u *User) {
	delete(c.members, u.UUID)
}

// prefixFor returns the "@"/"%"/"+" sigil for a member's status, used in
// NAMES and WHO output.
func prefixFor(s Status) string {
	switch s {
	case StatusOp:
		return "@"
	case StatusHalfOp:
		return "%"
	case StatusVoice:
		return "+"
	default:
		return ""
	}
}

// sortedMembers returns members ordered by folded nick, for deterministic
// NAMES/WHO output.
func (c *Channel) sortedMembers() []*member {
	out := make([]*member, 0, len(c.members))
	for _, m := range c.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].user.foldedNick() < out[j].user.foldedNick()
	})
	return out
}

func (c *Channel) isBanned(u *User) bool {
	mask := u.Prefix()
	for _, e := range c.excepts {
		if globLike(e, mask) {
			return false
		}
	}
	for _, b := range c.bans {
		if globLike(b, mask) {
			return true
		}
	}
	return false
}

// globLike is the same classic '*'/'?' glob the X-line store uses for its
// masks; internal/xline keeps its matcher unexported, so channel bans (which
// are checked against the channel's own ban list, not the X-line store)
// carry their own copy here.
func globLike(pattern, subject string) bool {
	cm := ircstring.Active()
	return globMatch(cm.FoldString(pattern), cm.FoldString(subject))
}

func globMatch(pattern, subject string) bool {
	if pattern == "" {
		return subject == ""
	}
	switch pattern[0] {
	case '*':
		if globMatch(pattern[1:], subject) {
			return true
		}
		for i := 0; i < len(subject); i++ {
			if globMatch(pattern[1:], subject[i+1:]) {
				return true
			}
		}
		return false
	case '?':
		if subject == "" {
			return false
		}
		return globMatch(pattern[1:], subject[1:])
	default:
		if subject == "" || pattern[0] != subject[0] {
			return false
		}
		return globMatch(pattern[1:], subject[1:])
	}
}

func (c *Channel) isInviteOnly() bool { return c.modes['i'] }
func (c *Channel) isModerated() bool  { return c.modes['m'] }
func (c *Channel) isSecret() bool     { return c.modes['s'] }
func (c *Channel) isPrivate() bool    { return c.modes['p'] }
func (c *Channel) topicLocked() bool  { return c.modes['t'] }
func (c *Channel) noExternal() bool   { return c.modes['n'] }

func (c *Channel) consumeInvite(uuid string) bool {
	exp, ok := c.invites[uuid]
	if !ok {
		return false
	}
	delete(c.invites, uuid)
	return exp.IsZero() || time.Now().Before(exp)
}

func (c *Channel) addInvite(uuid string, ttl time.Duration) {
	c.invites[uuid] = time.Now().Add(ttl)
}

func (c *Channel) purgeExpiredInvites() {
	now := time.Now()
	for uuid, exp := range c.invites {
		if !exp.IsZero() && now.After(exp) {
			delete(c.invites, uuid)
		}
	}
}

// modeString renders the channel's arity-0/arity-1 modes as a MODE-line
// fragment, e.g. "+nt" or "+kl secret 50".
func (c *Channel) modeString() (string, []string) {
	letters := "+"
	var params []string
	for _, l := range []byte("ntmpsi") {
		if c.modes[l] {
			letters += string(l)
		}
	}
	if c.key != "" {
		letters += "k"
		params = append(params, c.key)
	}
	if c.limit > 0 {
		letters += "l"
		params = append(params, fmt.Sprintf("%d", c.limit))
	}
	return letters, params
}
