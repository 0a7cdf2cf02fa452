package ircd

import (
	"fmt"
	"strings"
	"time"

	"github.com/emberircd/emberd/internal/config"
	"github.com/emberircd/emberd/internal/extension"
	"github.com/emberircd/emberd/internal/ircstring"
	"github.com/emberircd/emberd/internal/xline"
)

// Registered is the per-connection registration state machine (§3).
type Registered int

const (
	RegNone Registered = iota
	RegNick
	RegUser
	RegNickUser
	RegAll
)

// User is exclusively owned by the Server's event-loop goroutine; nothing
// outside that goroutine may read or write its fields.
type User struct {
	UUID     string
	Nick     string
	Ident    string
	Host     string
	RealHost string
	IP       string
	Realname string
	Server   string // server name the user is introduced from

	Class *config.Class

	Registered   Registered
	Signon       time.Time
	NPing        time.Time
	LastPing     bool
	FloodPenalty int
	Quitting     bool
	Exempt       bool

	Invisible bool
	Oper      bool
	Wallops   bool
	Snomask   string
	OperName  string
	Privs     []string

	AwayMessage string
	pendingPass string

	channels map[string]*Channel // folded name -> channel
	invites  map[string]time.Time

	alreadySent uint64

	listKey string // current key under which Server.users indexes this user

	ext *extension.Map

	conn *Conn
}

func newUser(uuid string, conn *Conn) *User {
	return &User{
		UUID:     uuid,
		channels: make(map[string]*Channel),
		invites:  make(map[string]time.Time),
		ext:      &extension.Map{},
		conn:     conn,
		Signon:   time.Now(),
	}
}

// MatchHost implements xline.Matchable.
func (u *User) MatchHost() string {
	return fmt.Sprintf("%s@%s", u.Ident, u.Host)
}

// MatchIP implements xline.Matchable.
func (u *User) MatchIP() string { return u.IP }

// MatchNick implements xline.Matchable.
func (u *User) MatchNick() string { return u.Nick }

// ApplyXLine implements xline.Applier: the side effect of a matched X-line
// is always a quit, formatted with the line's reason.
func (u *User) ApplyXLine(kind xline.Kind, reason string) {
	if u.conn == nil || u.conn.server == nil {
		return
	}
	u.conn.server.QuitUser(u, fmt.Sprintf("%s-Lined: %s", kind, reason), "")
}

// Prefix returns the nick!ident@host form used as a message source.
func (u *User) Prefix() string {
	return fmt.Sprintf("%s!%s@%s", u.Nick, u.Ident, u.Host)
}

// foldedNick is the clientlist index key.
func (u *User) foldedNick() string {
	return ircstring.FoldNick(u.Nick)
}

// cloneKey is the CIDR-masked key used for clone counting. A /64 mask is
// used for anything that parses as IPv6, a /32 (i.e. the whole address) for
// IPv4 — matching the original's "host part of the address" clone key.
func cloneKey(ip string) string {
	if strings.Count(ip, ":") >= 2 {
		parts := strings.Split(ip, ":")
		if len(parts) > 4 {
			parts = parts[:4]
		}
		return strings.Join(parts, ":")
	}
	return ip
}

// IsOnChannel reports whether u has a membership in the channel folded as
// name.
func (u *User) IsOnChannel(foldedName string) bool {
	_, ok := u.channels[foldedName]
	return ok
}

// send writes one already-formatted line to the user's connection. If the
// line does not fit in the SendQ, the user is quit with "SendQ exceeded".
func (u *User) send(line string) {
	if u.conn == nil {
		return
	}
	if err := u.conn.maybeQueueMessage(line); err != nil && u.conn.server != nil {
		u.conn.server.QuitUser(u, "SendQ exceeded", "")
	}
}

// sendNumeric formats a numeric reply from serverName to target and sends it.
func (u *User) sendNumeric(serverName, numeric, target, rest string) {
	u.send(fmt.Sprintf(":%s %s %s %s", serverName, numeric, target, rest))
}
