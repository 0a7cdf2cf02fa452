package ircd

import (
	"fmt"
	"time"

	"github.com/emberircd/emberd/internal/ircmsg"
	"github.com/emberircd/emberd/internal/ircstring"
)

func isValidNick(nick string) bool {
	if nick == "" || len(nick) > 30 {
		return false
	}
	first := nick[0]
	if !(isAlpha(first) || first == '[' || first == ']' || first == '\\' || first == '`' || first == '_' || first == '^' || first == '{' || first == '}' || first == '|') {
		return false
	}
	for i := 1; i < len(nick); i++ {
		c := nick[i]
		if !(isAlpha(c) || isDigit(c) || c == '[' || c == ']' || c == '\\' || c == '`' || c == '_' || c == '^' || c == '{' || c == '}' || c == '|' || c == '-') {
			return false
		}
	}
	return true
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func cmdNick(s *Server, u *User, m ircmsg.Message) CmdResult {
	newNick := m.Params[0]
	if !isValidNick(newNick) {
		s.numeric(u, errErroneousNick, newNick+" :Erroneous nickname")
		return CmdFailure
	}

	folded := ircstring.FoldNick(newNick)
	if existing, ok := s.users[folded]; ok && existing != u {
		s.numeric(u, errNickInUse, newNick+" :Nickname is already in use")
		return CmdFailure
	}

	oldKey := u.listKey
	oldNick := u.Nick
	u.Nick = newNick
	u.listKey = folded
	delete(s.users, oldKey)
	s.users[folded] = u

	switch u.Registered {
	case RegNone:
		u.Registered = RegNick
	case RegUser:
		u.Registered = RegNickUser
	case RegAll:
		s.broadcastToCommonChannels(u, fmt.Sprintf(":%s!%s@%s NICK :%s", oldNick, u.Ident, u.Host, newNick))
		u.send(fmt.Sprintf(":%s!%s@%s NICK :%s", oldNick, u.Ident, u.Host, newNick))
	}
	return CmdSuccess
}

func cmdUser(s *Server, u *User, m ircmsg.Message) CmdResult {
	if u.Registered == RegUser || u.Registered == RegNickUser || u.Registered == RegAll {
		s.numeric(u, errAlreadyRegistred, ":You may not reregister")
		return CmdFailure
	}

	u.Ident = sanitizeIdent(m.Params[0])
	u.Realname = m.Params[len(m.Params)-1]

	switch u.Registered {
	case RegNone:
		u.Registered = RegUser
	case RegNick:
		u.Registered = RegNickUser
	}
	return CmdSuccess
}

func sanitizeIdent(raw string) string {
	if raw == "" {
		return "unknown"
	}
	if len(raw) > 12 {
		raw = raw[:12]
	}
	return raw
}

func cmdPass(s *Server, u *User, m ircmsg.Message) CmdResult {
	u.pendingPass = m.Params[0]
	return CmdSuccess
}

func cmdPing(s *Server, u *User, m ircmsg.Message) CmdResult {
	target := s.Name
	if len(m.Params) > 0 {
		target = m.Params[0]
	}
	u.send(fmt.Sprintf(":%s PONG %s :%s", s.Name, s.Name, target))
	return CmdSuccess
}

func cmdPong(s *Server, u *User, m ircmsg.Message) CmdResult {
	u.LastPing = true
	return CmdSuccess
}

func cmdQuit(s *Server, u *User, m ircmsg.Message) CmdResult {
	reason := "Client Quit"
	if len(m.Params) > 0 {
		reason = m.Params[0]
	}
	s.QuitUser(u, reason, "")
	return CmdSuccess
}

// fullConnect promotes a NICKUSER user to ALL, sending the welcome
// numerics (§4.H, GLOSSARY "FullConnect").
func (s *Server) fullConnect(u *User) {
	u.Registered = RegAll
	s.unregisteredCount--

	u.send(fmt.Sprintf(":%s %s %s :Welcome to the %s IRC Network %s!%s@%s", s.Name, rplWelcome, u.Nick, s.Network, u.Nick, u.Ident, u.Host))
	u.send(fmt.Sprintf(":%s %s %s :Your host is %s, running emberd", s.Name, rplYourHost, u.Nick, s.Name))
	u.send(fmt.Sprintf(":%s %s %s :This server was created %s", s.Name, rplCreated, u.Nick, s.Created.Format(time.RFC1123)))
	u.send(fmt.Sprintf(":%s %s %s %s emberd-0 o o", s.Name, rplMyInfo, u.Nick, s.Name))
	u.send(fmt.Sprintf(":%s %s %s :%s", s.Name, rplMotdStart, u.Nick, s.Name))
	u.send(fmt.Sprintf(":%s %s %s :No MOTD configured", s.Name, errNoMotd, u.Nick))

	s.Metrics.UsersRegistered.Inc()
}
