package ircd

import (
	"fmt"
	"time"

	"github.com/emberircd/emberd/internal/hooks"
	"github.com/emberircd/emberd/internal/ircmsg"
	"github.com/emberircd/emberd/internal/xline"
	"golang.org/x/crypto/bcrypt"
)

func cmdOper(s *Server, u *User, m ircmsg.Message) CmdResult {
	name, pass := m.Params[0], m.Params[1]

	oper := s.cfg.FindOper(name)
	if oper == nil || bcrypt.CompareHashAndPassword([]byte(oper.PasswordHash), []byte(pass)) != nil {
		s.numeric(u, errPasswdMismatch, ":Password incorrect")
		return CmdFailure
	}

	u.Oper = true
	u.OperName = name
	u.Privs = oper.Privileges
	s.numeric(u, rplYoureOper, ":You are now an IRC operator")
	s.serverNotice('o', fmt.Sprintf("%s (%s) is now an operator", u.Nick, u.MatchHost()))
	return CmdSuccess
}

func cmdKill(s *Server, u *User, m ircmsg.Message) CmdResult {
	target := s.findUser(m.Params[0])
	if target == nil {
		s.numeric(u, errNoSuchNick, m.Params[0]+" :No such nick/channel")
		return CmdFailure
	}
	reason := "Killed"
	if len(m.Params) > 1 {
		reason = m.Params[1]
	}
	s.serverNotice('o', fmt.Sprintf("Received KILL for %s from %s: %s", target.Nick, u.Nick, reason))
	s.QuitUser(target, fmt.Sprintf("Killed (%s (%s))", u.Nick, reason), reason)
	return CmdSuccess
}

func xlineCommand(kind xline.Kind, snomaskFlag byte) func(s *Server, u *User, m ircmsg.Message) CmdResult {
	return func(s *Server, u *User, m ircmsg.Message) CmdResult {
		mask := m.Params[0]

		if len(m.Params) > 1 && m.Params[1] == "-" {
			if s.XLines.Del(kind, mask) {
				s.Hooks.Broadcast(hooks.OnDelGLine, u, kind, mask)
				s.serverNotice(snomaskFlag, fmt.Sprintf("%s removed %s-Line on %s", u.Nick, kind, mask))
				return CmdSuccess
			}
			s.serverNotice(snomaskFlag, fmt.Sprintf("%s: no such %s-Line on %s", u.Nick, kind, mask))
			return CmdFailure
		}

		reason := "No reason given"
		if len(m.Params) > 1 {
			reason = m.Params[len(m.Params)-1]
		}

		line := &xline.Line{Kind: kind, Mask: mask, Reason: reason, SetBy: u.Nick, SetAt: time.Now()}
		s.XLines.Add(line)
		s.Hooks.Broadcast(hooks.OnAddGLine, u, line)
		s.serverNotice(snomaskFlag, fmt.Sprintf("%s added %s-Line on %s: %s", u.Nick, kind, mask, reason))

		for _, target := range s.snapshotUsers() {
			if target.Quitting || target.Exempt {
				continue
			}
			if s.XLines.Matches(kind, target) != nil {
				line.Apply(target)
			}
		}
		return CmdSuccess
	}
}

func cmdRehash(s *Server, u *User, m ircmsg.Message) CmdResult {
	path := ""
	if len(m.Params) > 0 {
		path = m.Params[0]
	}
	s.numeric(u, rplRehashing, ":Rehashing")
	if path == "" {
		return CmdSuccess
	}
	if err := s.Rehash(path); err != nil {
		s.serverNotice('o', fmt.Sprintf("Rehash failed: %+v", err))
		return CmdFailure
	}
	s.serverNotice('o', fmt.Sprintf("%s rehashed configuration", u.Nick))
	return CmdSuccess
}

func cmdStats(s *Server, u *User, m ircmsg.Message) CmdResult {
	query := "u"
	if len(m.Params) > 0 {
		query = m.Params[0]
	}

	switch query {
	case "k", "K":
		statsXLines(s, u, xline.KindKline)
	case "g", "G":
		statsXLines(s, u, xline.KindGline)
	case "z", "Z":
		statsXLines(s, u, xline.KindZline)
	case "y", "Y":
		for _, c := range s.cfg.Connect {
			s.numeric(u, rplStatsLine, fmt.Sprintf("Y %s maxconn=%d ping=%d", c.Name, c.MaxConns, c.PingInterval))
		}
	default:
		s.numeric(u, rplStatsLine, fmt.Sprintf("u Uptime: %s", time.Since(s.Created).Round(time.Second)))
	}
	s.numeric(u, rplStatsLine, query+" :End of /STATS report")
	return CmdSuccess
}

func statsXLines(s *Server, u *User, kind xline.Kind) {
	for _, l := range s.XLines.All(kind) {
		s.numeric(u, rplStatsLine, fmt.Sprintf("%s %s :%s", kind, l.Mask, l.Reason))
	}
}

func cmdWhois(s *Server, u *User, m ircmsg.Message) CmdResult {
	target := s.findUser(m.Params[len(m.Params)-1])
	if target == nil {
		s.numeric(u, errNoSuchNick, m.Params[len(m.Params)-1]+" :No such nick/channel")
		s.numeric(u, rplEndOfWhois, m.Params[len(m.Params)-1]+" :End of /WHOIS list")
		return CmdFailure
	}

	s.numeric(u, rplWhoisUser, fmt.Sprintf("%s %s %s * :%s", target.Nick, target.Ident, target.Host, target.Realname))
	s.numeric(u, rplWhoisServer, fmt.Sprintf("%s %s :%s", target.Nick, target.Server, s.Network))
	if target.Oper {
		s.numeric(u, rplWhoisOperator, target.Nick+" :is an IRC operator")
	}

	var chans []string
	for _, ch := range target.channels {
		if (ch.isSecret() || ch.isPrivate()) && ch.memberOf(u) == nil {
			continue
		}
		chans = append(chans, prefixFor(ch.statusOf(target))+ch.Name)
	}
	if len(chans) > 0 {
		s.numeric(u, rplWhoisChannels, target.Nick+" :"+joinSpace(chans))
	}
	s.numeric(u, rplEndOfWhois, target.Nick+" :End of /WHOIS list")
	s.Hooks.Broadcast(hooks.OnWhois, u, target)
	return CmdSuccess
}

func joinSpace(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
