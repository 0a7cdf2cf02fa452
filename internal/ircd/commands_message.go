package ircd

import (
	"fmt"
	"strings"

	"github.com/emberircd/emberd/internal/ircmsg"
	"github.com/emberircd/emberd/internal/ircstring"
)

func privmsgLike(verb string) func(s *Server, u *User, m ircmsg.Message) CmdResult {
	return func(s *Server, u *User, m ircmsg.Message) CmdResult {
		targets := m.Params[0]
		text := ""
		if len(m.Params) > 1 {
			text = m.Params[1]
		}

		for _, target := range ircstring.CommaTokens(targets) {
			if strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&") {
				ch := s.findChannel(target)
				if ch == nil {
					if verb == "PRIVMSG" {
						s.numeric(u, errNoSuchChannel, target+" :No such channel")
					}
					continue
				}
				if ch.memberOf(u) == nil && ch.noExternal() {
					if verb == "PRIVMSG" {
						s.numeric(u, errCannotSendToChan, ch.Name+" :Cannot send to channel")
					}
					continue
				}
				if ch.isModerated() && ch.statusOf(u) == StatusNone {
					if verb == "PRIVMSG" {
						s.numeric(u, errCannotSendToChan, ch.Name+" :Cannot send to channel")
					}
					continue
				}
				s.broadcastToChannel(ch, u, fmt.Sprintf(":%s %s %s :%s", u.Prefix(), verb, ch.Name, text))
				continue
			}

			dest := s.findUser(target)
			if dest == nil {
				if verb == "PRIVMSG" {
					s.numeric(u, errNoSuchNick, target+" :No such nick/channel")
				}
				continue
			}
			dest.send(fmt.Sprintf(":%s %s %s :%s", u.Prefix(), verb, dest.Nick, text))
		}
		return CmdSuccess
	}
}
