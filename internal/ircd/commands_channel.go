package ircd

import (
	"fmt"
	"strings"
	"time"

	"github.com/emberircd/emberd/internal/hooks"
	"github.com/emberircd/emberd/internal/ircmsg"
	"github.com/emberircd/emberd/internal/ircstring"
)

const inviteTTL = 1 * time.Hour

func cmdJoin(s *Server, u *User, m ircmsg.Message) CmdResult {
	var key string
	if len(m.Params) > 1 {
		key = m.Params[1]
	}

	for _, name := range ircstring.CommaTokens(m.Params[0]) {
		if !strings.HasPrefix(name, "#") && !strings.HasPrefix(name, "&") {
			s.numeric(u, errNoSuchChannel, name+" :No such channel")
			continue
		}

		ch, created := s.getOrCreateChannel(name)

		if !created {
			if ch.isBanned(u) {
				s.numeric(u, errBannedFromChan, ch.Name+" :Cannot join channel (+b)")
				continue
			}
			if ch.isInviteOnly() && !ch.consumeInvite(u.UUID) {
				s.numeric(u, errInviteOnlyChan, ch.Name+" :Cannot join channel (+i)")
				continue
			}
			if ch.key != "" && ch.key != key {
				s.numeric(u, errBadChannelKey, ch.Name+" :Cannot join channel (+k)")
				continue
			}
			if ch.limit > 0 && ch.memberCount() >= ch.limit {
				s.numeric(u, errChannelIsFull, ch.Name+" :Cannot join channel (+l)")
				continue
			}
		}

		status := StatusNone
		if created {
			status = StatusOp
		}
		ch.addMember(u, status)
		u.channels[ch.folded] = ch

		s.Hooks.Broadcast(hooks.OnUserJoin, u, ch)
		s.broadcastToChannel(ch, nil, fmt.Sprintf(":%s JOIN %s", u.Prefix(), ch.Name))
		s.Hooks.Broadcast(hooks.OnPostJoin, u, ch)

		sendTopic(s, u, ch)
		sendNames(s, u, ch)
	}
	return CmdSuccess
}

func cmdPart(s *Server, u *User, m ircmsg.Message) CmdResult {
	reason := ""
	if len(m.Params) > 1 {
		reason = m.Params[1]
	}

	for _, name := range ircstring.CommaTokens(m.Params[0]) {
		ch := s.findChannel(name)
		if ch == nil || ch.memberOf(u) == nil {
			s.numeric(u, errNotOnChannel, name+" :You're not on that channel")
			continue
		}

		line := fmt.Sprintf(":%s PART %s", u.Prefix(), ch.Name)
		if reason != "" {
			line += " :" + reason
		}
		s.broadcastToChannel(ch, nil, line)

		ch.removeMember(u)
		delete(u.channels, ch.folded)
		s.Hooks.Broadcast(hooks.OnUserPart, u, ch)

		if ch.memberCount() == 0 {
			delete(s.channels, ch.folded)
		}
	}
	return CmdSuccess
}

func cmdKick(s *Server, u *User, m ircmsg.Message) CmdResult {
	ch := s.findChannel(m.Params[0])
	if ch == nil {
		s.numeric(u, errNoSuchChannel, m.Params[0]+" :No such channel")
		return CmdFailure
	}
	if ch.statusOf(u) < StatusHalfOp && !u.Oper {
		s.numeric(u, errChanOpPrivsNeeded, ch.Name+" :You're not a channel operator")
		return CmdFailure
	}

	target := s.findUser(m.Params[1])
	if target == nil || ch.memberOf(target) == nil {
		s.numeric(u, errUserNotInChannel, m.Params[1]+" "+ch.Name+" :They aren't on that channel")
		return CmdFailure
	}

	reason := target.Nick
	if len(m.Params) > 2 {
		reason = m.Params[2]
	}

	s.broadcastToChannel(ch, nil, fmt.Sprintf(":%s KICK %s %s :%s", u.Prefix(), ch.Name, target.Nick, reason))
	ch.removeMember(target)
	delete(target.channels, ch.folded)

	if ch.memberCount() == 0 {
		delete(s.channels, ch.folded)
	}
	return CmdSuccess
}

func cmdInvite(s *Server, u *User, m ircmsg.Message) CmdResult {
	target := s.findUser(m.Params[0])
	if target == nil {
		s.numeric(u, errNoSuchNick, m.Params[0]+" :No such nick/channel")
		return CmdFailure
	}
	ch := s.findChannel(m.Params[1])
	if ch == nil {
		s.numeric(u, errNoSuchChannel, m.Params[1]+" :No such channel")
		return CmdFailure
	}
	if ch.isInviteOnly() && ch.statusOf(u) < StatusOp {
		s.numeric(u, errChanOpPrivsNeeded, ch.Name+" :You're not a channel operator")
		return CmdFailure
	}

	ch.addInvite(target.UUID, inviteTTL)
	s.numeric(u, rplInviting, ch.Name+" "+target.Nick)
	target.send(fmt.Sprintf(":%s INVITE %s :%s", u.Prefix(), target.Nick, ch.Name))
	return CmdSuccess
}

func cmdTopic(s *Server, u *User, m ircmsg.Message) CmdResult {
	ch := s.findChannel(m.Params[0])
	if ch == nil {
		s.numeric(u, errNoSuchChannel, m.Params[0]+" :No such channel")
		return CmdFailure
	}

	if len(m.Params) == 1 {
		sendTopic(s, u, ch)
		return CmdSuccess
	}

	if ch.topicLocked() && ch.statusOf(u) < StatusHalfOp && !u.Oper {
		s.numeric(u, errChanOpPrivsNeeded, ch.Name+" :You're not a channel operator")
		return CmdFailure
	}

	ch.Topic = m.Params[1]
	ch.TopicSetBy = u.Prefix()
	ch.TopicSetAt = time.Now()
	s.broadcastToChannel(ch, nil, fmt.Sprintf(":%s TOPIC %s :%s", u.Prefix(), ch.Name, ch.Topic))
	return CmdSuccess
}

func sendTopic(s *Server, u *User, ch *Channel) {
	if ch.Topic == "" {
		s.numeric(u, rplNoTopic, ch.Name+" :No topic is set")
		return
	}
	s.numeric(u, rplTopic, ch.Name+" :"+ch.Topic)
	s.numeric(u, rplTopicWhoTime, fmt.Sprintf("%s %s %d", ch.Name, ch.TopicSetBy, ch.TopicSetAt.Unix()))
}

func sendNames(s *Server, u *User, ch *Channel) {
	var names []string
	for _, m := range ch.sortedMembers() {
		names = append(names, prefixFor(m.status)+m.user.Nick)
	}
	s.numeric(u, rplNamReply, "= "+ch.Name+" :"+strings.Join(names, " "))
	s.numeric(u, rplEndOfNames, ch.Name+" :End of /NAMES list")
}

func cmdNames(s *Server, u *User, m ircmsg.Message) CmdResult {
	if len(m.Params) == 0 {
		s.numeric(u, rplEndOfNames, "* :End of /NAMES list")
		return CmdSuccess
	}
	for _, name := range ircstring.CommaTokens(m.Params[0]) {
		ch := s.findChannel(name)
		if ch == nil {
			s.numeric(u, rplEndOfNames, name+" :End of /NAMES list")
			continue
		}
		if (ch.isSecret() || ch.isPrivate()) && ch.memberOf(u) == nil {
			s.numeric(u, rplEndOfNames, name+" :End of /NAMES list")
			continue
		}
		sendNames(s, u, ch)
	}
	return CmdSuccess
}

func cmdWho(s *Server, u *User, m ircmsg.Message) CmdResult {
	if len(m.Params) == 0 {
		s.numeric(u, rplEndOfWho, "* :End of /WHO list")
		return CmdSuccess
	}

	ch := s.findChannel(m.Params[0])
	if ch == nil {
		s.numeric(u, rplEndOfWho, m.Params[0]+" :End of /WHO list")
		return CmdSuccess
	}
	if (ch.isSecret() || ch.isPrivate()) && ch.memberOf(u) == nil {
		s.numeric(u, rplEndOfWho, ch.Name+" :End of /WHO list")
		return CmdSuccess
	}

	for _, mem := range ch.sortedMembers() {
		flags := "H"
		if mem.user.Oper {
			flags += "*"
		}
		flags += prefixFor(mem.status)
		s.numeric(u, rplWhoReply, fmt.Sprintf("%s %s %s %s %s %s :0 %s", ch.Name, mem.user.Ident, mem.user.Host, s.Name, mem.user.Nick, flags, mem.user.Realname))
	}
	s.numeric(u, rplEndOfWho, ch.Name+" :End of /WHO list")
	return CmdSuccess
}

func cmdList(s *Server, u *User, m ircmsg.Message) CmdResult {
	s.numeric(u, rplListStart, "Channel :Users  Name")
	for _, ch := range s.channels {
		if ch.isSecret() && ch.memberOf(u) == nil {
			continue
		}
		s.numeric(u, rplList, fmt.Sprintf("%s %d :%s", ch.Name, ch.memberCount(), ch.Topic))
	}
	s.numeric(u, rplListEnd, ":End of /LIST")
	return CmdSuccess
}

func cmdMode(s *Server, u *User, m ircmsg.Message) CmdResult {
	target := m.Params[0]
	if strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&") {
		return cmdChannelMode(s, u, m)
	}
	return cmdUserMode(s, u, m)
}

func cmdChannelMode(s *Server, u *User, m ircmsg.Message) CmdResult {
	ch := s.findChannel(m.Params[0])
	if ch == nil {
		s.numeric(u, errNoSuchChannel, m.Params[0]+" :No such channel")
		return CmdFailure
	}

	if len(m.Params) == 1 {
		letters, params := ch.modeString()
		s.numeric(u, rplChannelModeIs, ch.Name+" "+letters+" "+strings.Join(params, " "))
		return CmdSuccess
	}

	s.applyChannelModes(ch, u, m.Params[1], m.Params[2:])
	return CmdSuccess
}

func cmdUserMode(s *Server, u *User, m ircmsg.Message) CmdResult {
	target := s.findUser(m.Params[0])
	if target == nil || target.UUID != u.UUID {
		s.numeric(u, errUsersDontMatch, ":Cannot change mode for other users")
		return CmdFailure
	}

	if len(m.Params) == 1 {
		s.numeric(u, rplUmodeIs, u.umodeString())
		return CmdSuccess
	}

	add := true
	idx := 2
	letters := m.Params[1]
	for i := 0; i < len(letters); i++ {
		switch letters[i] {
		case '+':
			add = true
		case '-':
			add = false
		case 'i':
			u.Invisible = add
		case 'w':
			u.Wallops = add
		case 's':
			if add && idx < len(m.Params) {
				idx++
				u.Snomask = m.Params[idx-1]
			} else if !add {
				u.Snomask = ""
			}
		case 'o':
			// MODE cannot grant +o (only OPER does); -o drops it
			if !add {
				u.Oper = false
			}
		default:
			s.numeric(u, errUmodeUnknownFlag, "is unknown mode char to me")
		}
	}
	return CmdSuccess
}

func (u *User) umodeString() string {
	s := "+"
	if u.Invisible {
		s += "i"
	}
	if u.Oper {
		s += "o"
	}
	if u.Wallops {
		s += "w"
	}
	if u.Snomask != "" {
		s += "s"
	}
	return s
}
