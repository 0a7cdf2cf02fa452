package ircd

import (
	"strings"

	"github.com/emberircd/emberd/internal/hooks"
	"github.com/emberircd/emberd/internal/ircmsg"
)

// CmdResult is a handler's outcome, per §4.F step 6.
type CmdResult int

const (
	CmdSuccess CmdResult = iota
	CmdFailure
	CmdInvalid
)

// RegLevel is the minimum registration state a command requires.
type RegLevel int

const (
	RegLevelPre  RegLevel = iota // allowed before full registration
	RegLevelAny                  // requires RegAll
	RegLevelOper                 // requires RegAll and Oper
)

// Command is one entry in the dispatch table (§4.F).
type Command struct {
	Verb      string
	MinParams int
	Level     RegLevel
	FloodCost int
	Handler   func(s *Server, u *User, m ircmsg.Message) CmdResult
}

func buildCommandTable() map[string]*Command {
	t := make(map[string]*Command)
	for _, c := range commandList() {
		t[c.Verb] = c
	}
	return t
}

// dispatch implements §4.F steps 1-8.
func (s *Server) dispatch(u *User, line string) {
	msg, err := ircmsg.Decode(line)
	if err != nil && msg.Command == "" {
		return
	}
	verb := strings.ToUpper(msg.Command)
	if verb == "" {
		return
	}

	cmd, ok := s.commands[verb]
	if !ok {
		s.numeric(u, errUnknownCommand, verb+" :Unknown command")
		return
	}

	if cmd.Level == RegLevelAny && u.Registered != RegAll {
		s.numeric(u, errNotRegistered, ":You have not registered")
		return
	}
	if cmd.Level == RegLevelOper && (u.Registered != RegAll || !u.Oper) {
		s.numeric(u, errNoPrivileges, ":Permission Denied- You're not an IRC operator")
		return
	}
	if len(msg.Params) < cmd.MinParams {
		s.numeric(u, errNeedMoreParams, verb+" :Not enough parameters")
		return
	}

	if s.Hooks.FirstResult(hooks.OnPreCommand, u, &msg) == hooks.Deny {
		return
	}

	result := cmd.Handler(s, u, msg)

	if result == CmdSuccess {
		s.Metrics.CommandsDispatched.WithLabelValues(verb).Inc()
		u.FloodPenalty += cmd.FloodCost
		if u.Class != nil && u.Class.PenaltyCap > 0 && u.FloodPenalty > u.Class.PenaltyCap {
			s.QuitUser(u, "Excess Flood", "")
			return
		}
	}

	s.Hooks.Broadcast(hooks.OnPostCommand, u, &msg, result)
}

// numeric sends a server-origin numeric reply to u, using u's current nick
// (or "*" before registration) as the target token, per RFC convention.
func (s *Server) numeric(u *User, code, rest string) {
	target := u.Nick
	if target == "" {
		target = "*"
	}
	u.send(":" + s.Name + " " + code + " " + target + " " + rest)
}
