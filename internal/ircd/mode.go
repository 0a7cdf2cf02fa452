package ircd

import (
	"fmt"
	"strconv"

	"github.com/emberircd/emberd/internal/ircstring"
)

const (
	maxModeParams = 3
	maxModeLine   = 20
)

// modeHandler is one registered channel mode letter's behaviour (§4.G).
type modeHandler struct {
	letter    byte
	arityAdd  bool // true if a +letter consumes one parameter
	arityDel  bool // true if a -letter consumes one parameter
	minAccess Status
	apply     func(s *Server, ch *Channel, actor *User, add bool, param string) (applied bool, usedParam string)
}

var channelModeHandlers = buildChannelModeHandlers()

func buildChannelModeHandlers() map[byte]*modeHandler {
	h := map[byte]*modeHandler{}

	statusLetter := func(letter byte, status Status) *modeHandler {
		return &modeHandler{
			letter: letter, arityAdd: true, arityDel: true, minAccess: StatusOp,
			apply: func(s *Server, ch *Channel, actor *User, add bool, param string) (bool, string) {
				target := s.findUser(param)
				if target == nil || ch.memberOf(target) == nil {
					return false, ""
				}
				m := ch.memberOf(target)
				if add {
					if m.status < status {
						m.status = status
					}
				} else if m.status == status {
					m.status = StatusNone
				}
				return true, target.Nick
			},
		}
	}
	h['o'] = statusLetter('o', StatusOp)
	h['h'] = statusLetter('h', StatusHalfOp)
	h['v'] = statusLetter('v', StatusVoice)

	h['b'] = &modeHandler{letter: 'b', arityAdd: true, arityDel: true, minAccess: StatusHalfOp,
		apply: func(s *Server, ch *Channel, actor *User, add bool, param string) (bool, string) {
			if add {
				ch.bans = appendUnique(ch.bans, param)
			} else {
				ch.bans = removeMask(ch.bans, param)
			}
			return true, param
		},
	}
	h['e'] = &modeHandler{letter: 'e', arityAdd: true, arityDel: true, minAccess: StatusHalfOp,
		apply: func(s *Server, ch *Channel, actor *User, add bool, param string) (bool, string) {
			if add {
				ch.excepts = appendUnique(ch.excepts, param)
			} else {
				ch.excepts = removeMask(ch.excepts, param)
			}
			return true, param
		},
	}

	arityZeroFlag := func(letter byte) *modeHandler {
		return &modeHandler{letter: letter, minAccess: StatusOp,
			apply: func(s *Server, ch *Channel, actor *User, add bool, param string) (bool, string) {
				ch.modes[letter] = add
				return true, ""
			},
		}
	}
	for _, l := range []byte("imnpst") {
		h[l] = arityZeroFlag(l)
	}

	h['k'] = &modeHandler{letter: 'k', arityAdd: true, minAccess: StatusOp,
		apply: func(s *Server, ch *Channel, actor *User, add bool, param string) (bool, string) {
			if add {
				if ch.key != "" {
					return false, ""
				}
				ch.key = param
				return true, param
			}
			used := ch.key
			ch.key = ""
			return true, used
		},
	}
	h['l'] = &modeHandler{letter: 'l', arityAdd: true, minAccess: StatusOp,
		apply: func(s *Server, ch *Channel, actor *User, add bool, param string) (bool, string) {
			if add {
				n, err := strconv.Atoi(param)
				if err != nil || n <= 0 {
					return false, ""
				}
				ch.limit = n
				return true, param
			}
			ch.limit = 0
			return true, ""
		},
	}

	return h
}

func appendUnique(list []string, mask string) []string {
	for _, m := range list {
		if ircstring.EqualNick(m, mask) {
			return list
		}
	}
	return append(list, mask)
}

func removeMask(list []string, mask string) []string {
	for i, m := range list {
		if ircstring.EqualNick(m, mask) {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// applyChannelModes parses letters/params per §4.G and pushes every
// successfully applied change onto a ModeStack, which is drained into one
// or more bounded MODE lines broadcast to the channel.
func (s *Server) applyChannelModes(ch *Channel, actor *User, letters string, params []string) {
	actorStatus := ch.statusOf(actor)
	actorIsOper := actor.Oper

	var stack ircstring.ModeStack
	paramIdx := 0
	add := true

	for i := 0; i < len(letters); i++ {
		l := letters[i]
		switch l {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}

		h, ok := channelModeHandlers[l]
		if !ok {
			s.numeric(actor, errUmodeUnknownFlag, "is unknown mode char to me")
			continue
		}

		if !actorIsOper && actorStatus < h.minAccess {
			s.numeric(actor, errChanOpPrivsNeeded, ch.Name+" :You're not a channel operator")
			continue
		}

		needsParam := (add && h.arityAdd) || (!add && h.arityDel)
		var param string
		if needsParam {
			if paramIdx >= len(params) {
				continue
			}
			param = params[paramIdx]
			paramIdx++
		}

		applied, used := h.apply(s, ch, actor, add, param)
		if !applied {
			continue
		}
		stack.Push(add, l, used)
	}

	for stack.Len() > 0 {
		line := stack.Drain(maxModeParams, maxModeLine)
		if line == "" {
			break
		}
		s.broadcastToChannel(ch, nil, fmt.Sprintf(":%s MODE %s %s", actor.Prefix(), ch.Name, line))
	}
}
