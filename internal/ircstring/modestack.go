package ircstring

import "strings"

// modeEntry is one (sign, letter, optional parameter) triple pushed onto a
// ModeStack.
type modeEntry struct {
	add   bool
	letter byte
	param string
}

// ModeStack accumulates applied mode changes in order and coalesces them
// into bounded MODE lines on Drain, mirroring irc::modestacker.
type ModeStack struct {
	entries []modeEntry
}

// Push records one applied mode change. param is ignored (treated as
// absent) when empty.
func (s *ModeStack) Push(add bool, letter byte, param string) {
	s.entries = append(s.entries, modeEntry{add: add, letter: letter, param: param})
}

// Len reports how many entries remain undrained.
func (s *ModeStack) Len() int {
	return len(s.entries)
}

// Drain emits one coalesced mode line containing at most maxParams
// parameter-bearing entries, and at most maxLine bytes of mode-letter
// payload (the leading +/- run), preserving push order. It removes the
// drained entries from the stack. An empty stack drains to "".
func (s *ModeStack) Drain(maxParams, maxLine int) string {
	if len(s.entries) == 0 {
		return ""
	}

	var letters strings.Builder
	var params []string
	curSign := byte(0)
	n := 0

	i := 0
	for ; i < len(s.entries); i++ {
		e := s.entries[i]

		sign := byte('-')
		if e.add {
			sign = '+'
		}

		hasParam := e.param != ""
		if hasParam && n >= maxParams {
			break
		}

		need := 1
		if sign != curSign {
			need = 2
		}
		if letters.Len()+need > maxLine {
			break
		}

		if sign != curSign {
			letters.WriteByte(sign)
			curSign = sign
		}
		letters.WriteByte(e.letter)

		if hasParam {
			params = append(params, e.param)
			n++
		}
	}

	s.entries = s.entries[i:]

	out := letters.String()
	for _, p := range params {
		out += " " + p
	}
	return out
}

// Reset discards all pending entries without draining them.
func (s *ModeStack) Reset() {
	s.entries = nil
}
