package ircmsg

import (
	"strings"

	"github.com/pkg/errors"
)

// Encode renders m as a wire line terminated by CRLF. If the fully encoded
// message would exceed MaxLineLength, Encode truncates the parameter that
// crosses the limit, drops any parameters after it, and returns the
// truncated, still usable line alongside
// ErrTruncated. It does not enforce per-command semantics (that is the
// dispatcher's job).
func (m Message) Encode() (string, error) {
	if len(m.Params) > 15 {
		return "", errors.New("too many parameters")
	}

	var s strings.Builder
	if m.Prefix != "" {
		s.WriteByte(':')
		s.WriteString(m.Prefix)
		s.WriteByte(' ')
	}
	s.WriteString(m.Command)

	if s.Len()+2 > MaxLineLength {
		return "", errors.New("prefix and command alone exceed the line limit")
	}

	truncated := false

	for i, param := range m.Params {
		needsColon := param == "" || param[0] == ':' || strings.IndexByte(param, ' ') >= 0
		if needsColon {
			if i+1 != len(m.Params) {
				return "", errors.New("a ':' or ' ' parameter must be the last one")
			}
			param = ":" + param
		}

		if s.Len()+1+len(param)+2 > MaxLineLength {
			used := s.Len() + 1 + 2
			available := MaxLineLength - used
			if available > 0 {
				s.WriteByte(' ')
				s.WriteString(param[:available])
			}
			truncated = true
			break
		}

		s.WriteByte(' ')
		s.WriteString(param)
	}

	s.WriteString("\r\n")

	if truncated {
		return s.String(), ErrTruncated
	}
	return s.String(), nil
}
