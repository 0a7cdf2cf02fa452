package ircmsg

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrTruncated is returned alongside a usable, truncated result (a Message
// from Decode, a wire line from Encode) when a decoded or encoded line would
// otherwise have exceeded MaxLineLength.
var ErrTruncated = errors.New("message truncated to fit the line limit")

// Decode parses one wire line, which may or may not carry a trailing
// CR/LF/CRLF, into a Message. Per the parser contract these string-handling
// routines never hard-fail on malformed input; Decode is the one exception
// because callers need to distinguish "not a parseable command line at all"
// (empty line, bare prefix) from "parsed with a best-effort result".
func Decode(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")

	truncated := false
	if len(line)+2 > MaxLineLength {
		line = line[:MaxLineLength-2]
		truncated = true
	}

	if line == "" {
		return Message{}, errors.New("empty line")
	}

	var msg Message
	rest := line

	if rest[0] == ':' {
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			return Message{}, errors.New("malformed message: prefix only")
		}
		if sp == 1 {
			return Message{}, errors.New("malformed message: empty prefix")
		}
		msg.Prefix = rest[1:sp]
		rest = strings.TrimLeft(rest[sp+1:], " ")
	}

	if rest == "" {
		return Message{}, errors.New("malformed message: no command")
	}

	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		msg.Command = rest
		rest = ""
	} else {
		msg.Command = rest[:sp]
		rest = rest[sp+1:]
	}

	if msg.Command == "" {
		return Message{}, errors.New("malformed message: empty command")
	}

	params, err := decodeParams(rest)
	if err != nil {
		return Message{}, errors.Wrap(err, "problem parsing params")
	}
	msg.Params = params

	if truncated {
		return msg, ErrTruncated
	}
	return msg, nil
}

func decodeParams(rest string) ([]string, error) {
	var params []string

	for rest != "" {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			break
		}

		if rest[0] == ':' {
			params = append(params, rest[1:])
			break
		}

		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			params = append(params, rest)
			break
		}
		params = append(params, rest[:sp])
		rest = rest[sp+1:]

		if len(params) > 15 {
			return nil, errors.New("too many parameters")
		}
	}

	if len(params) > 15 {
		return nil, errors.New("too many parameters")
	}

	return params, nil
}
