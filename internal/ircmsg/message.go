// Package ircmsg implements the RFC 1459 / RFC 2812 wire message type:
// parsing a received line into a Message and encoding a Message back into
// a wire line, enforcing the 512-byte line limit both ways.
package ircmsg

import "strings"

// MaxLineLength is the maximum wire length of a message, including the
// terminating CRLF.
const MaxLineLength = 512

// Message is a parsed or about-to-be-sent IRC protocol line.
type Message struct {
	// Prefix is the source prefix without its leading ':'. Empty if absent.
	Prefix string
	// Command is the verb or 3-digit numeric, preserved as received.
	Command string
	// Params holds 0..N parameters. Only the last parameter may contain
	// spaces, and only if it is sent with a leading ':'.
	Params []string
}

// String renders the message for logging; it is not the wire encoding.
func (m Message) String() string {
	var b strings.Builder
	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(m.Command)
	for _, p := range m.Params {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	return b.String()
}
