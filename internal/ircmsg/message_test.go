package ircmsg

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBasic(t *testing.T) {
	m, err := Decode("NICK alice\r\n")
	require.NoError(t, err)
	assert.Equal(t, "NICK", m.Command)
	assert.Equal(t, []string{"alice"}, m.Params)
}

func TestDecodeWithPrefixAndTrailing(t *testing.T) {
	m, err := Decode(":alice!alice@host PRIVMSG #test :hello there\r\n")
	require.NoError(t, err)
	assert.Equal(t, "alice!alice@host", m.Prefix)
	assert.Equal(t, "PRIVMSG", m.Command)
	assert.Equal(t, []string{"#test", "hello there"}, m.Params)
}

func TestDecodeEmptyLine(t *testing.T) {
	_, err := Decode("\r\n")
	assert.Error(t, err)
}

func TestDecodeRejectsEmptyPrefix(t *testing.T) {
	_, err := Decode(": NICK alice\r\n")
	assert.Error(t, err)
}

func TestDecodeTooManyParams(t *testing.T) {
	line := "CMD a b c d e f g h i j k l m n o p\r\n"
	_, err := Decode(line)
	assert.Error(t, err)
}

func TestEncodeBasic(t *testing.T) {
	m := Message{Command: "PING", Params: []string{"irc.example.org"}}
	s, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, "PING irc.example.org\r\n", s)
}

func TestEncodeAddsTrailingColonForSpaces(t *testing.T) {
	m := Message{
		Prefix:  "alice!alice@host",
		Command: "PRIVMSG",
		Params:  []string{"#test", "hello there friend"},
	}
	s, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, ":alice!alice@host PRIVMSG #test :hello there friend\r\n", s)
}

func TestEncodeRejectsMidParamColonOrSpace(t *testing.T) {
	m := Message{Command: "CMD", Params: []string{"has space", "trailer"}}
	_, err := m.Encode()
	assert.Error(t, err)
}

func TestEncodeEmptyLastParamGetsColon(t *testing.T) {
	m := Message{Command: "TOPIC", Params: []string{"#test", ""}}
	s, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, "TOPIC #test :\r\n", s)
}

// P6: round trip.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := Message{
		Prefix:  "irc.example.org",
		Command: "005",
		Params:  []string{"alice", "NICKLEN=30", "are supported by this server"},
	}
	s, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	got, err := Decode(s)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, m)
	}
}

func TestEncodeTruncatesOverlongLine(t *testing.T) {
	huge := make([]byte, MaxLineLength*2)
	for i := range huge {
		huge[i] = 'x'
	}
	m := Message{Command: "PRIVMSG", Params: []string{"#test", string(huge)}}
	s, err := m.Encode()
	assert.ErrorIs(t, err, ErrTruncated)
	assert.LessOrEqual(t, len(s), MaxLineLength)
}
