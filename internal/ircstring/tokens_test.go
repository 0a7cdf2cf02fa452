package ircstring

import (
	"reflect"
	"testing"
)

func TestTokensCollapsesSeparators(t *testing.T) {
	got := Tokens("a,,b,", ',', false)
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestTokensAllowEmpty(t *testing.T) {
	got := Tokens("a,,b,", ',', true)
	want := []string{"a", "", "b", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestCommaTokens(t *testing.T) {
	got := CommaTokens("#a,#b,#c")
	want := []string{"#a", "#b", "#c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestTokenStream(t *testing.T) {
	got := TokenStream("  hello   world  ")
	want := []string{"hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestMessageTokensBasic(t *testing.T) {
	m := MessageTokens("NICK alice")
	if m.Verb != "NICK" || !reflect.DeepEqual(m.Params, []string{"alice"}) {
		t.Fatalf("got %+v", m)
	}
}

func TestMessageTokensWithPrefixAndTrailing(t *testing.T) {
	m := MessageTokens(":alice!alice@host PRIVMSG #test :hello there friend")
	if m.Prefix != "alice!alice@host" {
		t.Errorf("prefix = %q", m.Prefix)
	}
	if m.Verb != "PRIVMSG" {
		t.Errorf("verb = %q", m.Verb)
	}
	want := []string{"#test", "hello there friend"}
	if !reflect.DeepEqual(m.Params, want) {
		t.Errorf("params = %v want %v", m.Params, want)
	}
}

func TestMessageTokensEmptyLine(t *testing.T) {
	m := MessageTokens("")
	if m.Verb != "" || m.Prefix != "" || m.Params != nil {
		t.Fatalf("expected zero value, got %+v", m)
	}
}

// P6: round-tripping a produced line through MessageTokens must yield the
// same verb and parameters the handler intended to send.
func TestMessageTokensRoundTrip(t *testing.T) {
	line := "MODE #test +o-v+b alice bob *!*@evil.example"
	m := MessageTokens(line)
	if m.Verb != "MODE" {
		t.Fatalf("verb = %q", m.Verb)
	}
	want := []string{"#test", "+o-v+b", "alice", "bob", "*!*@evil.example"}
	if !reflect.DeepEqual(m.Params, want) {
		t.Fatalf("params = %v want %v", m.Params, want)
	}
}
