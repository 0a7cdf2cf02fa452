package ircstring

import "testing"

func TestModeStackDrainSimple(t *testing.T) {
	var s ModeStack
	s.Push(true, 'o', "alice")
	s.Push(false, 'v', "bob")
	s.Push(true, 'b', "*!*@evil.example")

	line := s.Drain(10, 100)
	if line != "+o-v+b alice bob *!*@evil.example" {
		t.Fatalf("got %q", line)
	}
	if s.Len() != 0 {
		t.Errorf("stack should be empty after full drain")
	}
}

// P7: each drained line has <= MAXMODES parameter-bearing letters and
// <= max_line_size mode-letter bytes.
func TestModeStackBoundedByMaxParams(t *testing.T) {
	var s ModeStack
	for i := 0; i < 5; i++ {
		s.Push(true, 'o', "nick")
	}

	line := s.Drain(3, 100)
	count := 0
	for _, c := range line {
		if c == 'o' {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 params in first drain, got line %q", line)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries left, got %d", s.Len())
	}

	rest := s.Drain(3, 100)
	if rest != "+oo nick nick" {
		t.Fatalf("got %q", rest)
	}
}

func TestModeStackBoundedByMaxLine(t *testing.T) {
	var s ModeStack
	for i := 0; i < 10; i++ {
		s.Push(true, 'n', "")
	}

	line := s.Drain(20, 4)
	if len(line) > 4 {
		t.Fatalf("letters exceeded max_line: %q", line)
	}
}

func TestModeStackEmptyDrain(t *testing.T) {
	var s ModeStack
	if got := s.Drain(10, 10); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
