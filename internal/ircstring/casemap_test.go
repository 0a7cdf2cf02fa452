package ircstring

import "testing"

// P1: fold is an involution on its fold class.
func TestFoldInvolution(t *testing.T) {
	maps := []*CaseMap{RFC1459, ASCII, Identity}
	for _, m := range maps {
		for b := 0; b < 256; b++ {
			got := m.Fold(m.Fold(byte(b)))
			want := m.Fold(byte(b))
			if got != want {
				t.Fatalf("fold not involutive for byte %d: fold(fold(b))=%d fold(b)=%d",
					b, got, want)
			}
		}
	}
}

func TestRFC1459Equivalences(t *testing.T) {
	pairs := [][2]byte{
		{'{', '['}, {'}', ']'}, {'|', '\\'}, {'~', '^'},
		{'A', 'a'}, {'Z', 'z'},
	}
	for _, p := range pairs {
		if RFC1459.Fold(p[0]) != RFC1459.Fold(p[1]) {
			t.Errorf("expected %q and %q to fold equal under rfc1459", p[0], p[1])
		}
	}
}

func TestASCIIDoesNotFoldPunctuation(t *testing.T) {
	if ASCII.Fold('{') == ASCII.Fold('[') {
		t.Errorf("ascii map should not equate { and [")
	}
}

// P2: equal-under-eq_ci implies equal hash.
func TestHashAgreement(t *testing.T) {
	cases := [][2]string{
		{"foo[bar", "foo{bar"},
		{"Alice", "alice"},
		{"Test~Nick", "test^nick"},
	}
	for _, c := range cases {
		if !RFC1459.EqualFold(c[0], c[1]) {
			t.Fatalf("expected %q and %q to be equal-ci", c[0], c[1])
		}
		if RFC1459.HashCI(c[0]) != RFC1459.HashCI(c[1]) {
			t.Errorf("expected %q and %q to hash identically", c[0], c[1])
		}
	}
}

func TestScandinavianNickCollision(t *testing.T) {
	if !EqualNick("foo[bar", "foo{bar") {
		t.Errorf("foo[bar and foo{bar must collide under rfc1459 case mapping")
	}
}

func TestByName(t *testing.T) {
	if ByName("ascii") != ASCII {
		t.Errorf("ByName(ascii) should return ASCII map")
	}
	if ByName("identity") != Identity {
		t.Errorf("ByName(identity) should return Identity map")
	}
	if ByName("bogus") != RFC1459 {
		t.Errorf("ByName with unknown name should default to RFC1459")
	}
	if ByName("") != RFC1459 {
		t.Errorf("ByName with empty name should default to RFC1459")
	}
}
