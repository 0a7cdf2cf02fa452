package ircstring

import "reflect"
import "testing"

func TestPortRangeSingles(t *testing.T) {
	got := PortRange("80,443,8080", true)
	want := []int{80, 443, 8080}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestPortRangeExpandsRange(t *testing.T) {
	got := PortRange("6660-6663", true)
	want := []int{6660, 6661, 6662, 6663}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestPortRangeRejectsInvertedRange(t *testing.T) {
	got := PortRange("10-5", true)
	want := []int{10}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

// P8: with allow_overlap=false, no port is yielded twice.
func TestPortRangeNoOverlapDedup(t *testing.T) {
	got := PortRange("6660-6662,6661,6662-6664", false)
	seen := map[int]int{}
	for _, p := range got {
		seen[p]++
	}
	for p, n := range seen {
		if n != 1 {
			t.Fatalf("port %d yielded %d times with allow_overlap=false", p, n)
		}
	}
}

func TestPortRangeNeverFails(t *testing.T) {
	got := PortRange("garbage,,1-,--5,6660", false)
	if len(got) == 0 {
		t.Fatalf("expected best-effort tokens, got none")
	}
}
