package ircstring

import (
	"strconv"
	"strings"
)

// PortRange yields the integers named by a comma-separated spec of "n" and
// "a-b" entries, the shape of irc::portparser. A range with a >= b or with
// a negative or non-numeric upper bound degrades to yielding only its first
// bound; an entry whose first (or only) number is negative or non-numeric
// yields nothing. Parsers in this family never fail outright.
// When allowOverlap is false, ports already yielded are skipped on
// subsequent appearance (P8: no port is yielded twice).
func PortRange(spec string, allowOverlap bool) []int {
	var out []int
	seen := map[int]struct{}{}

	emit := func(p int) {
		if !allowOverlap {
			if _, ok := seen[p]; ok {
				return
			}
			seen[p] = struct{}{}
		}
		out = append(out, p)
	}

	for _, tok := range CommaTokens(spec) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		dash := strings.IndexByte(tok, '-')
		if dash <= 0 {
			n, err := strconv.Atoi(tok)
			if err != nil || n < 0 {
				continue
			}
			emit(n)
			continue
		}

		aStr, bStr := tok[:dash], tok[dash+1:]
		a, errA := strconv.Atoi(aStr)
		b, errB := strconv.Atoi(bStr)
		if errA != nil || a < 0 {
			continue
		}
		if errB != nil || b < 0 || a >= b {
			// Reject a >= b and negatives by yielding only the first bound.
			emit(a)
			continue
		}

		for p := a; p <= b; p++ {
			emit(p)
		}
	}

	return out
}
