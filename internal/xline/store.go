// Package xline implements the X-line ban store and BanCache the core
// consumes as an external collaborator: Store.Matches(kind, user) and
// Line.Apply(user) for the store, BanCache.GetHit(ip) for the cache. See
// SPEC_FULL.md §4.J and original_source/src/cmd_gline.cpp.
package xline

import (
	"sync"
	"time"

	"github.com/emberircd/emberd/internal/ircstring"
)

// Kind is an X-line category: G (global kill), K (local kill), Z (IP
// ban), Q (nick ban), E (exemption).
type Kind string

const (
	KindGline Kind = "G"
	KindKline Kind = "K"
	KindZline Kind = "Z"
	KindQline Kind = "Q"
	KindEline Kind = "E"
)

// Matchable is the minimum a user must expose for mask matching. The core's
// User type satisfies this without xline importing the ircd package.
type Matchable interface {
	MatchHost() string // ident@host, for G/K line glob matches
	MatchIP() string   // bare IP, for Z line glob matches
	MatchNick() string // nick, for Q line glob matches
}

// Applier receives the user-visible side effect of a matched line. In
// practice this is always a QuitUser call; it is an interface so this
// package does not depend on package ircd.
type Applier interface {
	ApplyXLine(kind Kind, reason string)
}

// Line is one ban record, either runtime-issued (GLINE/KLINE/...) or
// loaded from a seed file at startup.
type Line struct {
	Kind    Kind
	Mask    string
	Reason  string
	SetBy   string
	SetAt   time.Time
	Expires time.Time // zero value means permanent
}

func (l *Line) expired(now time.Time) bool {
	return !l.Expires.IsZero() && now.After(l.Expires)
}

// Store holds the in-memory X-line table. The zero value is ready to use.
type Store struct {
	mu    sync.RWMutex
	lines map[Kind][]*Line
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{lines: make(map[Kind][]*Line)}
}

// Add inserts a new line of the given kind. It does not check for
// duplicates: re-adding the same mask layers a second entry, matching the
// original's append-only add_gline/add_kline behaviour (REHASH-time
// dedup, if wanted, is a config-loader concern, not the store's).
func (s *Store) Add(l *Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines[l.Kind] = append(s.lines[l.Kind], l)
}

// Del removes the first line of kind whose mask matches exactly. It
// reports whether anything was removed.
func (s *Store) Del(kind Kind, mask string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lines[kind]
	for i, l := range list {
		if l.Mask == mask {
			s.lines[kind] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Matches returns the first non-expired line of kind that matches user, or
// nil. Matching is against MatchHost for G/K, MatchIP for Z, MatchNick for
// Q, and MatchHost for E (an exemption is itself a host/ip glob).
func (s *Store) Matches(kind Kind, user Matchable) *Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var subject string
	switch kind {
	case KindZline:
		subject = user.MatchIP()
	case KindQline:
		subject = user.MatchNick()
	default:
		subject = user.MatchHost()
	}

	now := time.Now()
	for _, l := range s.lines[kind] {
		if l.expired(now) {
			continue
		}
		if globMatch(l.Mask, subject) {
			return l
		}
	}
	return nil
}

// All returns every non-expired line of kind, for STATS enumeration.
func (s *Store) All(kind Kind) []*Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var out []*Line
	for _, l := range s.lines[kind] {
		if !l.expired(now) {
			out = append(out, l)
		}
	}
	return out
}

// Apply performs the user-visible side effect of a matched line by calling
// back into the Applier (typically QuitUser with a formatted reason).
func (l *Line) Apply(user Applier) {
	user.ApplyXLine(l.Kind, l.Reason)
}

// globMatch implements the simple '*'/'?' glob used by ban masks, the
// shape of the original's match() helper (wildcard.cpp in the original
// source tree).
func globMatch(pattern, subject string) bool {
	cm := ircstring.Active()
	return globMatchFold(cm.FoldString(pattern), cm.FoldString(subject))
}

func globMatchFold(pattern, subject string) bool {
	// Classic recursive glob matcher, case already folded by the caller.
	if pattern == "" {
		return subject == ""
	}

	switch pattern[0] {
	case '*':
		if globMatchFold(pattern[1:], subject) {
			return true
		}
		for i := 0; i < len(subject); i++ {
			if globMatchFold(pattern[1:], subject[i+1:]) {
				return true
			}
		}
		return false
	case '?':
		if subject == "" {
			return false
		}
		return globMatchFold(pattern[1:], subject[1:])
	default:
		if subject == "" || pattern[0] != subject[0] {
			return false
		}
		return globMatchFold(pattern[1:], subject[1:])
	}
}
