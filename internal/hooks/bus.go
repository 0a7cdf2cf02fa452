// Package hooks implements the typed event bus external modules subscribe
// to: a closed enum of hook kinds, each with an ordered, priority-sorted
// subscriber list, dispatched either as a broadcast or as first-result.
package hooks

import "sort"

// Kind enumerates the module hook points named in SPEC_FULL.md §4.I. The
// set is closed and known at build time, matching the original's
// Implements() bitmap translated into a Go-native enum.
type Kind int

const (
	OnUserInit Kind = iota
	OnSetUserIP
	OnPreCommand
	OnPostCommand
	OnUserJoin
	OnPostJoin
	OnUserPart
	OnUserQuit
	OnUserDisconnect
	OnRehash
	OnWhois
	OnAddGLine
	OnDelGLine
	OnCheckReady
	OnExtendedMode
	numKinds
)

// Result is the tri-state a first-result subscriber may return.
type Result int

const (
	Deny Result = iota
	Allow
	Passthru
)

// BroadcastFunc is a subscriber invoked for a broadcast-discipline hook;
// its return value is ignored.
type BroadcastFunc func(args ...interface{})

// FirstResultFunc is a subscriber invoked for a first-result-discipline
// hook; dispatch stops at the first non-Passthru result.
type FirstResultFunc func(args ...interface{}) Result

type subscriber struct {
	priority int
	seq      int
	bfn      BroadcastFunc
	ffn      FirstResultFunc
}

// Bus holds every kind's subscriber list. The zero value is ready to use.
type Bus struct {
	subs [numKinds][]subscriber
	seq  int
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn for broadcast dispatch under kind. Lower priority
// values run first; subscribers registered at equal priority run in
// registration order.
func (b *Bus) Subscribe(kind Kind, priority int, fn BroadcastFunc) {
	b.seq++
	b.subs[kind] = append(b.subs[kind], subscriber{priority: priority, seq: b.seq, bfn: fn})
	b.sortKind(kind)
}

// SubscribeFirstResult registers fn for first-result dispatch under kind.
func (b *Bus) SubscribeFirstResult(kind Kind, priority int, fn FirstResultFunc) {
	b.seq++
	b.subs[kind] = append(b.subs[kind], subscriber{priority: priority, seq: b.seq, ffn: fn})
	b.sortKind(kind)
}

func (b *Bus) sortKind(kind Kind) {
	list := b.subs[kind]
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority < list[j].priority
		}
		return list[i].seq < list[j].seq
	})
}

// Broadcast invokes every broadcast-registered subscriber under kind in
// priority order, ignoring their return values. A subscriber registered
// via SubscribeFirstResult under the same kind is skipped (the two
// disciplines are mutually exclusive per kind in practice, but mixing them
// is not itself an error).
//
// A panicking subscriber is recovered, treated as having done nothing, and
// does not stop the remaining subscribers from running - module exceptions
// are caught at the event-bus boundary per SPEC_FULL.md §7.
func (b *Bus) Broadcast(kind Kind, args ...interface{}) {
	for _, s := range b.subs[kind] {
		if s.bfn == nil {
			continue
		}
		func() {
			defer func() { _ = recover() }()
			s.bfn(args...)
		}()
	}
}

// FirstResult invokes first-result-registered subscribers under kind in
// priority order until one returns a non-Passthru result, which wins.
// Ties are broken by registration order (already encoded in priority
// sort). If every subscriber returns Passthru, or there are none, the
// overall result is Passthru.
//
// A panicking subscriber is recovered and treated as Passthru, matching
// the "offending module is logged and the hook result treated as
// PASSTHRU" policy in SPEC_FULL.md §7.
func (b *Bus) FirstResult(kind Kind, args ...interface{}) Result {
	for _, s := range b.subs[kind] {
		if s.ffn == nil {
			continue
		}
		res := callFirstResult(s.ffn, args...)
		if res != Passthru {
			return res
		}
	}
	return Passthru
}

// callFirstResult runs fn with panic recovery, defaulting to Passthru on
// panic since a named return initialised to Passthru is what survives an
// unwound panic.
func callFirstResult(fn FirstResultFunc, args ...interface{}) (res Result) {
	res = Passthru
	defer func() { _ = recover() }()
	res = fn(args...)
	return res
}
