// Package socketengine implements the server's readiness-based dispatch
// contract. The one shipped backend is built on goroutines and Go's
// runtime netpoller rather than a raw epoll/kqueue syscall table: see
// DESIGN.md for why. A blocking read or write unblocking under the Go
// scheduler already is the readiness notification; this package's job is
// to surface that through the same Handler/event-mask contract a
// traditional epoll-backed engine would expose, including the
// handler-identity re-validation after each callback that protects against
// a handler being replaced or removed mid-dispatch.
package socketengine

import (
	"sync"
)

// EventMask bits describe what a Handler currently wants to be notified
// about. They compose the same way the original engine's FD_WANT_* flags
// do.
type EventMask uint8

const (
	WantReadPoll EventMask = 1 << iota
	WantReadFast
	WantWritePoll
	WantWriteFast
	WantWriteSingle
	ReadWillBlock
	WriteWillBlock
)

// EventKind names what fired for a Handler callback.
type EventKind int

const (
	EventRead EventKind = iota
	EventWrite
	EventError
)

// Handler is anything registrable with an Engine. GetFD identifies the
// registration slot (not a real file descriptor in the goroutine-backed
// implementation, but an opaque stable integer handle, matching the
// original contract's use of fd as both identity and lookup key).
type Handler interface {
	GetFD() int
	HandleEvent(EventKind)
}

type registration struct {
	handler Handler
	mask    EventMask
	// generation is bumped on every Add to the same fd slot, and compared
	// after each callback: "eh != GetRef(fd)" in the original engine becomes
	// "generation changed" here.
	generation uint64
}

// Engine is the readiness dispatcher. It is safe for concurrent use from
// the goroutines that detect readiness (see Conn in package ircd), but
// Dispatch itself is meant to be driven from a single event-loop goroutine
// per the concurrency model in SPEC_FULL.md §5.
type Engine struct {
	mu   sync.Mutex
	regs map[int]*registration
	gen  uint64

	events chan readyEvent
}

type readyEvent struct {
	fd         int
	kind       EventKind
	generation uint64
}

// New creates an empty Engine. queueSize bounds how many pending readiness
// events may be buffered before a reporting goroutine blocks; 0 selects an
// implementation default.
func New(queueSize int) *Engine {
	if queueSize <= 0 {
		queueSize = 4096
	}
	return &Engine{
		regs:   make(map[int]*registration),
		events: make(chan readyEvent, queueSize),
	}
}

// Add registers handler with the given initial mask. It returns false if
// the handler's fd is already registered.
func (e *Engine) Add(h Handler, mask EventMask) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	fd := h.GetFD()
	if _, exists := e.regs[fd]; exists {
		return false
	}

	e.gen++
	e.regs[fd] = &registration{handler: h, mask: mask, generation: e.gen}
	return true
}

// SetEventMask updates the mask recorded for fd's current registration. It
// is a no-op if fd is not registered.
func (e *Engine) SetEventMask(fd int, mask EventMask) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.regs[fd]; ok {
		r.mask = mask
	}
}

// EventMask returns the mask currently recorded for fd, or 0 if fd is not
// registered.
func (e *Engine) EventMask(fd int) EventMask {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.regs[fd]; ok {
		return r.mask
	}
	return 0
}

// Del deregisters fd. After Del returns, no further callback for this fd
// will fire in the current or any later dispatch, because the generation
// counter that gated it has no live registration to match against.
func (e *Engine) Del(fd int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.regs, fd)
}

// currentGeneration reports the generation presently registered for fd, or
// 0 (never a valid generation) if fd is unregistered.
func (e *Engine) currentGeneration(fd int) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.regs[fd]; ok {
		return r.generation
	}
	return 0
}

func (e *Engine) handlerFor(fd int) Handler {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.regs[fd]; ok {
		return r.handler
	}
	return nil
}

// Notify is how a Conn's reader/writer goroutine reports readiness: "fd
// became ready for kind, as of generation". Dispatch discards stale
// generations itself, so callers do not need to check currentGeneration
// before calling Notify.
func (e *Engine) Notify(fd int, kind EventKind, generation uint64) {
	e.events <- readyEvent{fd: fd, kind: kind, generation: generation}
}

// Dispatch drains queued readiness events until the queue is empty,
// invoking HandleEvent on each still-current handler. With block true it
// waits for the first event; with block false it returns immediately if
// nothing is queued. It returns the number of callbacks actually invoked.
//
// Within one call, events for the same fd fire in the order they were
// queued, and a stale event (generation mismatch, meaning the handler was
// replaced or removed since the event was reported) is silently dropped -
// this is the re-validation the original contract performs with
// "eh != GetRef(fd)" after every callback.
func (e *Engine) Dispatch(block bool) int {
	n := 0

	first := true
	for {
		var ev readyEvent
		if first && block {
			ev = <-e.events
			first = false
		} else {
			select {
			case ev = <-e.events:
			default:
				return n
			}
		}

		if e.currentGeneration(ev.fd) != ev.generation {
			continue
		}

		h := e.handlerFor(ev.fd)
		if h == nil {
			continue
		}

		h.HandleEvent(ev.kind)
		n++

		// Re-validate once more: the callback itself may have replaced or
		// removed the registration (e.g. via QuitUser). Nothing further to do
		// here since we only process one queued event per loop iteration, but
		// this mirrors the spec's "skip subsequent callbacks for the same fd in
		// this batch" by construction: a stale follow-up event for the same fd
		// will fail the generation check above.
	}
}

// Close removes all registrations. It does not close any underlying
// connections; callers own that.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regs = make(map[int]*registration)
}

// GenerationFor exposes the current generation for fd so a Conn can tag the
// readiness events it reports with the generation that was live when it
// was registered.
func (e *Engine) GenerationFor(fd int) uint64 {
	return e.currentGeneration(fd)
}
