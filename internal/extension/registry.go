// Package extension implements the typed, tagged-handle extension map
// described in SPEC_FULL.md §9: out-of-tree modules attach opaque state to
// a User or Channel by string key, and get a dispose callback invoked when
// either the key is removed or the owning object is destroyed.
package extension

import (
	"fmt"

	"github.com/google/uuid"
)

// Handle is the tagged opaque value returned by Extend and stored in a
// Map. Tag is a fresh UUID per Extend call, so handles that happen to share
// an underlying value stay distinguishable. Dispose callbacks are looked up
// by key, not by Tag.
type Handle struct {
	Tag   uuid.UUID
	Value interface{}
}

// DisposeFunc is invoked with a handle's value when that handle is removed,
// either explicitly (Shrink) or because the owning object was destroyed
// (DisposeAll).
type DisposeFunc func(value interface{})

// Map is a per-object string-keyed extension registry. The zero value is
// ready to use.
type Map struct {
	entries map[string]Handle
	dispose map[string]DisposeFunc
}

// Extend inserts value under key with an optional dispose callback.
// Insertion rejects duplicates: Extend returns false and does not modify
// the map if key is already present.
func (m *Map) Extend(key string, value interface{}, dispose DisposeFunc) bool {
	if m.entries == nil {
		m.entries = make(map[string]Handle)
		m.dispose = make(map[string]DisposeFunc)
	}
	if _, exists := m.entries[key]; exists {
		return false
	}

	m.entries[key] = Handle{Tag: uuid.New(), Value: value}
	if dispose != nil {
		m.dispose[key] = dispose
	}
	return true
}

// Get returns the handle stored under key, and whether it was present.
func (m *Map) Get(key string) (Handle, bool) {
	if m.entries == nil {
		return Handle{}, false
	}
	h, ok := m.entries[key]
	return h, ok
}

// Shrink removes key, invoking its dispose callback if one was registered.
// It is idempotent: removing an absent key is a no-op, not an error.
func (m *Map) Shrink(key string) {
	if m.entries == nil {
		return
	}
	h, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	if fn, ok := m.dispose[key]; ok {
		delete(m.dispose, key)
		fn(h.Value)
	}
}

// DisposeAll invokes every remaining entry's dispose callback and clears
// the map. Call this when the owning User or Channel is destroyed.
func (m *Map) DisposeAll() {
	if m.entries == nil {
		return
	}
	for key, fn := range m.dispose {
		fn(m.entries[key].Value)
	}
	m.entries = nil
	m.dispose = nil
}

// Keys returns the extension keys currently set, for diagnostics (e.g.
// STATS output).
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// String renders a short diagnostic summary.
func (m *Map) String() string {
	return fmt.Sprintf("extension.Map{%d entries}", len(m.entries))
}
