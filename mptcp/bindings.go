package mptcp

import (
	"encoding/binary"
	"fmt"
)

// keySlot names which session key slot an engine-generated binding refers
// to. Dereferencing always goes through the owning Session (spec.md §9
// "cyclic ownership" design note), so a binding never holds a back-pointer.
type keySlot uint8

const (
	localKeySlot keySlot = iota
	peerKeySlot
)

// bindingValue is the tagged union from spec.md §9: either an owned byte
// buffer the script supplied, or a reference into the session's key slots.
type bindingValue struct {
	owned   []byte
	sessRef keySlot
	isOwned bool
}

// bindingSource records who produced a binding's value.
type bindingSource uint8

const (
	sourceScript bindingSource = iota
	sourceEngine
)

// binding is the value half of the name -> binding map (spec.md §3).
type binding struct {
	subtype uint8
	value   bindingValue
	source  bindingSource
}

// bindingStore is the variable binding store (module A): a FIFO of
// script-supplied names awaiting resolution, plus a name -> binding map.
// Grounded on the source's vars_queue (a bounded queue with
// enqueue/dequeue) and vars hashmap (uthash keyed by name); Go idiom
// replaces both with a slice-backed queue and a plain map (spec.md §9).
type bindingStore struct {
	pending  []string
	capacity int // 0 means unbounded
	vars     map[string]*binding
	sess     *Session
}

func newBindingStore(sess *Session, capacity int) *bindingStore {
	return &bindingStore{
		capacity: capacity,
		vars:     make(map[string]*binding),
		sess:     sess,
	}
}

// enqueue pushes a copy of name onto the pending queue. Returns
// ResourceError if the store is bounded and already at capacity.
func (s *bindingStore) enqueue(name string) error {
	if s.capacity > 0 && len(s.pending) >= s.capacity {
		return &ResourceError{Reason: fmt.Sprintf("pending variable queue at capacity %d", s.capacity), Err: ErrQueueFull}
	}
	s.pending = append(s.pending, name)
	return nil
}

// peek returns the front of the pending queue without removing it.
func (s *bindingStore) peek() (string, bool) {
	if len(s.pending) == 0 {
		return "", false
	}
	return s.pending[0], true
}

// pop dequeues the front name.
func (s *bindingStore) pop() (string, bool) {
	name, ok := s.peek()
	if !ok {
		return "", false
	}
	s.pending = s.pending[1:]
	return name, true
}

// bindKeyRef inserts a binding whose value references a session key slot:
// owning=false, source=engine.
func (s *bindingStore) bindKeyRef(name string, slot keySlot) {
	s.vars[name] = &binding{
		subtype: SubtypeMPCapable,
		value:   bindingValue{sessRef: slot, isOwned: false},
		source:  sourceEngine,
	}
}

// bindScriptValue inserts an owned copy of bytes: owning=true, source=script.
func (s *bindingStore) bindScriptValue(name string, value []byte) {
	owned := make([]byte, len(value))
	copy(owned, value)
	s.vars[name] = &binding{
		subtype: SubtypeMPCapable,
		value:   bindingValue{owned: owned, isOwned: true},
		source:  sourceScript,
	}
}

// lookup is an exact-match lookup in the bindings map.
func (s *bindingStore) lookup(name string) (*binding, bool) {
	b, ok := s.vars[name]
	return b, ok
}

// isScriptDefinedKey reports whether name is bound to a script-supplied
// MP_CAPABLE key value, and returns that value if so.
func (s *bindingStore) isScriptDefinedKey(name string) (uint64, bool) {
	b, ok := s.lookup(name)
	if !ok || b.subtype != SubtypeMPCapable || b.source != sourceScript || !b.value.isOwned {
		return 0, false
	}
	if len(b.value.owned) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b.value.owned), true
}

// consumeNextKey pops the front pending name, looks it up, and returns the
// u64 value its binding resolves to (dereferencing through sess for
// engine-owned key references).
func (s *bindingStore) consumeNextKey() (uint64, error) {
	name, ok := s.pop()
	if !ok {
		return 0, &StateError{Reason: "no pending variable name to resolve a key from", Err: ErrQueueEmpty}
	}
	b, ok := s.lookup(name)
	if !ok {
		return 0, &StateError{Reason: fmt.Sprintf("variable %q was never bound", name), Err: ErrNotFound}
	}
	if b.subtype != SubtypeMPCapable {
		return 0, &StateError{Reason: fmt.Sprintf("variable %q is not an MP_CAPABLE binding", name), Err: ErrBadSubtype}
	}
	return s.resolve(b), nil
}

// resolve dereferences a binding to its concrete u64, going through the
// session for engine-owned references.
func (s *bindingStore) resolve(b *binding) uint64 {
	if b.value.isOwned {
		return binary.BigEndian.Uint64(b.value.owned)
	}
	switch b.value.sessRef {
	case localKeySlot:
		return s.sess.localKey
	case peerKeySlot:
		return s.sess.peerKey
	default:
		return 0
	}
}
