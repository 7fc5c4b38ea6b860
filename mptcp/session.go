package mptcp

// Session holds the per-connection state a packetdrill-style MPTCP engine
// needs across the whole exchange: the pair of 64-bit keys, the derived
// initial DSN/DACK, and the address-ID counter handed out to new subflows
// (spec.md §3, module C). It is a pure data holder; idempotent setters
// mirror the source's set_packetdrill_key/set_kernel_key.
type Session struct {
	localKey    uint64
	localKeySet bool
	peerKey     uint64
	peerKeySet  bool

	initialDSN     uint64
	initialDACK    uint64
	derivedTrigger bool // true once initialDSN/initialDACK have been computed

	nextLocalAddrID uint8

	bindings *bindingStore
	subflows *subflowTable
	rand     Source
	bufs     *scratchPool
}

// NewSession creates an empty session. pendingVarsCapacity bounds the
// variable-binding FIFO (0 = unbounded); rand supplies nonces/keys; bufs
// pools crypto scratch buffers (NewSession creates its own if bufs is nil).
func NewSession(pendingVarsCapacity int, rand Source, bufs *scratchPool) *Session {
	if bufs == nil {
		bufs = newScratchPool(0)
	}
	s := &Session{rand: rand, bufs: bufs}
	s.bindings = newBindingStore(s, pendingVarsCapacity)
	s.subflows = newSubflowTable()
	return s
}

// setLocalKey is idempotent: a second call is a no-op, matching
// set_packetdrill_key's documented invariant that a key, once set, is
// immutable for the rest of the connection.
func (s *Session) setLocalKey(key uint64) {
	if s.localKeySet {
		return
	}
	s.localKey = key
	s.localKeySet = true
}

func (s *Session) setPeerKey(key uint64) {
	if s.peerKeySet {
		return
	}
	s.peerKey = key
	s.peerKeySet = true
}

// deriveInitialsOnce computes initial_dsn/initial_dack exactly once, at the
// first call after both keys are known. Subsequent calls are no-ops.
func (s *Session) deriveInitialsOnce() error {
	if s.derivedTrigger {
		return nil
	}
	if !s.localKeySet || !s.peerKeySet {
		return &StateError{Reason: "cannot derive initial DSN/DACK before both keys are set", Err: ErrKeysNotSet}
	}
	s.initialDSN = idsn64(s.localKey)
	s.initialDACK = idsn64(s.peerKey)
	s.derivedTrigger = true
	return nil
}

// InitialDSN returns the session's initial data sequence number. Reading it
// before both keys are set is a programming error and returns StateError.
func (s *Session) InitialDSN() (uint64, error) {
	if !s.derivedTrigger {
		return 0, &StateError{Reason: "initial_dsn consulted before keys known", Err: ErrKeysNotSet}
	}
	return s.initialDSN, nil
}

// InitialDACK returns the session's initial data ack.
func (s *Session) InitialDACK() (uint64, error) {
	if !s.derivedTrigger {
		return 0, &StateError{Reason: "initial_dack consulted before keys known", Err: ErrKeysNotSet}
	}
	return s.initialDACK, nil
}

// LocalKey and PeerKey expose the session's keys read-only, for host-tool
// diagnostics and tests.
func (s *Session) LocalKey() (uint64, bool) { return s.localKey, s.localKeySet }
func (s *Session) PeerKey() (uint64, bool)  { return s.peerKey, s.peerKeySet }

// nextAddrID hands out the next local address-ID and advances the counter.
func (s *Session) nextAddrID() uint8 {
	id := s.nextLocalAddrID
	s.nextLocalAddrID++
	return id
}

// EnqueueVar registers a script identifier awaiting resolution (spec.md §6
// upstream interface enqueue_var).
func (s *Session) EnqueueVar(name string) error {
	return s.bindings.enqueue(name)
}

// DeclareScriptValue binds a script identifier to a literal value the
// script supplied (spec.md §6 upstream interface declare_script_value).
func (s *Session) DeclareScriptValue(name string, value []byte) {
	s.bindings.bindScriptValue(name, value)
}

// Subflows exposes the subflow table for host-tool introspection (e.g. the
// end-to-end test scenarios in spec.md §8 assert on table size).
func (s *Session) Subflows() []*Subflow {
	out := make([]*Subflow, len(s.subflows.flows))
	copy(out, s.subflows.flows)
	return out
}
