// Memory buffer — a fixed-capacity FIFO ring of recent action outcomes.
// Order is meaningful: the pattern miner relies on temporal adjacency.
package agents

// MemoryRecord is one completed decision: the state the agent saw, what it
// did, what that earned, and the state it left behind.
type MemoryRecord struct {
	Tick   uint64     `json:"tick"`
	Before NeedState  `json:"before"`
	Action ActionKind `json:"action"`
	Reward float64    `json:"reward"`
	After  NeedState  `json:"after"`
}

// MemoryBuffer is a bounded insertion-ordered ring. Append is O(1); once
// capacity is exceeded the oldest record is overwritten.
type MemoryBuffer struct {
	records []MemoryRecord
	head    int // Next write position
	full    bool
}

// NewMemoryBuffer creates a ring with the given capacity.
func NewMemoryBuffer(capacity int) *MemoryBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryBuffer{records: make([]MemoryRecord, capacity)}
}

// Append inserts a record, evicting the oldest when the ring is full.
func (m *MemoryBuffer) Append(r MemoryRecord) {
	m.records[m.head] = r
	m.head++
	if m.head == len(m.records) {
		m.head = 0
		m.full = true
	}
}

// Len returns the number of records currently held.
func (m *MemoryBuffer) Len() int {
	if m.full {
		return len(m.records)
	}
	return m.head
}

// Capacity returns the fixed ring size.
func (m *MemoryBuffer) Capacity() int {
	return len(m.records)
}

// Snapshot returns the held records oldest-first as a fresh slice. The
// copy is what the miner reads, so concurrent appends after the call
// cannot disturb a mining pass.
func (m *MemoryBuffer) Snapshot() []MemoryRecord {
	n := m.Len()
	if n == 0 {
		return nil
	}
	out := make([]MemoryRecord, 0, n)
	start := 0
	if m.full {
		start = m.head
	}
	for i := 0; i < n; i++ {
		out = append(out, m.records[(start+i)%len(m.records)])
	}
	return out
}

// Last returns the most recent record, or false if the buffer is empty.
func (m *MemoryBuffer) Last() (MemoryRecord, bool) {
	if m.Len() == 0 {
		return MemoryRecord{}, false
	}
	idx := m.head - 1
	if idx < 0 {
		idx = len(m.records) - 1
	}
	return m.records[idx], true
}
