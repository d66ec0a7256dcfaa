// Decision records — the per-tick, per-agent output stream consumed by
// persistence and observation. Emission is fire-and-forget: the engine
// never waits on a consumer.
package engine

import (
	"sync/atomic"
)

// DecisionRecord is one decision as seen from outside the engine.
type DecisionRecord struct {
	RunID      string             `json:"run_id"`
	Tick       uint64             `json:"tick"`
	AgentID    uint64             `json:"agent_id"`
	Action     string             `json:"action"`
	Scores     map[string]float64 `json:"scores"`
	Reward     float64            `json:"reward"`
	Explored   bool               `json:"explored,omitempty"`
	Overridden bool               `json:"overridden,omitempty"`
	Rejected   bool               `json:"rejected,omitempty"`
}

// Emitter fans decision records out to consumers through a bounded channel.
// When the buffer is full the record is dropped and counted — a slow
// consumer costs observability, never simulation throughput.
type Emitter struct {
	ch      chan DecisionRecord
	dropped atomic.Uint64
}

// NewEmitter creates an emitter with the given buffer capacity.
func NewEmitter(buffer int) *Emitter {
	return &Emitter{ch: make(chan DecisionRecord, buffer)}
}

// Emit offers a record without blocking.
func (e *Emitter) Emit(r DecisionRecord) {
	select {
	case e.ch <- r:
	default:
		e.dropped.Add(1)
	}
}

// Records returns the consumer side of the stream.
func (e *Emitter) Records() <-chan DecisionRecord {
	return e.ch
}

// Dropped returns how many records have been discarded so far.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

// Close ends the stream. Call only after the last Emit.
func (e *Emitter) Close() {
	close(e.ch)
}
