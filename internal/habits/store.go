// Habit store — the one piece of state shared across agents. Reads happen
// on every decision from every agent; writes come from the miner and the
// reinforcement updater. An RWMutex keeps reads concurrent and serializes
// writes.
package habits

import (
	"sort"
	"sync"

	"github.com/talgya/little-lives/internal/agents"
)

// Store maps discretized state keys to their habits. Create one per
// simulation run and pass it explicitly to the policy and the miner —
// there is no package-level instance.
type Store struct {
	mu    sync.RWMutex
	byKey map[StateKey][]*Habit
	count int
}

// NewStore creates an empty habit store.
func NewStore() *Store {
	return &Store{byKey: make(map[StateKey][]*Habit)}
}

// Len returns the total number of habits held, inert ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Strongest returns the strongest habit for a key with strength at or above
// minInfluence. Inert and weak habits never bias a decision.
func (s *Store) Strongest(key StateKey, minInfluence float64) (agents.ActionKind, float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Habit
	for _, h := range s.byKey[key] {
		if h.Strength < minInfluence {
			continue
		}
		// Equal strengths resolve by action order so replays stay identical.
		if best == nil || h.Strength > best.Strength ||
			(h.Strength == best.Strength && h.Action < best.Action) {
			best = h
		}
	}
	if best == nil {
		return agents.ActionIdle, 0, false
	}
	return best.Action, best.Strength, true
}

// Upsert creates the habit for (key, action) if absent, otherwise
// strengthens it and folds in the new observations. Called by the miner.
func (s *Store) Upsert(key StateKey, action agents.ActionKind, strengthStep float64, observations uint64, successes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h := s.find(key, action); h != nil {
		h.Strength += strengthStep
		h.clampStrength()
		h.Observations += observations
		h.Successes += successes
		return
	}

	s.byKey[key] = append(s.byKey[key], &Habit{
		Key:          key,
		Action:       action,
		Strength:     strengthStep,
		Observations: observations,
		Successes:    successes,
	})
	s.count++
}

// Reinforce updates the habit that biased a decision with its realized
// outcome. A miss (habit mined away between decision and update cannot
// happen — habits are never deleted) is a no-op.
func (s *Store) Reinforce(key StateKey, action agents.ActionKind, success bool, step float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h := s.find(key, action); h != nil {
		h.reinforce(success, step)
	}
}

// DecayAll multiplies every habit's strength by (1 - rate), stopping at the
// floor so decay alone never extinguishes the record. Habits already below
// the floor (driven there by failures) are left where they are.
func (s *Store) DecayAll(rate, floor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, hs := range s.byKey {
		for _, h := range hs {
			if h.Strength < floor {
				continue
			}
			h.Strength *= 1 - rate
			if h.Strength < floor {
				h.Strength = floor
			}
		}
	}
}

func (s *Store) find(key StateKey, action agents.ActionKind) *Habit {
	for _, h := range s.byKey[key] {
		if h.Action == action {
			return h
		}
	}
	return nil
}

// Export returns a stable, serializable projection of the store: state key
// string to habits ranked by strength. Read-only; mutating the result does
// not touch the store.
func (s *Store) Export() map[string][]ExportedHabit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]ExportedHabit, len(s.byKey))
	for key, hs := range s.byKey {
		list := make([]ExportedHabit, 0, len(hs))
		for _, h := range hs {
			list = append(list, ExportedHabit{
				StateKey:     key.String(),
				Action:       agents.ActionName(h.Action),
				Strength:     h.Strength,
				Observations: h.Observations,
				Successes:    h.Successes,
			})
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Strength > list[j].Strength })
		out[key.String()] = list
	}
	return out
}

// ExportedHabit is the serialized form of one habit.
type ExportedHabit struct {
	StateKey     string  `json:"state_key" db:"state_key"`
	Action       string  `json:"action" db:"action"`
	Strength     float64 `json:"strength" db:"strength"`
	Observations uint64  `json:"observations" db:"observations"`
	Successes    uint64  `json:"successes" db:"successes"`
}

// Seed loads exported habits into the store, replacing nothing — intended
// for an empty store at run start.
func (s *Store) Seed(habitList []ExportedHabit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range habitList {
		key, err := ParseStateKey(e.StateKey)
		if err != nil {
			return err
		}
		action, ok := agents.ActionFromName(e.Action)
		if !ok {
			return errUnknownAction(e.Action)
		}
		if s.find(key, action) != nil {
			continue
		}
		h := &Habit{
			Key:          key,
			Action:       action,
			Strength:     e.Strength,
			Observations: e.Observations,
			Successes:    e.Successes,
		}
		h.clampStrength()
		s.byKey[key] = append(s.byKey[key], h)
		s.count++
	}
	return nil
}
