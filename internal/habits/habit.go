// Package habits provides the habit store and the pattern miner: the
// process-wide memory of which actions have worked in which coarse states.
package habits

import (
	"fmt"
	"strings"

	"github.com/talgya/little-lives/internal/agents"
)

// Bucket is a coarse need level.
type Bucket uint8

const (
	BucketLow Bucket = iota
	BucketMid
	BucketHigh
)

func bucketName(b Bucket) string {
	switch b {
	case BucketLow:
		return "low"
	case BucketMid:
		return "mid"
	default:
		return "high"
	}
}

func bucketFromName(s string) (Bucket, bool) {
	switch s {
	case "low":
		return BucketLow, true
	case "mid":
		return BucketMid, true
	case "high":
		return BucketHigh, true
	}
	return BucketLow, false
}

func bucketOf(v float64) Bucket {
	switch {
	case v < 34:
		return BucketLow
	case v < 67:
		return BucketMid
	default:
		return BucketHigh
	}
}

// StateKey is the discretized need state habits generalize over. It is a
// comparable value type so it can key maps directly.
type StateKey struct {
	Hunger  Bucket
	Energy  Bucket
	Social  Bucket
	WorkSat Bucket
}

// KeyFor discretizes a need state into its habit key.
func KeyFor(n agents.NeedState) StateKey {
	return StateKey{
		Hunger:  bucketOf(n.Hunger),
		Energy:  bucketOf(n.Energy),
		Social:  bucketOf(n.SocialDeficit),
		WorkSat: bucketOf(n.WorkSat),
	}
}

// String renders the key in its canonical serialized form.
func (k StateKey) String() string {
	return fmt.Sprintf("hunger:%s|energy:%s|social:%s|work:%s",
		bucketName(k.Hunger), bucketName(k.Energy), bucketName(k.Social), bucketName(k.WorkSat))
}

// ParseStateKey parses the canonical serialized form.
func ParseStateKey(s string) (StateKey, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 {
		return StateKey{}, fmt.Errorf("state key %q: want 4 segments, got %d", s, len(parts))
	}
	var key StateKey
	for i, want := range []string{"hunger", "energy", "social", "work"} {
		name, val, found := strings.Cut(parts[i], ":")
		if !found || name != want {
			return StateKey{}, fmt.Errorf("state key %q: segment %d must be %q", s, i, want)
		}
		b, ok := bucketFromName(val)
		if !ok {
			return StateKey{}, fmt.Errorf("state key %q: unknown bucket %q", s, val)
		}
		switch i {
		case 0:
			key.Hunger = b
		case 1:
			key.Energy = b
		case 2:
			key.Social = b
		case 3:
			key.WorkSat = b
		}
	}
	return key, nil
}

// Habit is a persisted association between a discretized state and an
// action. Strength stays in [0,1]; below the configured floor the habit is
// inert (zero influence) but retained so its counters survive for
// diagnostics. Habits are never deleted.
type Habit struct {
	Key          StateKey          `json:"-"`
	Action       agents.ActionKind `json:"-"`
	Strength     float64           `json:"strength"`
	Observations uint64            `json:"observations"`
	Successes    uint64            `json:"successes"`
}

// SuccessRate returns the observed success fraction, 0.5 before any
// observations.
func (h *Habit) SuccessRate() float64 {
	if h.Observations == 0 {
		return 0.5
	}
	return float64(h.Successes) / float64(h.Observations)
}

// Inert reports whether the habit has decayed below the influence floor.
func (h *Habit) Inert(floor float64) bool {
	return h.Strength < floor
}

// reinforce moves strength up on success, down on failure, clamped to [0,1].
func (h *Habit) reinforce(success bool, step float64) {
	h.Observations++
	if success {
		h.Successes++
		h.Strength += step
	} else {
		h.Strength -= step / 2
	}
	h.clampStrength()
}

func (h *Habit) clampStrength() {
	if h.Strength < 0 {
		h.Strength = 0
	}
	if h.Strength > 1 {
		h.Strength = 1
	}
}
