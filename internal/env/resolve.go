// Action outcome resolution — the opaque outcome oracle the decision
// engine consumes. Magnitudes follow fixed per-tick effect tables scaled
// by the comfort modifier; infeasible actions resolve as rejections, never
// as errors.
package env

import (
	"github.com/talgya/little-lives/internal/agents"
)

// NeedDeltas is the realized effect of one resolved action.
type NeedDeltas struct {
	Hunger  float64 `json:"hunger"`
	Energy  float64 `json:"energy"`
	Social  float64 `json:"social"`
	WorkSat float64 `json:"work_sat"`
	Wallet  float64 `json:"wallet"`
}

// Outcome is what the environment reports back after an action resolves.
type Outcome struct {
	Deltas   NeedDeltas `json:"deltas"`
	Rejected bool       `json:"rejected"`
	Reason   string     `json:"reason,omitempty"`
}

// Per-meal and per-outing prices.
const (
	mealCost   = 5
	socialCost = 3
)

// Resolve places the agent for the chosen action and returns the realized
// deltas. A zone that filled between legality check and placement, or an
// agent too broke or too spent for the action, yields a rejection the
// caller records as a zero-or-negative reward and moves on.
func (w *World) Resolve(a *agents.Agent, action agents.ActionKind, tick uint64) Outcome {
	w.mu.Lock()
	zone := w.place(a.ID, action)
	weather := w.weatherAt(tick)
	w.mu.Unlock()

	if zone == nil {
		return Outcome{Rejected: true, Reason: "no zone capacity"}
	}

	comfort := ComfortModifier(weather, tick)

	switch action {
	case agents.ActionEat:
		if a.Needs.Wallet < mealCost {
			return Outcome{Rejected: true, Reason: "cannot afford meal"}
		}
		return Outcome{Deltas: NeedDeltas{
			Hunger: -25 * (0.5 + comfort),
			Wallet: -mealCost,
		}}

	case agents.ActionSleep:
		return Outcome{Deltas: NeedDeltas{
			Energy: 30 * (0.5 + comfort),
			Social: 1, // Sleeping is solitary; the deficit creeps.
		}}

	case agents.ActionWork:
		if a.Needs.Energy <= 20 {
			return Outcome{Rejected: true, Reason: "too exhausted to work"}
		}
		return Outcome{Deltas: NeedDeltas{
			Wallet:  (10 + a.Personality.Ambition*5) * (0.5 + comfort),
			Energy:  -10,
			Hunger:  5,
			WorkSat: 8 * (0.5 + comfort),
		}}

	case agents.ActionSocialize:
		if a.Needs.Wallet < socialCost {
			return Outcome{Rejected: true, Reason: "cannot afford outing"}
		}
		return Outcome{Deltas: NeedDeltas{
			Social: -20 * (0.5 + comfort),
			Wallet: -socialCost,
		}}

	default: // Idle — a breather, nothing more.
		return Outcome{Deltas: NeedDeltas{Energy: 2}}
	}
}
