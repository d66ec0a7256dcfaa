// Package agents provides the agent data model: needs, personality,
// utility weights, and the per-agent memory buffer.
package agents

// AgentID is a unique identifier for an agent.
type AgentID uint64

// ActionKind enumerates what an agent can do in one tick.
type ActionKind uint8

const (
	ActionEat ActionKind = iota
	ActionSleep
	ActionWork
	ActionSocialize
	ActionIdle
)

// NumActions is the size of the action set.
const NumActions = 5

// ActionPriority is the fixed tie-break ordering: when two actions score
// equally, the one appearing earlier here wins, so identical runs replay
// identically.
var ActionPriority = [NumActions]ActionKind{
	ActionEat, ActionSleep, ActionWork, ActionSocialize, ActionIdle,
}

// ActionName returns the human-readable name of an action.
func ActionName(k ActionKind) string {
	switch k {
	case ActionEat:
		return "eat"
	case ActionSleep:
		return "sleep"
	case ActionWork:
		return "work"
	case ActionSocialize:
		return "socialize"
	default:
		return "idle"
	}
}

// ActionFromName parses an action name. Returns ActionIdle, false on
// unknown input.
func ActionFromName(s string) (ActionKind, bool) {
	switch s {
	case "eat":
		return ActionEat, true
	case "sleep":
		return ActionSleep, true
	case "work":
		return ActionWork, true
	case "socialize":
		return ActionSocialize, true
	case "idle":
		return ActionIdle, true
	}
	return ActionIdle, false
}

// UtilityWeights is the per-agent learned bias vector, one entry per action.
// The reinforcement updater adjusts it additively and clips it into the
// configured range; everything else reads it.
type UtilityWeights [NumActions]float64

// Agent is one virtual human in the simulation. Owned exclusively by the
// run that created it; never shared across runs.
type Agent struct {
	ID   AgentID `json:"id"`
	Name string  `json:"name"`

	Needs       NeedState      `json:"needs"`
	Personality Personality    `json:"personality"`
	Weights     UtilityWeights `json:"weights"`

	// Mood is a diagnostic scalar in [0,1] drifting toward overall need
	// satisfaction. Reported, never consulted by the decision policy.
	Mood float64 `json:"mood"`

	CurrentAction    ActionKind `json:"current_action"`
	CumulativeReward float64    `json:"cumulative_reward"`
	TotalActions     uint64     `json:"total_actions"`

	Memory *MemoryBuffer `json:"-"`

	BornTick uint64 `json:"born_tick"`
}

// UpdateMood drifts mood toward the current overall need satisfaction.
func (a *Agent) UpdateMood() {
	target := a.Needs.OverallSatisfaction()
	a.Mood += (target - a.Mood) * 0.3
	if a.Mood < 0 {
		a.Mood = 0
	}
	if a.Mood > 1 {
		a.Mood = 1
	}
}
