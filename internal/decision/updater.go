// Reinforcement updater — the only place decision outcomes mutate state.
package decision

import (
	"math"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/config"
	"github.com/talgya/little-lives/internal/env"
	"github.com/talgya/little-lives/internal/habits"
)

// rejectionPenalty is the reward for an action the environment refused at
// resolution time. Recoverable: recorded and learned from, never fatal.
const rejectionPenalty = -0.25

// Updater turns realized outcomes into bounded learning updates.
type Updater struct {
	cfg   config.DecisionConfig
	habit config.HabitsConfig
	store *habits.Store
}

// NewUpdater creates an updater writing habit reinforcement into store.
func NewUpdater(cfg config.DecisionConfig, habitCfg config.HabitsConfig, store *habits.Store) *Updater {
	return &Updater{cfg: cfg, habit: habitCfg, store: store}
}

// Reward computes the scalar feedback signal for an outcome: a weighted sum
// of need improvements (deficit drops and level gains count positive) plus
// a wallet term. The weights are fixed configuration, not learned, so the
// signal stays stable under weight drift.
func Reward(cfg config.DecisionConfig, out env.Outcome) float64 {
	if out.Rejected {
		return rejectionPenalty
	}
	d := out.Deltas
	return -d.Hunger*cfg.RewardHunger +
		d.Energy*cfg.RewardEnergy +
		-d.Social*cfg.RewardSocial +
		d.WorkSat*cfg.RewardWorkSat +
		d.Wallet*cfg.RewardMoney
}

// Apply computes the reward for a resolved decision and performs the
// bounded updates: the chosen action's utility weight, and the active
// habit's strength and success counters. Returns the reward.
func (u *Updater) Apply(a *agents.Agent, dec Decision, out env.Outcome) float64 {
	reward := Reward(u.cfg, out)

	lr := a.Personality.LearningRate(u.cfg.BaseLearningRate)
	a.Weights[dec.Action] = clipWeight(a.Weights[dec.Action]+lr*reward, u.cfg.WeightMin, u.cfg.WeightMax)

	if dec.HabitUsed && dec.HabitAction == dec.Action {
		u.store.Reinforce(dec.StateKey, dec.Action, reward > 0, u.habit.ReinforceStep)
	}

	a.CumulativeReward += reward
	return reward
}

// clipWeight bounds a weight into [lo, hi]. Non-finite values collapse to
// zero rather than poisoning every subsequent score.
func clipWeight(w, lo, hi float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	if w < lo {
		return lo
	}
	if w > hi {
		return hi
	}
	return w
}
