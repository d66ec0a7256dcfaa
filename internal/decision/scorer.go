// Package decision implements the per-tick decision core: utility scoring,
// action selection, and the reinforcement updates that close the loop.
package decision

import (
	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/config"
	"github.com/talgya/little-lives/internal/env"
)

// Scores holds the utility score per candidate action. Only legal actions
// appear; absence means the action was excluded before scoring.
type Scores map[agents.ActionKind]float64

// Named maps scores to action names for serialization.
func (s Scores) Named() map[string]float64 {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[agents.ActionName(k)] = v
	}
	return out
}

// Score computes the utility of every legal action: a need-satisfaction
// term scaled by current deficiency, a personality modifier, an
// environment-fit term, and the agent's learned weight. Pure function of
// its inputs — calling it twice with the same state yields the same
// scores.
func Score(cfg config.DecisionConfig, a *agents.Agent, snap env.Snapshot, legal []agents.ActionKind) Scores {
	scores := make(Scores, len(legal))
	for _, action := range legal {
		scores[action] = scoreOne(a, snap, action) + a.Weights[action]
	}
	return scores
}

func scoreOne(a *agents.Agent, snap env.Snapshot, action agents.ActionKind) float64 {
	n := a.Needs
	p := a.Personality

	switch action {
	case agents.ActionEat:
		// Urgency grows super-linearly as hunger approaches 100.
		frac := n.Hunger / 100
		return 3.0*frac*frac + envFit(snap, action)

	case agents.ActionSleep:
		frac := (100 - n.Energy) / 100
		return 2.5*frac*frac + envFit(snap, action)

	case agents.ActionWork:
		score := p.Ambition * 1.5
		if n.Wallet < 200 {
			score += 1.0
		} else {
			score += 0.5
		}
		// Exhaustion discourages work before the environment rejects it.
		score -= 0.5 * (100 - n.Energy) / 100
		return score + envFit(snap, action)

	case agents.ActionSocialize:
		return 2.0*(n.SocialDeficit/100)*(0.5+p.Sociability) + envFit(snap, action)

	default: // Idle — the do-nothing baseline every action must beat.
		return 0.1
	}
}

// envFit nudges scores toward time-appropriate behavior. Hard legality is
// handled upstream; this only shapes preference among legal options.
func envFit(snap env.Snapshot, action agents.ActionKind) float64 {
	switch action {
	case agents.ActionSleep:
		switch snap.TimeBucket {
		case env.BucketNight:
			return 0.5
		case env.BucketWorkHours:
			return -0.5
		}
	case agents.ActionWork:
		if snap.TimeBucket != env.BucketWorkHours {
			return -1.0
		}
	case agents.ActionSocialize:
		if snap.TimeBucket == env.BucketEvening {
			return 0.3
		}
		if snap.TimeBucket == env.BucketNight {
			return -0.3
		}
	case agents.ActionEat:
		if snap.TimeBucket == env.BucketNight {
			return -0.2
		}
	}
	return 0
}
