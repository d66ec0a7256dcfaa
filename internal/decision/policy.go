// Decision policy — selects exactly one action per agent per tick.
package decision

import (
	"math/rand"
	"sync"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/config"
	"github.com/talgya/little-lives/internal/env"
	"github.com/talgya/little-lives/internal/habits"
)

// Decision is a selected action plus everything the updater needs to close
// the loop afterwards.
type Decision struct {
	Action   agents.ActionKind
	Scores   Scores
	StateKey habits.StateKey

	// HabitUsed marks that a habit biased this decision; HabitAction is
	// which action it pushed. The updater reinforces the habit only when
	// the bias carried the choice.
	HabitUsed   bool
	HabitAction agents.ActionKind

	Explored   bool // Exploration noise replaced the arg-max choice
	Overridden bool // Survival override forced the action
}

// Policy selects actions. It holds the only randomness in the decision
// path (exploration noise); scoring stays deterministic.
type Policy struct {
	cfg    config.DecisionConfig
	habits config.HabitsConfig
	store  *habits.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPolicy creates a policy reading habit bias from store.
func NewPolicy(cfg config.DecisionConfig, habitCfg config.HabitsConfig, store *habits.Store, seed int64) *Policy {
	return &Policy{
		cfg:    cfg,
		habits: habitCfg,
		store:  store,
		rng:    rand.New(rand.NewSource(seed + 500)),
	}
}

// Decide picks one action for the agent this tick. legal must be non-empty;
// the environment guarantees eat, sleep, and idle are always present.
func (p *Policy) Decide(a *agents.Agent, snap env.Snapshot, legal []agents.ActionKind, tick uint64) Decision {
	dec := Decision{
		StateKey: habits.KeyFor(a.Needs),
		Scores:   Score(p.cfg, a, snap, legal),
	}

	// 1. Survival override: critical needs bypass utility entirely, so
	// weight drift can never starve an agent.
	if a.Needs.Hunger >= p.cfg.CriticalHunger && contains(legal, agents.ActionEat) {
		dec.Action = agents.ActionEat
		dec.Overridden = true
		return dec
	}
	if a.Needs.Energy <= p.cfg.CriticalEnergy && contains(legal, agents.ActionSleep) {
		dec.Action = agents.ActionSleep
		dec.Overridden = true
		return dec
	}

	// 2. Habit bias: the strongest influential habit for this state adds
	// its scaled strength to its action's score.
	if action, strength, ok := p.store.Strongest(dec.StateKey, p.habits.MinInfluence); ok {
		if _, isLegal := dec.Scores[action]; isLegal {
			dec.Scores[action] += strength * p.habits.BiasScale
			dec.HabitUsed = true
			dec.HabitAction = action
		}
	}

	// 3. Exploration: occasionally take a uniformly random legal action so
	// the policy never locks in and the miner keeps seeing varied episodes.
	if p.explore(a.Personality) {
		dec.Action = legal[p.intn(len(legal))]
		dec.Explored = true
		return dec
	}

	// 4. Exploitation: arg-max, ties broken by the fixed action priority
	// order for reproducibility.
	dec.Action = argmax(dec.Scores)
	return dec
}

func (p *Policy) explore(per agents.Personality) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < per.ExplorationRate(p.cfg.ExplorationRate)
}

func (p *Policy) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

// argmax returns the highest-scoring action, walking the fixed priority
// order so equal scores resolve deterministically.
func argmax(scores Scores) agents.ActionKind {
	best := agents.ActionIdle
	bestScore := 0.0
	first := true
	for _, action := range agents.ActionPriority {
		score, ok := scores[action]
		if !ok {
			continue
		}
		if first || score > bestScore {
			best = action
			bestScore = score
			first = false
		}
	}
	return best
}

func contains(list []agents.ActionKind, k agents.ActionKind) bool {
	for _, v := range list {
		if v == k {
			return true
		}
	}
	return false
}
