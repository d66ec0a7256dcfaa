package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/config"
	"github.com/talgya/little-lives/internal/habits"
)

func newPolicy(t *testing.T, mutate func(*config.Config)) (*Policy, *habits.Store) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	store := habits.NewStore()
	return NewPolicy(cfg.Decision, cfg.Habits, store, 1), store
}

func TestSurvivalOverrideForcesEat(t *testing.T) {
	p, _ := newPolicy(t, nil)

	a := testAgent()
	a.Needs.Hunger = 95
	// Even a maximally poisoned weight cannot stop the override.
	a.Weights[agents.ActionEat] = -5

	dec := p.Decide(a, workSnapshot(), allActions, 600)
	assert.Equal(t, agents.ActionEat, dec.Action)
	assert.True(t, dec.Overridden)
	assert.False(t, dec.Explored)
}

func TestSurvivalOverrideForcesSleep(t *testing.T) {
	p, _ := newPolicy(t, nil)

	a := testAgent()
	a.Needs.Energy = 5

	dec := p.Decide(a, workSnapshot(), allActions, 600)
	assert.Equal(t, agents.ActionSleep, dec.Action)
	assert.True(t, dec.Overridden)
}

func TestHungerOverrideBeatsEnergyOverride(t *testing.T) {
	p, _ := newPolicy(t, nil)

	a := testAgent()
	a.Needs.Hunger = 95
	a.Needs.Energy = 5

	dec := p.Decide(a, workSnapshot(), allActions, 600)
	assert.Equal(t, agents.ActionEat, dec.Action, "hunger is checked first")
}

func TestArgmaxDeterministicWithoutExploration(t *testing.T) {
	p, _ := newPolicy(t, func(c *config.Config) { c.Decision.ExplorationRate = 0 })

	a := testAgent()
	first := p.Decide(a, workSnapshot(), allActions, 600)
	for i := 0; i < 20; i++ {
		dec := p.Decide(a, workSnapshot(), allActions, 600)
		assert.Equal(t, first.Action, dec.Action)
		assert.False(t, dec.Explored)
		assert.False(t, dec.Overridden)
	}
}

func TestTieBreakFollowsActionPriority(t *testing.T) {
	// All scores equal: every weight zero, all needs mid, no env fit.
	scores := Scores{
		agents.ActionEat:       1.0,
		agents.ActionSleep:     1.0,
		agents.ActionWork:      1.0,
		agents.ActionSocialize: 1.0,
		agents.ActionIdle:      1.0,
	}
	assert.Equal(t, agents.ActionEat, argmax(scores))

	delete(scores, agents.ActionEat)
	assert.Equal(t, agents.ActionSleep, argmax(scores))

	scores[agents.ActionIdle] = 2.0
	assert.Equal(t, agents.ActionIdle, argmax(scores))
}

func TestArgmaxHandlesAllNegativeScores(t *testing.T) {
	scores := Scores{
		agents.ActionWork: -3.0,
		agents.ActionIdle: -0.5,
	}
	assert.Equal(t, agents.ActionIdle, argmax(scores))
}

func TestHabitBiasCanCarryTheChoice(t *testing.T) {
	p, store := newPolicy(t, func(c *config.Config) { c.Decision.ExplorationRate = 0 })

	a := testAgent()
	// Needs sit mid-range, so no action dominates on its own.
	a.Needs = agents.NeedState{Hunger: 40, Energy: 60, SocialDeficit: 40, WorkSat: 50, Wallet: 300}

	baseline := p.Decide(a, workSnapshot(), allActions, 600)
	require.NotEqual(t, agents.ActionSocialize, baseline.Action)

	store.Upsert(habits.KeyFor(a.Needs), agents.ActionSocialize, 1.0, 10, 10)

	dec := p.Decide(a, workSnapshot(), allActions, 600)
	assert.Equal(t, agents.ActionSocialize, dec.Action)
	assert.True(t, dec.HabitUsed)
	assert.Equal(t, agents.ActionSocialize, dec.HabitAction)
}

func TestWeakHabitDoesNotBias(t *testing.T) {
	p, store := newPolicy(t, func(c *config.Config) { c.Decision.ExplorationRate = 0 })

	a := testAgent()
	store.Upsert(habits.KeyFor(a.Needs), agents.ActionSocialize, 0.05, 1, 1) // Below MinInfluence.

	dec := p.Decide(a, workSnapshot(), allActions, 600)
	assert.False(t, dec.HabitUsed)
}

func TestExplorationFrequencyTracksConfiguredRate(t *testing.T) {
	p, _ := newPolicy(t, func(c *config.Config) { c.Decision.ExplorationRate = 0.2 })

	a := testAgent()
	a.Personality.Creativity = 0.5 // Effective rate = 0.2 * (0.5 + 0.5) = 0.2.

	explored := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		if p.Decide(a, workSnapshot(), allActions, 600).Explored {
			explored++
		}
	}
	frac := float64(explored) / trials
	assert.InDelta(t, 0.2, frac, 0.03)
}

func TestExploredActionIsAlwaysLegal(t *testing.T) {
	p, _ := newPolicy(t, func(c *config.Config) { c.Decision.ExplorationRate = 1 })

	a := testAgent()
	a.Personality.Creativity = 1
	legal := []agents.ActionKind{agents.ActionEat, agents.ActionSleep, agents.ActionIdle}

	for i := 0; i < 200; i++ {
		dec := p.Decide(a, workSnapshot(), legal, 600)
		assert.Contains(t, legal, dec.Action)
	}
}
