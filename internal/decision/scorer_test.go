package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/config"
	"github.com/talgya/little-lives/internal/env"
)

var allActions = []agents.ActionKind{
	agents.ActionEat, agents.ActionSleep, agents.ActionWork,
	agents.ActionSocialize, agents.ActionIdle,
}

func testAgent() *agents.Agent {
	return &agents.Agent{
		ID:   1,
		Name: "test",
		Needs: agents.NeedState{
			Hunger: 50, Energy: 70, SocialDeficit: 40, WorkSat: 50, Wallet: 150,
		},
		Personality: agents.Personality{
			Discipline: 0.5, Sociability: 0.5, Ambition: 0.5, Creativity: 0.5,
		},
		Memory: agents.NewMemoryBuffer(100),
	}
}

func workSnapshot() env.Snapshot {
	return env.Snapshot{Zone: env.ZoneHome, TimeBucket: env.BucketWorkHours, CapacityAvailable: true}
}

func TestScoreIsDeterministic(t *testing.T) {
	cfg := config.Default().Decision
	a := testAgent()
	snap := workSnapshot()

	first := Score(cfg, a, snap, allActions)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(cfg, a, snap, allActions))
	}
}

func TestScoreOnlyCoversLegalActions(t *testing.T) {
	cfg := config.Default().Decision
	legal := []agents.ActionKind{agents.ActionEat, agents.ActionSleep, agents.ActionIdle}

	scores := Score(cfg, testAgent(), workSnapshot(), legal)
	require.Len(t, scores, 3)
	assert.NotContains(t, scores, agents.ActionWork)
	assert.NotContains(t, scores, agents.ActionSocialize)
}

func TestHungerRaisesEatScore(t *testing.T) {
	cfg := config.Default().Decision
	snap := workSnapshot()

	hungry := testAgent()
	hungry.Needs.Hunger = 90
	fed := testAgent()
	fed.Needs.Hunger = 10

	assert.Greater(t,
		Score(cfg, hungry, snap, allActions)[agents.ActionEat],
		Score(cfg, fed, snap, allActions)[agents.ActionEat])
}

func TestExhaustionRaisesSleepScore(t *testing.T) {
	cfg := config.Default().Decision
	snap := workSnapshot()

	tired := testAgent()
	tired.Needs.Energy = 10
	rested := testAgent()
	rested.Needs.Energy = 95

	assert.Greater(t,
		Score(cfg, tired, snap, allActions)[agents.ActionSleep],
		Score(cfg, rested, snap, allActions)[agents.ActionSleep])
}

func TestNightDiscouragesWork(t *testing.T) {
	cfg := config.Default().Decision
	a := testAgent()

	day := Score(cfg, a, workSnapshot(), allActions)
	night := Score(cfg, a, env.Snapshot{TimeBucket: env.BucketNight}, allActions)

	assert.Greater(t, day[agents.ActionWork], night[agents.ActionWork])
	assert.Greater(t, night[agents.ActionSleep], day[agents.ActionSleep])
}

func TestLearnedWeightShiftsScore(t *testing.T) {
	cfg := config.Default().Decision
	snap := workSnapshot()

	plain := testAgent()
	biased := testAgent()
	biased.Weights[agents.ActionSocialize] = 2.0

	assert.InDelta(t, 2.0,
		Score(cfg, biased, snap, allActions)[agents.ActionSocialize]-
			Score(cfg, plain, snap, allActions)[agents.ActionSocialize],
		1e-9)
}
