package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/engine"
	"github.com/talgya/little-lives/internal/habits"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord(tick uint64, agentID uint64) engine.DecisionRecord {
	return engine.DecisionRecord{
		RunID:   "run-1",
		Tick:    tick,
		AgentID: agentID,
		Action:  "eat",
		Scores:  map[string]float64{"eat": 1.5, "idle": 0.1},
		Reward:  0.8,
	}
}

func TestRegisterAndListRuns(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.RegisterRun("run-1", 42, 50))
	require.NoError(t, db.RegisterRun("run-2", 7, 25))

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, r := range runs {
		if r.RunID == "run-1" {
			assert.Equal(t, int64(42), r.Seed)
			assert.Equal(t, 50, r.Population)
		}
	}

	// Duplicate run IDs violate the primary key.
	assert.Error(t, db.RegisterRun("run-1", 42, 50))
}

func TestSaveAndQueryDecisions(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.RegisterRun("run-1", 1, 2))

	batch := []engine.DecisionRecord{
		sampleRecord(1, 1),
		sampleRecord(1, 2),
		sampleRecord(2, 1),
		{RunID: "run-1", Tick: 2, AgentID: 2, Action: "sleep", Scores: map[string]float64{"sleep": 2.0},
			Reward: -0.25, Rejected: true},
	}
	require.NoError(t, db.SaveDecisions(batch))
	require.NoError(t, db.SaveDecisions(nil), "empty batch is a no-op")

	count, err := db.DecisionCount("run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	totals, err := db.ActionTotals("run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals["eat"])
	assert.Equal(t, int64(1), totals["sleep"])

	recent, err := db.RecentDecisions("run-1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, uint64(2), recent[0].Tick, "newest first")
	for _, d := range recent {
		if d.Action == "sleep" {
			assert.True(t, d.Rejected)
			assert.Equal(t, -0.25, d.Reward)
		}
	}
}

func TestSaveHabitsReplacesState(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.RegisterRun("run-1", 1, 1))

	store := habits.NewStore()
	key := habits.StateKey{Hunger: habits.BucketHigh}
	store.Upsert(key, agents.ActionEat, 0.4, 10, 8)
	store.Upsert(key, agents.ActionSleep, 0.2, 5, 2)

	require.NoError(t, db.SaveHabits("run-1", store.Export()))

	rows, err := db.HabitRows("run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "eat", rows[0].Action, "strongest first")
	assert.InDelta(t, 0.4, rows[0].Strength, 1e-9)
	assert.Equal(t, uint64(10), rows[0].Observations)

	// A later save fully replaces the previous state.
	store.Reinforce(key, agents.ActionEat, true, 0.02)
	require.NoError(t, db.SaveHabits("run-1", store.Export()))

	rows, err = db.HabitRows("run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.InDelta(t, 0.42, rows[0].Strength, 1e-9)
}

func TestSaveAgentsRoundTrip(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.RegisterRun("run-1", 42, 3))

	pop := agents.NewSpawner(42, 100).SpawnPopulation(3, 0)
	pop[0].CumulativeReward = 12.5
	pop[0].TotalActions = 200

	require.NoError(t, db.SaveAgents("run-1", pop))
	// Saving twice must not duplicate rows.
	require.NoError(t, db.SaveAgents("run-1", pop))

	var n int
	require.NoError(t, db.conn.Get(&n, `SELECT COUNT(*) FROM agent_state WHERE run_id = ?`, "run-1"))
	assert.Equal(t, 3, n)
}

func TestMetaRoundTrip(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.RegisterRun("run-1", 1, 1))

	v, err := db.GetMeta("run-1", "last_tick")
	require.NoError(t, err)
	assert.Empty(t, v, "missing keys read as empty")

	require.NoError(t, db.SaveMeta("run-1", "last_tick", "1440"))
	require.NoError(t, db.SaveMeta("run-1", "last_tick", "2880")) // Upsert.

	v, err = db.GetMeta("run-1", "last_tick")
	require.NoError(t, err)
	assert.Equal(t, "2880", v)
}

func TestConsumeFlushesBatchesAndRemainder(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.RegisterRun("run-1", 1, 1))

	ch := make(chan engine.DecisionRecord, 16)
	done := make(chan struct{})
	go func() {
		db.Consume(ch, 4)
		close(done)
	}()

	for tick := uint64(1); tick <= 10; tick++ {
		ch <- sampleRecord(tick, 1)
	}
	close(ch)
	<-done

	count, err := db.DecisionCount("run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), count, "two full batches plus the remainder")
}
