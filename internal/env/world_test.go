package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/little-lives/internal/agents"
)

const (
	workTick  = 10 * TicksPerHour // 10:00
	nightTick = 2 * TicksPerHour  // 02:00
)

func testAgent(id agents.AgentID) *agents.Agent {
	return &agents.Agent{
		ID:    id,
		Name:  "test",
		Needs: agents.NeedState{Hunger: 50, Energy: 80, Wallet: 100},
	}
}

func TestLegalActionsAlwaysIncludeSurvivalSet(t *testing.T) {
	w := NewWorld(1)
	for _, tick := range []uint64{0, nightTick, workTick, 20 * TicksPerHour} {
		legal := w.LegalActions(tick)
		assert.Contains(t, legal, agents.ActionEat)
		assert.Contains(t, legal, agents.ActionSleep)
		assert.Contains(t, legal, agents.ActionIdle)
	}
}

func TestWorkOnlyLegalDuringWorkHours(t *testing.T) {
	w := NewWorld(1)
	assert.Contains(t, w.LegalActions(workTick), agents.ActionWork)
	assert.NotContains(t, w.LegalActions(nightTick), agents.ActionWork)
}

func TestWorkIllegalWhenWorkplacesFull(t *testing.T) {
	w := NewWorld(1)

	// Fill every workplace seat.
	capacity := 0
	for _, z := range w.Zones() {
		if z.Type == ZoneWorkplace {
			capacity += z.Capacity
		}
	}
	for i := 0; i < capacity; i++ {
		a := testAgent(agents.AgentID(i + 1))
		out := w.Resolve(a, agents.ActionWork, workTick)
		require.False(t, out.Rejected, "seat %d", i)
	}

	assert.NotContains(t, w.LegalActions(workTick), agents.ActionWork)

	// One more worker has nowhere to go.
	out := w.Resolve(testAgent(9999), agents.ActionWork, workTick)
	assert.True(t, out.Rejected)
	assert.Equal(t, "no zone capacity", out.Reason)
}

func TestHomeAbsorbsEatOverflow(t *testing.T) {
	w := NewWorld(1)

	capacity := 0
	for _, z := range w.Zones() {
		if z.Type == ZoneRestaurant {
			capacity += z.Capacity
		}
	}
	for i := 0; i < capacity+5; i++ {
		a := testAgent(agents.AgentID(i + 1))
		out := w.Resolve(a, agents.ActionEat, workTick)
		assert.False(t, out.Rejected, "eating never fails on capacity, home absorbs overflow")
	}
}

func TestResolveEatRequiresFunds(t *testing.T) {
	w := NewWorld(1)
	broke := testAgent(1)
	broke.Needs.Wallet = 2

	out := w.Resolve(broke, agents.ActionEat, workTick)
	assert.True(t, out.Rejected)
	assert.Equal(t, "cannot afford meal", out.Reason)
}

func TestResolveWorkRequiresEnergy(t *testing.T) {
	w := NewWorld(1)
	spent := testAgent(1)
	spent.Needs.Energy = 15

	out := w.Resolve(spent, agents.ActionWork, workTick)
	assert.True(t, out.Rejected)
	assert.Equal(t, "too exhausted to work", out.Reason)
}

func TestResolveDeltaDirections(t *testing.T) {
	w := NewWorld(1)

	eat := w.Resolve(testAgent(1), agents.ActionEat, workTick)
	require.False(t, eat.Rejected)
	assert.Negative(t, eat.Deltas.Hunger)
	assert.Negative(t, eat.Deltas.Wallet)

	sleep := w.Resolve(testAgent(2), agents.ActionSleep, nightTick)
	require.False(t, sleep.Rejected)
	assert.Positive(t, sleep.Deltas.Energy)

	work := w.Resolve(testAgent(3), agents.ActionWork, workTick)
	require.False(t, work.Rejected)
	assert.Positive(t, work.Deltas.Wallet)
	assert.Negative(t, work.Deltas.Energy)
	assert.Positive(t, work.Deltas.Hunger)
	assert.Positive(t, work.Deltas.WorkSat)

	social := w.Resolve(testAgent(4), agents.ActionSocialize, workTick)
	require.False(t, social.Rejected)
	assert.Negative(t, social.Deltas.Social)
	assert.Negative(t, social.Deltas.Wallet)

	idle := w.Resolve(testAgent(5), agents.ActionIdle, workTick)
	require.False(t, idle.Rejected)
	assert.Positive(t, idle.Deltas.Energy)
}

func TestAmbitionRaisesWage(t *testing.T) {
	w := NewWorld(1)

	driven := testAgent(1)
	driven.Personality.Ambition = 1.0
	idler := testAgent(2)
	idler.Personality.Ambition = 0.0

	a := w.Resolve(driven, agents.ActionWork, workTick)
	b := w.Resolve(idler, agents.ActionWork, workTick)
	require.False(t, a.Rejected)
	require.False(t, b.Rejected)
	assert.Greater(t, a.Deltas.Wallet, b.Deltas.Wallet)
}

func TestPlacementMovesAgentBetweenZones(t *testing.T) {
	w := NewWorld(1)
	a := testAgent(1)

	w.Resolve(a, agents.ActionWork, workTick)
	snap := w.SnapshotFor(a.ID, workTick)
	assert.Equal(t, ZoneWorkplace, snap.Zone)

	w.Resolve(a, agents.ActionSleep, workTick)
	snap = w.SnapshotFor(a.ID, workTick)
	assert.Equal(t, ZoneHome, snap.Zone)

	// One body, one zone: total occupancy stays 1.
	total := 0
	for _, z := range w.Zones() {
		total += z.Occupancy()
	}
	assert.Equal(t, 1, total)
}

func TestForcedWeatherOverridesGenerator(t *testing.T) {
	w := NewWorld(1)
	w.ForceWeather(WeatherStormy)
	for tick := uint64(0); tick < 3000; tick += 100 {
		assert.Equal(t, WeatherStormy, w.WeatherAt(tick))
	}

	w.ClearForcedWeather()
	gen := NewWeatherGen(1)
	assert.Equal(t, gen.At(500), w.WeatherAt(500))
}

func TestSnapshotForUnplacedAgentDefaultsHome(t *testing.T) {
	w := NewWorld(1)
	snap := w.SnapshotFor(42, nightTick)
	assert.Equal(t, ZoneHome, snap.Zone)
	assert.True(t, snap.CapacityAvailable)
	assert.Equal(t, BucketNight, snap.TimeBucket)
}
