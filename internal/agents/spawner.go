// Agent spawning — creates the initial population with personalities,
// starting needs, and empty memory.
package agents

import (
	"fmt"
	"math/rand"
)

var firstNames = []string{
	"Alex", "Sam", "Jordan", "Casey", "Riley", "Avery", "Quinn", "Blake",
	"Taylor", "Morgan", "Sage", "River", "Phoenix", "Rowan", "Skylar",
}

// Spawner creates agents for a simulation run.
type Spawner struct {
	rng    *rand.Rand
	nextID AgentID

	memoryCapacity int
}

// NewSpawner creates a spawner with a deterministic stream derived from the
// run seed.
func NewSpawner(seed int64, memoryCapacity int) *Spawner {
	return &Spawner{
		rng:            rand.New(rand.NewSource(seed + 300)),
		nextID:         1,
		memoryCapacity: memoryCapacity,
	}
}

// SpawnPopulation creates count agents.
func (s *Spawner) SpawnPopulation(count int, bornTick uint64) []*Agent {
	out := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.spawnOne(bornTick))
	}
	return out
}

func (s *Spawner) spawnOne(bornTick uint64) *Agent {
	id := s.nextID
	s.nextID++

	return &Agent{
		ID:   id,
		Name: fmt.Sprintf("%s_%d", firstNames[s.rng.Intn(len(firstNames))], id),
		Needs: NeedState{
			Hunger:        s.uniform(20, 50),
			Energy:        s.uniform(60, 90),
			SocialDeficit: s.uniform(20, 50),
			WorkSat:       s.uniform(40, 70),
			Wallet:        s.uniform(100, 500),
		},
		Personality: Personality{
			Discipline:  s.uniform(0.2, 0.8),
			Sociability: s.uniform(0.2, 0.8),
			Ambition:    s.uniform(0.2, 0.8),
			Creativity:  s.uniform(0.2, 0.8),
		},
		Mood:          s.uniform(0.3, 0.7),
		CurrentAction: ActionIdle,
		Memory:        NewMemoryBuffer(s.memoryCapacity),
		BornTick:      bornTick,
	}
}

func (s *Spawner) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
