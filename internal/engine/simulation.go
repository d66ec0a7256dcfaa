// Simulation ties the world, the agents, and the decision core together
// and advances them tick by tick.
package engine

import (
	"log/slog"
	"sync"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/config"
	"github.com/talgya/little-lives/internal/decision"
	"github.com/talgya/little-lives/internal/env"
	"github.com/talgya/little-lives/internal/habits"
)

// Simulation holds the complete run state.
type Simulation struct {
	Cfg   config.Config
	RunID string

	World  *env.World
	Agents []*agents.Agent
	Store  *habits.Store

	Policy  *decision.Policy
	Updater *decision.Updater
	Miner   *habits.Miner
	Emitter *Emitter

	LastTick uint64
	Stats    SimStats
}

// SimStats tracks aggregate run statistics, refreshed daily.
type SimStats struct {
	Population      int     `json:"population"`
	AvgMood         float64 `json:"avg_mood"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
	TotalWallet     float64 `json:"total_wallet"`
	Habits          int     `json:"habits"`
	DroppedRecords  uint64  `json:"dropped_records"`
}

// NewSimulation builds a run from configuration. The habit store is passed
// in so a caller can seed it from a prior export before the first tick.
func NewSimulation(cfg config.Config, runID string, seed int64, store *habits.Store) *Simulation {
	spawner := agents.NewSpawner(seed, cfg.Needs.MemoryCapacity)

	sim := &Simulation{
		Cfg:     cfg,
		RunID:   runID,
		World:   env.NewWorld(seed),
		Agents:  spawner.SpawnPopulation(cfg.Engine.Agents, 0),
		Store:   store,
		Policy:  decision.NewPolicy(cfg.Decision, cfg.Habits, store, seed),
		Updater: decision.NewUpdater(cfg.Decision, cfg.Habits, store),
		Miner: habits.NewMiner(habits.MinerConfig{
			SuccessThreshold: cfg.Habits.SuccessThreshold,
			MinSupport:       cfg.Habits.MinSupport,
			StrengthStep:     cfg.Habits.ReinforceStep,
			DecayRate:        cfg.Habits.DecayRate,
			StrengthFloor:    cfg.Habits.StrengthFloor,
		}),
		Emitter: NewEmitter(cfg.Storage.RecordBuffer),
	}
	sim.updateStats()
	return sim
}

// TickMinute advances every agent one decision. Within a tick each agent's
// decide → resolve → update sequence touches only its own state plus the
// mutex-guarded world placement and habit store, so agents can step in
// parallel when configured.
func (s *Simulation) TickMinute(tick uint64) {
	s.LastTick = tick
	legal := s.World.LegalActions(tick)

	if s.Cfg.Engine.Workers <= 1 {
		for _, a := range s.Agents {
			s.stepAgent(a, tick, legal)
		}
	} else {
		s.stepParallel(tick, legal)
	}

	if tick%s.Cfg.Habits.MineEveryTicks == 0 {
		s.minePass()
	}
}

func (s *Simulation) stepParallel(tick uint64, legal []agents.ActionKind) {
	workers := s.Cfg.Engine.Workers
	var wg sync.WaitGroup
	chunk := (len(s.Agents) + workers - 1) / workers

	for start := 0; start < len(s.Agents); start += chunk {
		end := start + chunk
		if end > len(s.Agents) {
			end = len(s.Agents)
		}
		wg.Add(1)
		go func(batch []*agents.Agent) {
			defer wg.Done()
			for _, a := range batch {
				s.stepAgent(a, tick, legal)
			}
		}(s.Agents[start:end])
	}
	wg.Wait()
}

// stepAgent runs one agent's full decision cycle for one tick.
func (s *Simulation) stepAgent(a *agents.Agent, tick uint64, legal []agents.ActionKind) {
	sleeping := a.CurrentAction == agents.ActionSleep
	a.Needs.Decay(s.Cfg.Needs.HungerRise, s.Cfg.Needs.EnergyFall,
		s.Cfg.Needs.SocialRise, s.Cfg.Needs.WorkSatFall, sleeping)

	before := a.Needs
	snap := s.World.SnapshotFor(a.ID, tick)

	dec := s.Policy.Decide(a, snap, legal, tick)
	out := s.World.Resolve(a, dec.Action, tick)
	if out.Rejected {
		slog.Debug("action rejected at resolution",
			"agent", a.Name, "action", agents.ActionName(dec.Action), "reason", out.Reason)
	}

	a.Needs.Hunger += out.Deltas.Hunger
	a.Needs.Energy += out.Deltas.Energy
	a.Needs.SocialDeficit += out.Deltas.Social
	a.Needs.WorkSat += out.Deltas.WorkSat
	a.Needs.Wallet += out.Deltas.Wallet
	a.Needs.Clamp(s.Cfg.Needs.AllowDebt)

	reward := s.Updater.Apply(a, dec, out)

	a.CurrentAction = dec.Action
	a.TotalActions++
	a.UpdateMood()

	a.Memory.Append(agents.MemoryRecord{
		Tick:   tick,
		Before: before,
		Action: dec.Action,
		Reward: reward,
		After:  a.Needs,
	})

	s.Emitter.Emit(DecisionRecord{
		RunID:      s.RunID,
		Tick:       tick,
		AgentID:    uint64(a.ID),
		Action:     agents.ActionName(dec.Action),
		Scores:     dec.Scores.Named(),
		Reward:     reward,
		Explored:   dec.Explored,
		Overridden: dec.Overridden,
		Rejected:   out.Rejected,
	})
}

// minePass snapshots every agent's memory and runs one mining pass.
// Buffers keep filling while the miner reads its copies.
func (s *Simulation) minePass() {
	buffers := make([][]agents.MemoryRecord, 0, len(s.Agents))
	for _, a := range s.Agents {
		if snap := a.Memory.Snapshot(); len(snap) >= 2 {
			buffers = append(buffers, snap)
		}
	}
	if len(buffers) == 0 {
		return
	}
	s.Miner.Mine(buffers, s.Store)
}

// TickDay refreshes statistics and logs the daily report.
func (s *Simulation) TickDay(tick uint64) {
	s.updateStats()

	slog.Info("daily report",
		"tick", tick,
		"time", env.SimTime(tick),
		"agents", s.Stats.Population,
		"avg_mood", s.Stats.AvgMood,
		"avg_satisfaction", s.Stats.AvgSatisfaction,
		"total_wallet", s.Stats.TotalWallet,
		"habits", s.Stats.Habits,
		"dropped_records", s.Stats.DroppedRecords,
	)
}

func (s *Simulation) updateStats() {
	var mood, sat, wallet float64
	for _, a := range s.Agents {
		mood += a.Mood
		sat += a.Needs.OverallSatisfaction()
		wallet += a.Needs.Wallet
	}
	n := len(s.Agents)
	s.Stats = SimStats{
		Population:     n,
		TotalWallet:    wallet,
		Habits:         s.Store.Len(),
		DroppedRecords: s.Emitter.Dropped(),
	}
	if n > 0 {
		s.Stats.AvgMood = mood / float64(n)
		s.Stats.AvgSatisfaction = sat / float64(n)
	}
}
