// Package config loads and validates simulation configuration.
// All tunables the engine depends on live here as named fields with
// documented defaults; nothing numeric is buried in the packages below.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a simulation run.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Needs    NeedsConfig    `yaml:"needs"`
	Decision DecisionConfig `yaml:"decision"`
	Habits   HabitsConfig   `yaml:"habits"`
	Storage  StorageConfig  `yaml:"storage"`
	API      APIConfig      `yaml:"api"`
}

// EngineConfig controls the run loop and population.
type EngineConfig struct {
	Seed           int64   `yaml:"seed"`             // 0 = draw from crypto entropy
	Agents         int     `yaml:"agents"`           // Initial population size
	TickIntervalMs int     `yaml:"tick_interval_ms"` // Wall-clock pacing per tick
	Speed          float64 `yaml:"speed"`            // Multiplier, 0 = paused
	Workers        int     `yaml:"workers"`          // Parallel agent stepping, 1 = serial
}

// NeedsConfig controls need decay and memory.
type NeedsConfig struct {
	HungerRise     float64 `yaml:"hunger_rise"`      // Per tick
	EnergyFall     float64 `yaml:"energy_fall"`      // Per tick (except while sleeping)
	SocialRise     float64 `yaml:"social_rise"`      // Per tick
	WorkSatFall    float64 `yaml:"work_sat_fall"`    // Per tick
	MemoryCapacity int     `yaml:"memory_capacity"`  // Ring buffer size per agent
	AllowDebt      bool    `yaml:"allow_debt"`       // Wallet may go negative
}

// DecisionConfig controls scoring, selection, and learning.
type DecisionConfig struct {
	CriticalHunger float64 `yaml:"critical_hunger"` // Survival override: force eat at/above
	CriticalEnergy float64 `yaml:"critical_energy"` // Survival override: force sleep at/below

	ExplorationRate float64 `yaml:"exploration_rate"` // Base probability, scaled by creativity

	WeightMin        float64 `yaml:"weight_min"`         // Utility weight clip floor
	WeightMax        float64 `yaml:"weight_max"`         // Utility weight clip ceiling
	BaseLearningRate float64 `yaml:"base_learning_rate"` // Scaled per-agent by discipline

	// Reward weights — fixed, not learned, to keep the signal stable.
	RewardHunger  float64 `yaml:"reward_hunger"`
	RewardEnergy  float64 `yaml:"reward_energy"`
	RewardSocial  float64 `yaml:"reward_social"`
	RewardWorkSat float64 `yaml:"reward_work_sat"`
	RewardMoney   float64 `yaml:"reward_money"`
}

// HabitsConfig controls the habit store and pattern miner.
type HabitsConfig struct {
	DecayRate        float64 `yaml:"decay_rate"`        // Strength multiplier loss per decay pass
	StrengthFloor    float64 `yaml:"strength_floor"`    // Below this a habit is inert, never deleted
	MinInfluence     float64 `yaml:"min_influence"`     // Minimum strength to bias a decision
	BiasScale        float64 `yaml:"bias_scale"`        // Strength → score contribution factor
	SuccessThreshold float64 `yaml:"success_threshold"` // Mean subsequence reward to promote
	MinSupport       int     `yaml:"min_support"`       // Occurrence count to promote
	MineEveryTicks   uint64  `yaml:"mine_every_ticks"`  // Miner cadence
	ReinforceStep    float64 `yaml:"reinforce_step"`    // Strength delta per outcome
	SnapshotPath     string  `yaml:"snapshot_path"`     // Optional seed/export file (.json.zst)
}

// StorageConfig controls persistence.
type StorageConfig struct {
	DBPath         string `yaml:"db_path"`
	FlushEvery     int    `yaml:"flush_every"`      // Decision records per batch insert
	RecordBuffer   int    `yaml:"record_buffer"`    // Channel capacity before drops
	SaveEveryTicks uint64 `yaml:"save_every_ticks"` // Habit snapshot + meta save cadence
}

// APIConfig controls the HTTP observation server.
type APIConfig struct {
	Port    int  `yaml:"port"`
	Enabled bool `yaml:"enabled"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Seed:           0,
			Agents:         50,
			TickIntervalMs: 1000,
			Speed:          1.0,
			Workers:        1,
		},
		Needs: NeedsConfig{
			HungerRise:     2.0,
			EnergyFall:     1.5,
			SocialRise:     1.0,
			WorkSatFall:    0.8,
			MemoryCapacity: 100,
			AllowDebt:      false,
		},
		Decision: DecisionConfig{
			CriticalHunger:   90,
			CriticalEnergy:   10,
			ExplorationRate:  0.1,
			WeightMin:        -5,
			WeightMax:        5,
			BaseLearningRate: 0.1,
			RewardHunger:     0.10,
			RewardEnergy:     0.08,
			RewardSocial:     0.06,
			RewardWorkSat:    0.05,
			RewardMoney:      0.10,
		},
		Habits: HabitsConfig{
			DecayRate:        0.01,
			StrengthFloor:    0.05,
			MinInfluence:     0.1,
			BiasScale:        2.0,
			SuccessThreshold: 0.5,
			MinSupport:       5,
			MineEveryTicks:   60,
			ReinforceStep:    0.02,
		},
		Storage: StorageConfig{
			DBPath:         "data/lifesim.db",
			FlushEvery:     200,
			RecordBuffer:   4096,
			SaveEveryTicks: 1440,
		},
		API: APIConfig{
			Port:    8080,
			Enabled: true,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unmodified.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects degenerate configuration. Everything it catches would
// otherwise surface as silent misbehavior deep inside the decision loop,
// so all of these are fatal at startup.
func (c *Config) Validate() error {
	if c.Engine.Agents <= 0 {
		return fmt.Errorf("engine.agents must be positive, got %d", c.Engine.Agents)
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine.workers must be at least 1, got %d", c.Engine.Workers)
	}
	if c.Needs.MemoryCapacity <= 0 {
		return fmt.Errorf("needs.memory_capacity must be positive, got %d", c.Needs.MemoryCapacity)
	}
	if c.Decision.WeightMin >= c.Decision.WeightMax {
		return fmt.Errorf("decision.weight_min (%v) must be below weight_max (%v)",
			c.Decision.WeightMin, c.Decision.WeightMax)
	}
	if c.Decision.ExplorationRate < 0 || c.Decision.ExplorationRate > 1 {
		return fmt.Errorf("decision.exploration_rate must be in [0,1], got %v", c.Decision.ExplorationRate)
	}
	if c.Decision.BaseLearningRate <= 0 {
		return fmt.Errorf("decision.base_learning_rate must be positive, got %v", c.Decision.BaseLearningRate)
	}
	if c.Decision.CriticalHunger < 0 || c.Decision.CriticalHunger > 100 {
		return fmt.Errorf("decision.critical_hunger must be in [0,100], got %v", c.Decision.CriticalHunger)
	}
	if c.Decision.CriticalEnergy < 0 || c.Decision.CriticalEnergy > 100 {
		return fmt.Errorf("decision.critical_energy must be in [0,100], got %v", c.Decision.CriticalEnergy)
	}
	if c.Habits.DecayRate < 0 || c.Habits.DecayRate >= 1 {
		return fmt.Errorf("habits.decay_rate must be in [0,1), got %v", c.Habits.DecayRate)
	}
	if c.Habits.StrengthFloor < 0 || c.Habits.StrengthFloor > 1 {
		return fmt.Errorf("habits.strength_floor must be in [0,1], got %v", c.Habits.StrengthFloor)
	}
	if c.Habits.MinSupport < 1 {
		return fmt.Errorf("habits.min_support must be at least 1, got %d", c.Habits.MinSupport)
	}
	if c.Habits.MineEveryTicks == 0 {
		return fmt.Errorf("habits.mine_every_ticks must be positive")
	}
	if c.Storage.RecordBuffer < 1 {
		return fmt.Errorf("storage.record_buffer must be positive, got %d", c.Storage.RecordBuffer)
	}
	return nil
}
