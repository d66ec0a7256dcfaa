// Pattern miner — scans memory buffers across all agents for recurring,
// rewarding episodes and promotes them into habits. Runs on a coarser
// cadence than decisions.
package habits

import (
	"log/slog"

	"github.com/talgya/little-lives/internal/agents"
)

// Subsequence lengths the miner considers. Short runs catch single-step
// routines; longer ones catch multi-step ones anchored on the same start.
const (
	minSubseqLen = 2
	maxSubseqLen = 4
)

// MinerConfig holds the promotion thresholds.
type MinerConfig struct {
	SuccessThreshold float64 // Mean subsequence reward required to promote
	MinSupport       int     // Occurrence count required to promote
	StrengthStep     float64 // Strength granted/added per promotion
	DecayRate        float64 // Strength decay applied each pass
	StrengthFloor    float64 // Decay stops here
}

// Miner discovers habits from memory snapshots.
type Miner struct {
	cfg MinerConfig
}

// NewMiner creates a miner.
func NewMiner(cfg MinerConfig) *Miner {
	return &Miner{cfg: cfg}
}

type groupStats struct {
	count     int
	sumReward float64
}

// Mine runs one pass over the given buffer snapshots and upserts qualifying
// habits into the store, then applies the periodic strength decay. Agents
// with too little history contribute nothing; a pass that promotes nothing
// is a normal outcome.
func (m *Miner) Mine(buffers [][]agents.MemoryRecord, store *Store) int {
	groups := make(map[StateKey]map[agents.ActionKind]*groupStats)

	for _, records := range buffers {
		if len(records) < minSubseqLen {
			continue
		}
		for start := 0; start < len(records); start++ {
			for length := minSubseqLen; length <= maxSubseqLen; length++ {
				end := start + length
				if end > len(records) {
					break
				}
				m.accumulate(groups, records[start:end])
			}
		}
	}

	promoted := 0
	for key, byAction := range groups {
		for action, stats := range byAction {
			if stats.count < m.cfg.MinSupport {
				continue
			}
			mean := stats.sumReward / float64(stats.count)
			if mean < m.cfg.SuccessThreshold {
				continue
			}
			successes := uint64(0)
			if mean > 0 {
				successes = uint64(stats.count)
			}
			store.Upsert(key, action, m.cfg.StrengthStep, uint64(stats.count), successes)
			promoted++
		}
	}

	store.DecayAll(m.cfg.DecayRate, m.cfg.StrengthFloor)

	if promoted == 0 {
		slog.Debug("mining pass found no qualifying patterns")
	} else {
		slog.Info("mining pass complete", "promoted", promoted, "store_size", store.Len())
	}
	return promoted
}

// accumulate groups a subsequence under its leading state-key and action,
// tracking the subsequence's mean reward. Grouping by discretized key is
// the whole clustering step.
func (m *Miner) accumulate(groups map[StateKey]map[agents.ActionKind]*groupStats, sub []agents.MemoryRecord) {
	key := KeyFor(sub[0].Before)
	action := sub[0].Action

	sum := 0.0
	for _, r := range sub {
		sum += r.Reward
	}
	mean := sum / float64(len(sub))

	byAction := groups[key]
	if byAction == nil {
		byAction = make(map[agents.ActionKind]*groupStats)
		groups[key] = byAction
	}
	stats := byAction[action]
	if stats == nil {
		stats = &groupStats{}
		byAction[action] = stats
	}
	stats.count++
	stats.sumReward += mean
}
