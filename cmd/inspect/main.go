// Command inspect reads a simulation database and prints what the town
// has been up to: runs, action tallies, learned habits, recent decisions.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/talgya/little-lives/internal/persistence"
)

func main() {
	dbPath := flag.String("db", "data/lifesim.db", "simulation database")
	runID := flag.String("run", "", "run to inspect (default: newest)")
	limit := flag.Int("limit", 15, "recent decisions to show")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	db, err := persistence.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := db.Runs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "list runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	fmt.Println("Runs:")
	for _, r := range runs {
		marker := " "
		if r.RunID == *runID {
			marker = "*"
		}
		fmt.Printf("  %s %s  seed=%d  population=%d  started=%s\n",
			marker, r.RunID, r.Seed, r.Population, r.StartedAt)
	}

	target := *runID
	if target == "" {
		target = runs[0].RunID
	}
	fmt.Printf("\nInspecting run %s\n", target)

	count, err := db.DecisionCount(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "count decisions: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Decisions recorded: %s\n", humanize.Comma(count))

	totals, err := db.ActionTotals(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "action totals: %v\n", err)
		os.Exit(1)
	}
	if len(totals) > 0 {
		type tally struct {
			action string
			n      int64
		}
		sorted := make([]tally, 0, len(totals))
		for action, n := range totals {
			sorted = append(sorted, tally{action, n})
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].n > sorted[j].n })

		fmt.Println("\nAction totals:")
		for _, t := range sorted {
			share := float64(t.n) / float64(count) * 100
			fmt.Printf("  %-10s %10s  (%.1f%%)\n", t.action, humanize.Comma(t.n), share)
		}
	}

	habitRows, err := db.HabitRows(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "habit rows: %v\n", err)
		os.Exit(1)
	}
	if len(habitRows) > 0 {
		fmt.Printf("\nHabits (%d, strongest first):\n", len(habitRows))
		show := habitRows
		if len(show) > 20 {
			show = show[:20]
		}
		for _, h := range show {
			fmt.Printf("  %-48s %-10s strength=%.3f  obs=%d  success=%.0f%%\n",
				h.StateKey, h.Action, h.Strength, h.Observations,
				successRate(h.Successes, h.Observations)*100)
		}
	}

	recent, err := db.RecentDecisions(target, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recent decisions: %v\n", err)
		os.Exit(1)
	}
	if len(recent) > 0 {
		fmt.Printf("\nMost recent decisions:\n")
		for _, d := range recent {
			flags := ""
			if d.Explored {
				flags += " explored"
			}
			if d.Overridden {
				flags += " overridden"
			}
			if d.Rejected {
				flags += " rejected"
			}
			fmt.Printf("  tick=%-8d agent=%-4d %-10s reward=%+.3f%s\n",
				d.Tick, d.AgentID, d.Action, d.Reward, flags)
		}
	}
}

func successRate(successes, observations uint64) float64 {
	if observations == 0 {
		return 0
	}
	return float64(successes) / float64(observations)
}
