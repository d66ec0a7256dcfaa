// Command lifesim runs the Little Lives agent simulation: a town of
// virtual people deciding, learning, and forming habits tick by tick.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/little-lives/internal/api"
	"github.com/talgya/little-lives/internal/config"
	"github.com/talgya/little-lives/internal/engine"
	"github.com/talgya/little-lives/internal/entropy"
	"github.com/talgya/little-lives/internal/env"
	"github.com/talgya/little-lives/internal/habits"
	"github.com/talgya/little-lives/internal/persistence"
	"github.com/talgya/little-lives/internal/weather"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	batchTicks := flag.Uint64("ticks", 0, "run this many ticks flat out, then exit (0 = run live)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	// ── Seed ──────────────────────────────────────────────────────────
	seed := cfg.Engine.Seed
	if seed == 0 {
		seed = entropy.NewClient(os.Getenv("LIFESIM_RANDOM_ORG_KEY")).Seed()
		slog.Info("drew fresh run seed", "seed", seed)
	}
	runID := uuid.NewString()

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Storage.DBPath); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.RegisterRun(runID, seed, cfg.Engine.Agents); err != nil {
		slog.Error("failed to register run", "error", err)
		os.Exit(1)
	}
	slog.Info("database opened", "path", cfg.Storage.DBPath, "run_id", runID)

	// ── Habit store (optionally seeded from a prior run) ─────────────
	store := habits.NewStore()
	if path := cfg.Habits.SnapshotPath; path != "" {
		if snap, err := habits.LoadSnapshot(path); err == nil {
			if err := store.Seed(snap.Habits); err != nil {
				slog.Error("habit snapshot rejected", "path", path, "error", err)
				os.Exit(1)
			}
			slog.Info("habit store seeded", "path", path, "habits", store.Len(), "from_run", snap.RunID)
		} else if !os.IsNotExist(err) {
			slog.Error("habit snapshot unreadable", "path", path, "error", err)
			os.Exit(1)
		}
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(cfg, runID, seed, store)
	slog.Info("population spawned", "agents", len(sim.Agents), "seed", seed)

	// ── Record fan-out: live stream tap, then batched persistence ────
	hub := api.NewHub()
	dbCh := make(chan engine.DecisionRecord, cfg.Storage.RecordBuffer)
	consumed := make(chan struct{})
	go func() {
		for r := range sim.Emitter.Records() {
			hub.Broadcast(r)
			dbCh <- r
		}
		close(dbCh)
	}()
	go func() {
		db.Consume(dbCh, cfg.Storage.FlushEvery)
		close(consumed)
	}()

	// ── Live weather (optional) ──────────────────────────────────────
	weatherClient := weather.NewClient(os.Getenv("LIFESIM_WEATHER_KEY"), os.Getenv("LIFESIM_WEATHER_LOCATION"))
	if weatherClient != nil {
		slog.Info("live weather enabled")
		weatherClient.Apply(sim.World)
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Speed = cfg.Engine.Speed
	eng.Interval = time.Duration(cfg.Engine.TickIntervalMs) * time.Millisecond

	saveAll := func(tick uint64) {
		if err := db.SaveHabits(runID, store.Export()); err != nil {
			slog.Error("habit save failed", "error", err)
		}
		if err := db.SaveAgents(runID, sim.Agents); err != nil {
			slog.Error("agent save failed", "error", err)
		}
		if err := db.SaveMeta(runID, "last_tick", strconv.FormatUint(tick, 10)); err != nil {
			slog.Error("meta save failed", "error", err)
		}
		if path := cfg.Habits.SnapshotPath; path != "" {
			if err := habits.SaveSnapshot(path, store, tick, runID); err != nil {
				slog.Error("snapshot save failed", "path", path, "error", err)
			}
		}
	}

	eng.OnTick = func(tick uint64) {
		sim.TickMinute(tick)
		if tick%cfg.Storage.SaveEveryTicks == 0 {
			saveAll(tick)
		}
	}
	eng.OnHour = func(tick uint64) {
		weatherClient.Apply(sim.World)
	}
	eng.OnDay = sim.TickDay

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.Enabled {
		adminKey := os.Getenv("LIFESIM_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("LIFESIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
		}
		apiServer := &api.Server{
			Sim:      sim,
			Eng:      eng,
			DB:       db,
			Hub:      hub,
			Port:     cfg.API.Port,
			AdminKey: adminKey,
		}
		apiServer.Start()
	}

	// ── Run ───────────────────────────────────────────────────────────
	if *batchTicks > 0 {
		slog.Info("batch run", "ticks", *batchTicks)
		for i := uint64(0); i < *batchTicks; i++ {
			eng.Step()
		}
	} else {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig)
			eng.Stop()
		}()

		fmt.Printf("\n%d little lives are underway (run %s).\n", len(sim.Agents), runID)
		if cfg.API.Enabled {
			fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
		}
		fmt.Println("Starting simulation... (Ctrl+C to stop)")

		eng.Run()
	}

	// Drain the record stream before the final save.
	sim.Emitter.Close()
	<-consumed

	slog.Info("final save...", "tick", eng.Tick, "time", env.SimTime(eng.Tick))
	saveAll(eng.Tick)

	fmt.Println("Simulation stopped. Run state saved.")
}
