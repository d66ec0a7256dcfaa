// Package persistence stores runs, decision records, habit state, and agent
// state in SQLite so runs survive restarts and can be inspected offline.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/little-lives/internal/agents"
	"github.com/talgya/little-lives/internal/engine"
	"github.com/talgya/little-lives/internal/habits"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	seed        INTEGER NOT NULL,
	started_at  TEXT NOT NULL,
	population  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	tick        INTEGER NOT NULL,
	agent_id    INTEGER NOT NULL,
	action      TEXT NOT NULL,
	scores_json TEXT NOT NULL,
	reward      REAL NOT NULL,
	explored    INTEGER NOT NULL,
	overridden  INTEGER NOT NULL,
	rejected    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_tick ON decisions(run_id, tick);
CREATE INDEX IF NOT EXISTS idx_decisions_agent ON decisions(run_id, agent_id);

CREATE TABLE IF NOT EXISTS habit_state (
	run_id       TEXT NOT NULL,
	state_key    TEXT NOT NULL,
	action       TEXT NOT NULL,
	strength     REAL NOT NULL,
	observations INTEGER NOT NULL,
	successes    INTEGER NOT NULL,
	PRIMARY KEY (run_id, state_key, action)
);

CREATE TABLE IF NOT EXISTS agent_state (
	run_id           TEXT NOT NULL,
	agent_id         INTEGER NOT NULL,
	name             TEXT NOT NULL,
	needs_json       TEXT NOT NULL,
	personality_json TEXT NOT NULL,
	weights_json     TEXT NOT NULL,
	mood             REAL NOT NULL,
	cumulative_reward REAL NOT NULL,
	total_actions    INTEGER NOT NULL,
	PRIMARY KEY (run_id, agent_id)
);

CREATE TABLE IF NOT EXISTS run_meta (
	run_id TEXT NOT NULL,
	key    TEXT NOT NULL,
	value  TEXT NOT NULL,
	PRIMARY KEY (run_id, key)
);
`

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Connect("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// RegisterRun records a new run.
func (d *DB) RegisterRun(runID string, seed int64, population int) error {
	_, err := d.conn.Exec(
		`INSERT INTO runs (run_id, seed, started_at, population) VALUES (?, ?, ?, ?)`,
		runID, seed, time.Now().UTC().Format(time.RFC3339), population,
	)
	if err != nil {
		return fmt.Errorf("register run: %w", err)
	}
	return nil
}

// SaveDecisions writes a batch of decision records in one transaction.
func (d *DB) SaveDecisions(records []engine.DecisionRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := d.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin decisions tx: %w", err)
	}
	stmt, err := tx.Preparex(
		`INSERT INTO decisions (run_id, tick, agent_id, action, scores_json, reward, explored, overridden, rejected)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare decisions insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		scores, err := json.Marshal(r.Scores)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal scores: %w", err)
		}
		if _, err := stmt.Exec(
			r.RunID, r.Tick, r.AgentID, r.Action, string(scores), r.Reward,
			boolInt(r.Explored), boolInt(r.Overridden), boolInt(r.Rejected),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert decision: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decisions: %w", err)
	}
	return nil
}

// SaveHabits replaces the stored habit state for the run with the given
// export. Full replace keeps the table consistent with the in-memory store.
func (d *DB) SaveHabits(runID string, export map[string][]habits.ExportedHabit) error {
	tx, err := d.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin habits tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM habit_state WHERE run_id = ?`, runID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear habit state: %w", err)
	}
	stmt, err := tx.Preparex(
		`INSERT INTO habit_state (run_id, state_key, action, strength, observations, successes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare habits insert: %w", err)
	}
	defer stmt.Close()

	for _, list := range export {
		for _, h := range list {
			if _, err := stmt.Exec(runID, h.StateKey, h.Action, h.Strength, h.Observations, h.Successes); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert habit: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit habits: %w", err)
	}
	return nil
}

// SaveAgents replaces the stored agent state for the run.
func (d *DB) SaveAgents(runID string, population []*agents.Agent) error {
	tx, err := d.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin agents tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM agent_state WHERE run_id = ?`, runID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear agent state: %w", err)
	}
	stmt, err := tx.Preparex(
		`INSERT INTO agent_state (run_id, agent_id, name, needs_json, personality_json, weights_json, mood, cumulative_reward, total_actions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare agents insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range population {
		needs, err := json.Marshal(a.Needs)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal needs: %w", err)
		}
		pers, err := json.Marshal(a.Personality)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal personality: %w", err)
		}
		weights, err := json.Marshal(a.Weights)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshal weights: %w", err)
		}
		if _, err := stmt.Exec(
			runID, a.ID, a.Name, string(needs), string(pers), string(weights),
			a.Mood, a.CumulativeReward, a.TotalActions,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert agent: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit agents: %w", err)
	}
	return nil
}

// SaveMeta upserts one run metadata key.
func (d *DB) SaveMeta(runID, key, value string) error {
	_, err := d.conn.Exec(
		`INSERT INTO run_meta (run_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(run_id, key) DO UPDATE SET value = excluded.value`,
		runID, key, value,
	)
	if err != nil {
		return fmt.Errorf("save meta %s: %w", key, err)
	}
	return nil
}

// GetMeta reads one run metadata key. Missing keys return "".
func (d *DB) GetMeta(runID, key string) (string, error) {
	var value string
	err := d.conn.Get(&value, `SELECT value FROM run_meta WHERE run_id = ? AND key = ?`, runID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, nil
}

// DecisionCount returns the total decision rows stored for a run.
func (d *DB) DecisionCount(runID string) (int64, error) {
	var n int64
	if err := d.conn.Get(&n, `SELECT COUNT(*) FROM decisions WHERE run_id = ?`, runID); err != nil {
		return 0, fmt.Errorf("count decisions: %w", err)
	}
	return n, nil
}

// StoredDecision is one persisted decision row.
type StoredDecision struct {
	Tick       uint64  `db:"tick" json:"tick"`
	AgentID    uint64  `db:"agent_id" json:"agent_id"`
	Action     string  `db:"action" json:"action"`
	ScoresJSON string  `db:"scores_json" json:"scores_json"`
	Reward     float64 `db:"reward" json:"reward"`
	Explored   bool    `db:"explored" json:"explored"`
	Overridden bool    `db:"overridden" json:"overridden"`
	Rejected   bool    `db:"rejected" json:"rejected"`
}

// RecentDecisions returns the newest n decision rows for a run.
func (d *DB) RecentDecisions(runID string, n int) ([]StoredDecision, error) {
	var rows []StoredDecision
	err := d.conn.Select(&rows,
		`SELECT tick, agent_id, action, scores_json, reward, explored, overridden, rejected
		 FROM decisions WHERE run_id = ? ORDER BY tick DESC, id DESC LIMIT ?`,
		runID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("recent decisions: %w", err)
	}
	return rows, nil
}

// ActionTotals returns how many times each action was chosen in a run.
func (d *DB) ActionTotals(runID string) (map[string]int64, error) {
	rows, err := d.conn.Queryx(
		`SELECT action, COUNT(*) AS n FROM decisions WHERE run_id = ? GROUP BY action`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("action totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan action total: %w", err)
		}
		totals[action] = n
	}
	return totals, rows.Err()
}

// HabitRows returns the persisted habit state for a run, strongest first.
func (d *DB) HabitRows(runID string) ([]habits.ExportedHabit, error) {
	var rows []habits.ExportedHabit
	err := d.conn.Select(&rows,
		`SELECT state_key, action, strength, observations, successes
		 FROM habit_state WHERE run_id = ? ORDER BY strength DESC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("habit rows: %w", err)
	}
	return rows, nil
}

// RunInfo is one row from the runs table.
type RunInfo struct {
	RunID      string `db:"run_id"`
	Seed       int64  `db:"seed"`
	StartedAt  string `db:"started_at"`
	Population int    `db:"population"`
}

// Runs lists registered runs, newest first.
func (d *DB) Runs() ([]RunInfo, error) {
	var rows []RunInfo
	err := d.conn.Select(&rows, `SELECT run_id, seed, started_at, population FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return rows, nil
}

// Consume drains decision records from the channel, flushing in batches of
// flushEvery. Blocks until the channel closes, then flushes the remainder.
func (d *DB) Consume(records <-chan engine.DecisionRecord, flushEvery int) {
	if flushEvery <= 0 {
		flushEvery = 100
	}
	batch := make([]engine.DecisionRecord, 0, flushEvery)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := d.SaveDecisions(batch); err != nil {
			slog.Error("decision flush failed", "error", err, "batch", len(batch))
		}
		batch = batch[:0]
	}

	for r := range records {
		batch = append(batch, r)
		if len(batch) >= flushEvery {
			flush()
		}
	}
	flush()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
