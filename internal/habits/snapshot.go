// Habit snapshot files — a zstd-compressed JSON projection of the store
// for external inspection and for seeding a later run. Imports are
// schema-validated before anything touches the store; a malformed snapshot
// is a configuration error, not something to limp past.
package habits

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SnapshotVersion identifies the snapshot file format.
const SnapshotVersion = 1

// Snapshot is the on-disk habit projection.
type Snapshot struct {
	Version int             `json:"version"`
	Tick    uint64          `json:"tick"`
	RunID   string          `json:"run_id"`
	Habits  []ExportedHabit `json:"habits"`
}

const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "habits"],
  "properties": {
    "version": {"type": "integer", "const": 1},
    "tick": {"type": "integer", "minimum": 0},
    "run_id": {"type": "string"},
    "habits": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["state_key", "action", "strength", "observations", "successes"],
        "properties": {
          "state_key": {"type": "string", "pattern": "^hunger:(low|mid|high)\\|energy:(low|mid|high)\\|social:(low|mid|high)\\|work:(low|mid|high)$"},
          "action": {"type": "string", "enum": ["eat", "sleep", "work", "socialize", "idle"]},
          "strength": {"type": "number", "minimum": 0, "maximum": 1},
          "observations": {"type": "integer", "minimum": 0},
          "successes": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("habit_snapshot.json", snapshotSchema)

// SaveSnapshot writes the store's current state to path.
func SaveSnapshot(path string, store *Store, tick uint64, runID string) error {
	snap := Snapshot{Version: SnapshotVersion, Tick: tick, RunID: runID}
	for _, list := range store.Export() {
		snap.Habits = append(snap.Habits, list...)
	}
	sort.Slice(snap.Habits, func(i, j int) bool {
		if snap.Habits[i].StateKey != snap.Habits[j].StateKey {
			return snap.Habits[i].StateKey < snap.Habits[j].StateKey
		}
		return snap.Habits[i].Strength > snap.Habits[j].Strength
	})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	if err := json.NewEncoder(enc).Encode(&snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads, decompresses, and validates a snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot

	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return snap, fmt.Errorf("decompress snapshot: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return snap, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return snap, fmt.Errorf("snapshot failed schema validation: %w", err)
	}

	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func errUnknownAction(name string) error {
	return fmt.Errorf("unknown action %q in snapshot", name)
}
