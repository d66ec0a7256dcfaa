// Zone model — named locations with capacity and occupancy tracking.
package env

import (
	"sync"

	"github.com/talgya/little-lives/internal/agents"
)

// Zone is one location agents can occupy.
type Zone struct {
	Name     string   `json:"name"`
	Type     ZoneType `json:"type"`
	Capacity int      `json:"capacity"`

	occupants map[agents.AgentID]struct{}
}

// Occupancy returns the current occupant count.
func (z *Zone) Occupancy() int {
	return len(z.occupants)
}

func (z *Zone) hasRoom() bool {
	return len(z.occupants) < z.Capacity
}

// World holds the zones, the weather generator, and agent placement.
// Placement mutates under a mutex so agents may be stepped in parallel.
type World struct {
	mu      sync.Mutex
	zones   []*Zone
	byAgent map[agents.AgentID]*Zone
	weather *WeatherGen
	forced  *WeatherCategory
}

// NewWorld creates the default town layout.
func NewWorld(seed int64) *World {
	w := &World{
		byAgent: make(map[agents.AgentID]*Zone),
		weather: NewWeatherGen(seed),
	}
	for _, z := range []struct {
		name string
		typ  ZoneType
		cap  int
	}{
		{"Home District", ZoneHome, 200},
		{"Office Complex", ZoneWorkplace, 30},
		{"Central Restaurant", ZoneRestaurant, 20},
		{"Cafe Corner", ZoneRestaurant, 15},
		{"Community Center", ZoneSocialArea, 40},
		{"Sports Club", ZoneSocialArea, 25},
		{"City Park", ZonePark, 100},
	} {
		w.zones = append(w.zones, &Zone{
			Name:      z.name,
			Type:      z.typ,
			Capacity:  z.cap,
			occupants: make(map[agents.AgentID]struct{}),
		})
	}
	return w
}

// Zones returns the zone list for observation endpoints.
func (w *World) Zones() []*Zone {
	return w.zones
}

// WeatherAt returns the weather category for a tick. A forced category,
// set from a live weather feed, wins over the procedural generator.
func (w *World) WeatherAt(tick uint64) WeatherCategory {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.weatherAt(tick)
}

func (w *World) weatherAt(tick uint64) WeatherCategory {
	if w.forced != nil {
		return *w.forced
	}
	return w.weather.At(tick)
}

// ForceWeather pins the weather to a category until ClearForcedWeather.
func (w *World) ForceWeather(c WeatherCategory) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.forced = &c
}

// ClearForcedWeather returns control to the procedural generator.
func (w *World) ClearForcedWeather() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.forced = nil
}

// SnapshotFor builds the per-agent environment view for one tick.
func (w *World) SnapshotFor(id agents.AgentID, tick uint64) Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	zone := w.byAgent[id]
	if zone == nil {
		zone = w.findZone(ZoneHome)
	}
	return Snapshot{
		Zone:              zone.Type,
		TimeBucket:        BucketForTick(tick),
		Weather:           w.weatherAt(tick),
		CapacityAvailable: zone.hasRoom(),
	}
}

// LegalActions returns the candidate action set for a tick. Eat, sleep, and
// idle are always legal so the survival override always has a target; work
// and socialize depend on open capacity and, for work, working hours.
// Illegal actions are excluded here, before scoring — never scored and
// rejected.
func (w *World) LegalActions(tick uint64) []agents.ActionKind {
	w.mu.Lock()
	defer w.mu.Unlock()

	legal := []agents.ActionKind{agents.ActionEat, agents.ActionSleep, agents.ActionIdle}
	if IsWorkHours(tick) && w.typeHasRoom(ZoneWorkplace) {
		legal = append(legal, agents.ActionWork)
	}
	if w.typeHasRoom(ZoneSocialArea) {
		legal = append(legal, agents.ActionSocialize)
	}
	return legal
}

// place moves an agent into a zone suitable for the action. Returns the
// destination zone, or nil when every suitable zone filled up since the
// legality check (a recoverable race, not an error).
func (w *World) place(id agents.AgentID, action agents.ActionKind) *Zone {
	target := zoneForAction(action)

	current := w.byAgent[id]
	if current != nil && current.Type == target {
		return current
	}

	dest := w.findZoneWithRoom(target)
	if dest == nil && target != ZoneHome {
		// Home always absorbs overflow for actions that can happen there.
		if action == agents.ActionEat || action == agents.ActionIdle {
			dest = w.findZone(ZoneHome)
		}
	}
	if dest == nil {
		return nil
	}

	if current != nil {
		delete(current.occupants, id)
	}
	dest.occupants[id] = struct{}{}
	w.byAgent[id] = dest
	return dest
}

func zoneForAction(action agents.ActionKind) ZoneType {
	switch action {
	case agents.ActionEat:
		return ZoneRestaurant
	case agents.ActionSleep:
		return ZoneHome
	case agents.ActionWork:
		return ZoneWorkplace
	case agents.ActionSocialize:
		return ZoneSocialArea
	default:
		return ZonePark
	}
}

func (w *World) findZone(t ZoneType) *Zone {
	for _, z := range w.zones {
		if z.Type == t {
			return z
		}
	}
	return nil
}

func (w *World) findZoneWithRoom(t ZoneType) *Zone {
	for _, z := range w.zones {
		if z.Type == t && z.hasRoom() {
			return z
		}
	}
	return nil
}

func (w *World) typeHasRoom(t ZoneType) bool {
	return w.findZoneWithRoom(t) != nil
}
