// Package env provides the world the agents live in: zones with capacity,
// a 24-hour clock, weather, action legality, and action outcome resolution.
// The decision engine treats all of this as a read-only collaborator plus
// an opaque outcome oracle.
package env

// ZoneType classifies locations by what agents can do there.
type ZoneType uint8

const (
	ZoneHome ZoneType = iota
	ZoneWorkplace
	ZoneRestaurant
	ZoneSocialArea
	ZonePark
)

// ZoneName returns the human-readable name of a zone type.
func ZoneName(z ZoneType) string {
	switch z {
	case ZoneHome:
		return "home"
	case ZoneWorkplace:
		return "workplace"
	case ZoneRestaurant:
		return "restaurant"
	case ZoneSocialArea:
		return "social_area"
	default:
		return "park"
	}
}

// TimeBucket is the coarse time-of-day classification used for scoring and
// habit state-keys.
type TimeBucket uint8

const (
	BucketNight TimeBucket = iota
	BucketMorning
	BucketWorkHours
	BucketEvening
)

// BucketName returns the human-readable name of a time bucket.
func BucketName(b TimeBucket) string {
	switch b {
	case BucketNight:
		return "night"
	case BucketMorning:
		return "morning"
	case BucketWorkHours:
		return "work_hours"
	default:
		return "evening"
	}
}

// WeatherCategory is the coarse weather classification.
type WeatherCategory uint8

const (
	WeatherSunny WeatherCategory = iota
	WeatherCloudy
	WeatherRainy
	WeatherStormy
)

// WeatherName returns the human-readable name of a weather category.
func WeatherName(w WeatherCategory) string {
	switch w {
	case WeatherSunny:
		return "sunny"
	case WeatherCloudy:
		return "cloudy"
	case WeatherRainy:
		return "rainy"
	default:
		return "stormy"
	}
}

// Snapshot is the per-agent, per-tick view of the environment handed to the
// decision engine. Read-only to the engine.
type Snapshot struct {
	Zone              ZoneType        `json:"zone"`
	TimeBucket        TimeBucket      `json:"time_bucket"`
	Weather           WeatherCategory `json:"weather"`
	CapacityAvailable bool            `json:"capacity_available"`
}
