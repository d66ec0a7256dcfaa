// Procedural weather — smooth drift over the tick timeline instead of
// per-step uniform redraws, so fronts roll in and out over sim-hours.
package env

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// weatherScale stretches the noise field so conditions persist for a few
// sim-hours before shifting.
const weatherScale = 1.0 / 300.0

// WeatherGen produces deterministic weather for a run seed.
type WeatherGen struct {
	noise opensimplex.Noise
}

// NewWeatherGen creates a weather generator seeded from the run seed.
func NewWeatherGen(seed int64) *WeatherGen {
	return &WeatherGen{noise: opensimplex.NewNormalized(seed + 700)}
}

// At returns the weather category for a tick.
func (w *WeatherGen) At(tick uint64) WeatherCategory {
	v := w.noise.Eval2(float64(tick)*weatherScale, 0)
	switch {
	case v < 0.15:
		return WeatherStormy
	case v < 0.35:
		return WeatherRainy
	case v < 0.65:
		return WeatherCloudy
	default:
		return WeatherSunny
	}
}

// ComfortModifier scales outcome magnitudes by how pleasant conditions are,
// in [0,1]. Weather shifts the baseline; temperature deviation from the
// daily curve erodes it.
func ComfortModifier(w WeatherCategory, tick uint64) float64 {
	comfort := 0.5
	switch w {
	case WeatherSunny:
		comfort += 0.1
	case WeatherRainy:
		comfort -= 0.1
	case WeatherStormy:
		comfort -= 0.2
	}

	// Daily temperature curve peaks mid-afternoon; discomfort grows with
	// distance from the optimum.
	frac := float64(tick%TicksPerDay) / TicksPerDay
	temp := 0.3 + 0.4*(1+math.Sin(2*math.Pi*frac-math.Pi/2))/2
	comfort -= math.Abs(temp-0.5) * 0.3

	if comfort < 0 {
		return 0
	}
	if comfort > 1 {
		return 1
	}
	return comfort
}
