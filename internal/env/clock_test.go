package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketForTick(t *testing.T) {
	cases := []struct {
		hour int
		want TimeBucket
	}{
		{0, BucketNight},
		{5, BucketNight},
		{6, BucketMorning},
		{8, BucketMorning},
		{9, BucketWorkHours},
		{16, BucketWorkHours},
		{17, BucketEvening},
		{21, BucketEvening},
		{22, BucketNight},
		{23, BucketNight},
	}
	for _, tc := range cases {
		tick := uint64(tc.hour) * TicksPerHour
		assert.Equal(t, tc.want, BucketForTick(tick), "hour %d", tc.hour)
	}
}

func TestBucketsRepeatAcrossDays(t *testing.T) {
	assert.Equal(t, BucketForTick(600), BucketForTick(600+TicksPerDay))
	assert.Equal(t, BucketForTick(600), BucketForTick(600+5*TicksPerDay))
}

func TestWorkAndSleepWindows(t *testing.T) {
	assert.True(t, IsWorkHours(10*TicksPerHour))
	assert.False(t, IsWorkHours(8*TicksPerHour))
	assert.True(t, IsSleepTime(23*TicksPerHour))
	assert.False(t, IsSleepTime(12*TicksPerHour))
}

func TestSimTime(t *testing.T) {
	assert.Equal(t, "Day 1, 0:00", SimTime(0))
	assert.Equal(t, "Day 1, 9:05", SimTime(9*TicksPerHour+5))
	assert.Equal(t, "Day 3, 0:00", SimTime(2*TicksPerDay))
}

func TestWeatherDeterministicPerSeed(t *testing.T) {
	a := NewWeatherGen(11)
	b := NewWeatherGen(11)
	for tick := uint64(0); tick < 5000; tick += 37 {
		assert.Equal(t, a.At(tick), b.At(tick))
	}
}

func TestComfortModifierInRange(t *testing.T) {
	for _, w := range []WeatherCategory{WeatherSunny, WeatherCloudy, WeatherRainy, WeatherStormy} {
		for tick := uint64(0); tick < TicksPerDay; tick += 60 {
			c := ComfortModifier(w, tick)
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
	}
	// Same tick, worse weather, never more comfort.
	for tick := uint64(0); tick < TicksPerDay; tick += 60 {
		assert.GreaterOrEqual(t, ComfortModifier(WeatherSunny, tick), ComfortModifier(WeatherStormy, tick))
	}
}
