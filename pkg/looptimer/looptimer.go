// Package looptimer provides a looping timer driven by frame deltas.
package looptimer

import (
	"math"
	"math/rand"
)

// Timer counts completed loops of a fixed duration. Each loop's length is
// resampled within ±Variation (a fraction of the duration).
//
// Timer is not safe for concurrent use.
type Timer struct {
	duration  float64
	variation float64

	current    float64
	loopLength float64
	running    bool
	rnd        *rand.Rand
}

// New returns a stopped timer with the given loop duration in seconds and
// variation fraction (0.1 means ±10%). A nil rnd uses a time-seeded source.
func New(duration, variation float64, rnd *rand.Rand) *Timer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	t := &Timer{
		duration:  duration,
		variation: variation,
		rnd:       rnd,
	}
	t.loopLength = t.sampleLength()
	return t
}

// Start resumes counting.
func (t *Timer) Start() { t.running = true }

// Pause stops counting. Elapsed time in the current loop is kept.
func (t *Timer) Pause() { t.running = false }

// Running reports whether the timer is counting.
func (t *Timer) Running() bool { return t.running }

// Duration returns the nominal loop duration.
func (t *Timer) Duration() float64 { return t.duration }

// SetDuration changes the nominal loop duration and resamples the current
// loop length when it differs.
func (t *Timer) SetDuration(d float64) {
	if d == t.duration {
		return
	}
	t.duration = d
	t.loopLength = t.sampleLength()
}

// Variation returns the variation fraction.
func (t *Timer) Variation() float64 { return t.variation }

// SetVariation changes the variation used for subsequent loops.
func (t *Timer) SetVariation(v float64) { t.variation = v }

// CurrentTime returns the time elapsed in the current loop.
func (t *Timer) CurrentTime() float64 { return t.current }

// SetCurrentTime moves the timer within the current loop.
func (t *Timer) SetCurrentTime(v float64) { t.current = v }

// LoopLength returns the length of the current loop after variation.
func (t *Timer) LoopLength() float64 { return t.loopLength }

// SetRandomTime moves the timer to a random point in the current loop.
func (t *Timer) SetRandomTime() {
	t.current = t.rnd.Float64() * t.loopLength
}

// Update advances the timer by dt seconds and returns how many loops
// completed. A paused timer, or one with a non-positive loop length,
// always returns 0.
func (t *Timer) Update(dt float64) int {
	if !t.running || t.loopLength <= 0 {
		return 0
	}

	t.current += dt
	if t.current < t.loopLength {
		return 0
	}

	loops := int(math.Floor(t.current / t.loopLength))
	t.current -= float64(loops) * t.loopLength

	// A shorter next loop may already be over; fold it in now rather than
	// reporting it on the following frame.
	next := t.sampleLength()
	if next > 0 && t.current >= next {
		extra := int(math.Floor(t.current / next))
		t.current -= float64(extra) * next
		loops += extra
	}

	t.loopLength = next
	return loops
}

func (t *Timer) sampleLength() float64 {
	if t.variation == 0 {
		return t.duration
	}
	f := (t.rnd.Float64()*2 - 1) * t.variation
	return t.duration + t.duration*f
}
