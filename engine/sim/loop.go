package sim

import "time"

// RunState represents the loop state.
type RunState uint8

const (
	StatePaused RunState = iota
	StateRunning
)

// Loop steps a World at a fixed timestep. Fixed dt keeps the simulation
// deterministic for a given seed and spawn script regardless of wall-clock
// jitter.
type Loop struct {
	World       *World
	State       RunState
	tickRate    float64
	accumulator float64
	lastTime    time.Time
}

// NewLoop wraps a world in a fixed-timestep driver.
func NewLoop(w *World) *Loop {
	return &Loop{
		World:    w,
		tickRate: w.Tuning.TickRate,
		lastTime: time.Now(),
	}
}

// Update consumes elapsed wall time and runs as many fixed ticks as fit.
// It returns the interpolation alpha for rendering between ticks.
func (l *Loop) Update() float64 {
	now := time.Now()
	frameTime := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	// Cap frame time to avoid the spiral of death after a long stall.
	if frameTime > 0.25 {
		frameTime = 0.25
	}

	dt := 1.0 / l.tickRate
	l.accumulator += frameTime
	for l.accumulator >= dt {
		if l.State == StateRunning {
			l.World.Tick(dt)
		}
		l.accumulator -= dt
	}
	return l.accumulator / dt
}

// Step advances exactly n fixed ticks regardless of wall time. Headless
// tools and tests drive the loop this way.
func (l *Loop) Step(n int) {
	dt := 1.0 / l.tickRate
	for i := 0; i < n; i++ {
		l.World.Tick(dt)
	}
}

// Play starts or resumes the simulation.
func (l *Loop) Play() {
	l.State = StateRunning
	l.lastTime = time.Now()
}

// Pause halts the simulation.
func (l *Loop) Pause() {
	l.State = StatePaused
}
