// Package rig runs a set of camera rigs from a single fixed-rate loop.
package rig

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/teslashibe/go-camrig/pkg/counter"
	"github.com/teslashibe/go-camrig/pkg/looptimer"
	"github.com/teslashibe/go-camrig/pkg/rotation"
)

// DefaultRate is the loop period used when none is given (60Hz).
const DefaultRate = time.Second / 60

// maxStep caps dt so a stalled process does not fling every pivot into
// its limits on the next tick.
const maxStep = 0.25

type rig struct {
	id      string
	name    string
	pivot   *rotation.Transform
	frame   *rotation.Transform
	ctrl    *rotation.Controller
	holders *counter.Counter
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithPublisher adds a snapshot publisher.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.publishers = append(m.publishers, p) }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithHeartbeat sets the heartbeat log interval in seconds. Zero disables it.
func WithHeartbeat(seconds float64) Option {
	return func(m *Manager) { m.heartbeatEvery = seconds }
}

// Manager owns rigs and ticks them sequentially. Every controller access
// goes through the manager's mutex; the loop goroutine is the only caller
// of Tick.
type Manager struct {
	rate           time.Duration
	clock          Clock
	publishers     []Publisher
	logger         *slog.Logger
	heartbeatEvery float64

	mu        sync.Mutex
	rigs      map[string]*rig
	order     []string
	tickCount uint64
	heartbeat *looptimer.Timer
	running   bool
}

// NewManager creates a manager ticking every rate.
func NewManager(rate time.Duration, opts ...Option) *Manager {
	if rate <= 0 {
		rate = DefaultRate
	}
	m := &Manager{
		rate:           rate,
		clock:          systemClock{},
		logger:         slog.Default(),
		heartbeatEvery: 10,
		rigs:           make(map[string]*rig),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "rig")
	if m.heartbeatEvery > 0 {
		m.heartbeat = looptimer.New(m.heartbeatEvery, 0, nil)
		m.heartbeat.Start()
	}
	return m
}

// Rate returns the loop period.
func (m *Manager) Rate() time.Duration { return m.rate }

// Add builds a controller for def and starts managing it. An empty ID gets a
// uuid. Configuration problems that leave the controller usable are
// reported in the snapshot's SetupErrors, not as an error.
func (m *Manager) Add(def Definition) (Snapshot, error) {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	if def.Pivot.Rotation == (mgl64.Quat{}) {
		def.Pivot.Rotation = mgl64.QuatIdent()
	}
	if def.Frame.Rotation == (mgl64.Quat{}) {
		def.Frame.Rotation = mgl64.QuatIdent()
	}

	pivot := def.Pivot
	frame := def.Frame
	opts := []rotation.Option{
		rotation.WithName(def.Name),
		rotation.WithFrame(&frame),
		rotation.WithLogger(m.logger),
	}
	if def.Lens != nil {
		opts = append(opts, rotation.WithLens(def.Lens))
	}
	ctrl, err := rotation.New(def.Config, &pivot, opts...)
	if err != nil {
		return Snapshot{}, fmt.Errorf("rig %s: %w", def.ID, err)
	}

	r := &rig{
		id:      def.ID,
		name:    def.Name,
		pivot:   &pivot,
		frame:   &frame,
		ctrl:    ctrl,
		holders: counter.New(def.ID+".input", m.logger),
	}

	m.mu.Lock()
	if _, ok := m.rigs[r.id]; ok {
		m.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%s: %w", r.id, ErrDuplicateRig)
	}
	m.rigs[r.id] = r
	m.order = append(m.order, r.id)
	snap := m.snapshot(r)
	m.mu.Unlock()

	// Input is released once the last holder lets go.
	counter.Attach(r.holders, counter.Activation{Set: func(active bool) {
		if active {
			return
		}
		m.mu.Lock()
		r.ctrl.EndInput()
		m.mu.Unlock()
	}})

	m.logger.Info("rig added", "rig", r.id, "name", r.name,
		"yaw", snap.Yaw, "pitch", snap.Pitch, "setup_errors", len(snap.SetupErrors))
	return snap, nil
}

// Remove stops managing a rig.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rigs[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownRig)
	}
	delete(m.rigs, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Run ticks every rig at the manager rate until ctx is done. dt is measured
// from the clock, not assumed from the rate.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("rig: manager already running")
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	ticker := time.NewTicker(m.rate)
	defer ticker.Stop()

	m.logger.Info("rig loop started", "hz", 1.0/m.rate.Seconds(), "rigs", m.Len())
	last := m.clock.Now()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("rig loop stopped", "ticks", m.Ticks())
			return nil
		case <-ticker.C:
			now := m.clock.Now()
			dt := now.Sub(last).Seconds()
			last = now
			m.Step(dt)
		}
	}
}

// Running reports whether Run is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Step ticks every rig once by dt seconds and publishes the snapshots.
func (m *Manager) Step(dt float64) []Snapshot {
	if dt < 0 {
		dt = 0
	}
	if dt > maxStep {
		dt = maxStep
	}

	m.mu.Lock()
	m.tickCount++
	snaps := make([]Snapshot, 0, len(m.order))
	for _, id := range m.order {
		r := m.rigs[id]
		if r.ctrl.Enabled() {
			r.ctrl.Tick(dt)
		}
		snaps = append(snaps, m.snapshot(r))
	}
	beat := m.heartbeat != nil && m.heartbeat.Update(dt) > 0
	ticks := m.tickCount
	m.mu.Unlock()

	if beat {
		m.logger.Info("rig heartbeat", "ticks", ticks, "rigs", len(snaps))
	}
	for _, p := range m.publishers {
		p.Publish(snaps)
	}
	return snaps
}

// Ticks returns the number of steps taken.
func (m *Manager) Ticks() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickCount
}

// Len returns the number of rigs.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// SetInput sets a rig's stick deflection. Components are clamped to [-1, 1].
func (m *Manager) SetInput(id string, x, y float64) error {
	return m.with(id, func(r *rig) {
		r.ctrl.SetInput(clampUnit(x), clampUnit(y))
	})
}

// EndInput releases a rig's stick.
func (m *Manager) EndInput(id string) error {
	return m.with(id, func(r *rig) { r.ctrl.EndInput() })
}

// Stop halts a rig immediately.
func (m *Manager) Stop(id string) error {
	return m.with(id, func(r *rig) { r.ctrl.Stop() })
}

// Reset restores a rig's initial orientation.
func (m *Manager) Reset(id string) error {
	return m.with(id, func(r *rig) { r.ctrl.ResetToInitial() })
}

// Reconfigure replaces a rig's limits and tuning. Unusable motion tuning
// is rejected with the rig left as it was.
func (m *Manager) Reconfigure(id string, cfg rotation.Config) (Snapshot, error) {
	var (
		snap   Snapshot
		cfgErr error
	)
	err := m.with(id, func(r *rig) {
		cfgErr = r.ctrl.Reconfigure(cfg)
		snap = m.snapshot(r)
	})
	if err != nil {
		return Snapshot{}, err
	}
	if cfgErr != nil {
		return snap, fmt.Errorf("rig %s: %w", id, cfgErr)
	}
	return snap, nil
}

// Frame turns a rig toward a world point.
func (m *Manager) Frame(id string, p mgl64.Vec3, centered float64) (FrameResult, error) {
	var res FrameResult
	err := m.with(id, func(r *rig) {
		res.YawFull, res.PitchFull = r.ctrl.FrameWorldPoint(p, centered)
		res.Snapshot = m.snapshot(r)
	})
	return res, err
}

// InView reports whether a world point is visible from a rig.
func (m *Manager) InView(id string, p mgl64.Vec3) (bool, error) {
	var in bool
	err := m.with(id, func(r *rig) { in = r.ctrl.IsWorldPointInView(p) })
	return in, err
}

// Hold registers an input holder on a rig, such as a connected input
// stream. The returned release must be called once when the holder goes
// away; input ends when the last holder releases.
func (m *Manager) Hold(id string) (release func(), err error) {
	m.mu.Lock()
	r, ok := m.rigs[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownRig)
	}

	b := counter.NewBinding(false, r.holders)
	if err := b.Enable(); err != nil {
		return nil, err
	}
	return func() {
		if err := b.Disable(); err != nil {
			m.logger.Warn("input holder release failed", "rig", id, "error", err)
		}
	}, nil
}

// Snapshot returns the current state of one rig.
func (m *Manager) Snapshot(id string) (Snapshot, error) {
	var snap Snapshot
	err := m.with(id, func(r *rig) { snap = m.snapshot(r) })
	return snap, err
}

// Snapshots returns the state of every rig in insertion order.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.snapshot(m.rigs[id]))
	}
	return out
}

func (m *Manager) with(id string, fn func(r *rig)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rigs[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownRig)
	}
	fn(r)
	return nil
}

// snapshot must be called with m.mu held.
func (m *Manager) snapshot(r *rig) Snapshot {
	c := r.ctrl
	angles := c.Angles()
	vel := c.Velocity()
	in := c.Input()
	fwd := c.Pivot().Forward()
	yaw, pitch := c.Limits()

	snap := Snapshot{
		ID:       r.id,
		Name:     r.name,
		Enabled:  c.Enabled(),
		Yaw:      angles.Yaw,
		Pitch:    angles.Pitch,
		Rotation: quatArray(c.Rotation()),
		Forward:  [3]float64{fwd.X(), fwd.Y(), fwd.Z()},
		Velocity: [2]float64{vel.X(), vel.Y()},
		Input:    [2]float64{in.X(), in.Y()},
		Holders:  r.holders.Value(),
		Limits:   Limits{Yaw: yaw, Pitch: pitch},
		Tick:     m.tickCount,
	}
	for _, err := range c.SetupErrors() {
		snap.SetupErrors = append(snap.SetupErrors, err.Error())
	}
	return snap
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
