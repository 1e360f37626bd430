package rig

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-camrig/internal/log"
	"github.com/teslashibe/go-camrig/pkg/rotation"
)

// stepClock advances by a fixed step on every read.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type capture struct {
	mu    sync.Mutex
	calls int
	last  []Snapshot
}

func (c *capture) Publish(snaps []Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.last = snaps
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithLogger(log.Discard())}, opts...)
	return NewManager(10*time.Millisecond, opts...)
}

func addRig(t *testing.T, m *Manager, id string) Snapshot {
	t.Helper()
	snap, err := m.Add(Definition{
		ID:     id,
		Config: rotation.DefaultConfig(),
		Lens:   rotation.NewPerspectiveLens(60, 1),
	})
	require.NoError(t, err)
	return snap
}

func TestManager_AddAndSnapshot(t *testing.T) {
	m := newManager(t)

	snap := addRig(t, m, "main")
	assert.Equal(t, "main", snap.ID)
	assert.Equal(t, "main", snap.Name)
	assert.True(t, snap.Enabled)
	assert.Equal(t, [4]float64{1, 0, 0, 0}, snap.Rotation)
	assert.InDelta(t, 1.0, snap.Forward[2], 1e-12)
	assert.Equal(t, -45.0, snap.Limits.Yaw.Min)

	_, err := m.Add(Definition{ID: "main"})
	assert.ErrorIs(t, err, ErrDuplicateRig)
	assert.Equal(t, 1, m.Len())
}

func TestManager_GeneratesIDs(t *testing.T) {
	m := newManager(t)
	a := addRig(t, m, "")
	b := addRig(t, m, "")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestManager_UnknownRig(t *testing.T) {
	m := newManager(t)

	assert.ErrorIs(t, m.SetInput("x", 1, 0), ErrUnknownRig)
	assert.ErrorIs(t, m.EndInput("x"), ErrUnknownRig)
	assert.ErrorIs(t, m.Stop("x"), ErrUnknownRig)
	assert.ErrorIs(t, m.Reset("x"), ErrUnknownRig)
	assert.ErrorIs(t, m.Remove("x"), ErrUnknownRig)
	_, err := m.Snapshot("x")
	assert.ErrorIs(t, err, ErrUnknownRig)
	_, err = m.Frame("x", mgl64.Vec3{}, 1)
	assert.ErrorIs(t, err, ErrUnknownRig)
	_, err = m.InView("x", mgl64.Vec3{})
	assert.ErrorIs(t, err, ErrUnknownRig)
	_, err = m.Hold("x")
	assert.ErrorIs(t, err, ErrUnknownRig)
	_, err = m.Reconfigure("x", rotation.DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownRig)
}

func TestManager_StepMovesAndPublishes(t *testing.T) {
	pub := &capture{}
	m := newManager(t, WithPublisher(pub))
	addRig(t, m, "main")

	require.NoError(t, m.SetInput("main", 1, 0))
	for i := 0; i < 10; i++ {
		m.Step(0.02)
	}

	snap, err := m.Snapshot("main")
	require.NoError(t, err)
	assert.Greater(t, snap.Yaw, 0.0)
	assert.Equal(t, [2]float64{1, 0}, snap.Input)
	assert.Equal(t, uint64(10), snap.Tick)
	assert.Equal(t, 10, pub.count())
	assert.Len(t, pub.last, 1)
}

func TestManager_InputIsClamped(t *testing.T) {
	m := newManager(t)
	addRig(t, m, "main")

	require.NoError(t, m.SetInput("main", 5, -3))
	snap, _ := m.Snapshot("main")
	assert.Equal(t, [2]float64{1, -1}, snap.Input)
}

func TestManager_StepClampsLargeDt(t *testing.T) {
	m := newManager(t)
	cfg := rotation.DefaultConfig()
	cfg.Yaw = rotation.AxisLimit{Min: -180, Max: 180}
	_, err := m.Add(Definition{ID: "main", Config: cfg})
	require.NoError(t, err)

	require.NoError(t, m.SetInput("main", 1, 0))
	m.Step(10)

	// one capped step: v reaches 50 deg/s, delta = 25 * 0.25
	snap, _ := m.Snapshot("main")
	assert.InDelta(t, 6.25, snap.Yaw, 1e-6)
}

func TestManager_StopAndReset(t *testing.T) {
	m := newManager(t)
	addRig(t, m, "main")

	require.NoError(t, m.SetInput("main", -1, 1))
	for i := 0; i < 10; i++ {
		m.Step(0.02)
	}
	require.NoError(t, m.Stop("main"))
	snap, _ := m.Snapshot("main")
	assert.Equal(t, [2]float64{}, snap.Velocity)

	require.NoError(t, m.Reset("main"))
	snap, _ = m.Snapshot("main")
	assert.Equal(t, [4]float64{1, 0, 0, 0}, snap.Rotation)
}

func TestManager_HoldReleasesInput(t *testing.T) {
	m := newManager(t)
	addRig(t, m, "main")

	releaseA, err := m.Hold("main")
	require.NoError(t, err)
	releaseB, err := m.Hold("main")
	require.NoError(t, err)

	require.NoError(t, m.SetInput("main", 1, 0))
	snap, _ := m.Snapshot("main")
	assert.Equal(t, 2, snap.Holders)

	releaseA()
	snap, _ = m.Snapshot("main")
	assert.Equal(t, [2]float64{1, 0}, snap.Input)

	releaseB()
	releaseB()
	snap, _ = m.Snapshot("main")
	assert.Equal(t, [2]float64{}, snap.Input)
	assert.Equal(t, 0, snap.Holders)
}

func TestManager_FrameAndInView(t *testing.T) {
	m := newManager(t)
	addRig(t, m, "main")

	in, err := m.InView("main", mgl64.Vec3{0, 0, 5})
	require.NoError(t, err)
	assert.True(t, in)

	res, err := m.Frame("main", mgl64.Vec3{1, 0, 3}, 1)
	require.NoError(t, err)
	assert.True(t, res.YawFull)
	assert.Greater(t, res.Snapshot.Yaw, 15.0)
}

func TestManager_Reconfigure(t *testing.T) {
	m := newManager(t)
	addRig(t, m, "main")

	cfg := rotation.DefaultConfig()
	cfg.Pitch = rotation.AxisLimit{Min: 10, Max: -10}
	snap, err := m.Reconfigure("main", cfg)
	require.NoError(t, err)
	assert.True(t, snap.Limits.Pitch.Unconstrained)
	assert.Len(t, snap.SetupErrors, 1)
}

func TestManager_ReconfigureRejectsZeroSpeed(t *testing.T) {
	m := newManager(t)
	addRig(t, m, "main")

	cfg := rotation.DefaultConfig()
	cfg.Yaw = rotation.AxisLimit{Min: -5, Max: 5}
	cfg.SpeedLimit = 0
	snap, err := m.Reconfigure("main", cfg)
	require.ErrorIs(t, err, rotation.ErrInvalidSpeed)
	assert.Equal(t, rotation.DefaultConfig().Yaw, snap.Limits.Yaw)
}

func TestManager_Remove(t *testing.T) {
	m := newManager(t)
	addRig(t, m, "a")
	addRig(t, m, "b")

	require.NoError(t, m.Remove("a"))
	snaps := m.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, "b", snaps[0].ID)
}

func TestManager_RunUsesClock(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0), step: 20 * time.Millisecond}
	m := NewManager(time.Millisecond, WithClock(clock), WithLogger(log.Discard()), WithHeartbeat(0.1))
	addRig(t, m, "main")
	require.NoError(t, m.SetInput("main", 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	assert.Eventually(t, func() bool { return m.Ticks() >= 5 }, 2*time.Second, time.Millisecond)
	assert.True(t, m.Running())
	assert.Error(t, m.Run(ctx))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not stop")
	}
	assert.False(t, m.Running())

	snap, _ := m.Snapshot("main")
	assert.Greater(t, snap.Yaw, 0.0)
}
