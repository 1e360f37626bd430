// Package selection tracks which camera is active and switches cameras when
// tracked colliders move between trigger volumes.
package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUnknownCamera is returned for ids that are not registered.
	ErrUnknownCamera = errors.New("selection: unknown camera")

	// ErrDuplicateCamera is returned when registering an id twice.
	ErrDuplicateCamera = errors.New("selection: camera already registered")
)

// Camera is a selectable camera. RigID optionally links it to the rig that
// drives its pivot.
type Camera struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	RigID string `json:"rig_id,omitempty" yaml:"rig"`
}

// Activator is called when a camera is switched on or off.
type Activator func(cam Camera, active bool)

// Registry owns the set of selectable cameras and the single active one.
type Registry struct {
	logger   *slog.Logger
	activate Activator

	mu      sync.RWMutex
	cameras map[string]Camera
	order   []string
	current string
}

// NewRegistry creates an empty registry. activate may be nil.
func NewRegistry(activate Activator, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:   logger.With("component", "selection"),
		activate: activate,
		cameras:  make(map[string]Camera),
	}
}

// Register adds a camera in the inactive state. An empty ID is replaced with
// a fresh uuid. The stored camera is returned.
func (r *Registry) Register(cam Camera) (Camera, error) {
	if cam.ID == "" {
		cam.ID = uuid.NewString()
	}

	r.mu.Lock()
	if _, ok := r.cameras[cam.ID]; ok {
		r.mu.Unlock()
		return Camera{}, fmt.Errorf("%s: %w", cam.ID, ErrDuplicateCamera)
	}
	r.cameras[cam.ID] = cam
	r.order = append(r.order, cam.ID)
	r.mu.Unlock()

	r.notify(cam, false)
	r.logger.Debug("camera registered", "camera", cam.ID, "name", cam.Name)
	return cam, nil
}

// Unregister removes a camera. Removing the active camera leaves no camera
// active.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cameras[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownCamera)
	}
	delete(r.cameras, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.current == id {
		r.current = ""
	}
	return nil
}

// Switch activates the camera and deactivates the previous one. Switching
// to the already active camera does nothing.
func (r *Registry) Switch(id string) error {
	r.mu.Lock()
	cam, ok := r.cameras[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrUnknownCamera)
	}
	if r.current == id {
		r.mu.Unlock()
		return nil
	}
	prev, hadPrev := r.cameras[r.current]
	r.current = id
	r.mu.Unlock()

	r.notify(cam, true)
	if hadPrev {
		r.notify(prev, false)
	}
	r.logger.Info("camera switched", "camera", id, "previous", prev.ID)
	return nil
}

// Current returns the active camera.
func (r *Registry) Current() (Camera, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cam, ok := r.cameras[r.current]
	return cam, ok
}

// IsActive reports whether id is the active camera.
func (r *Registry) IsActive(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return id != "" && r.current == id
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cameras[id]
	return ok
}

// Get returns a registered camera.
func (r *Registry) Get(id string) (Camera, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cam, ok := r.cameras[id]
	return cam, ok
}

// Cameras returns the registered cameras in registration order.
func (r *Registry) Cameras() []Camera {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Camera, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.cameras[id])
	}
	return out
}

func (r *Registry) notify(cam Camera, active bool) {
	if r.activate != nil {
		r.activate(cam, active)
	}
}
