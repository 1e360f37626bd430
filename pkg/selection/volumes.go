package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrUnknownVolume is returned for volume ids that were never added.
	ErrUnknownVolume = errors.New("selection: unknown volume")

	// ErrDuplicateVolume is returned when adding a volume id twice.
	ErrDuplicateVolume = errors.New("selection: volume already added")
)

// Volume is a trigger region. The first camera is the one to switch to when
// a tracked collider enters; the rest are cameras that are fine to stay on.
type Volume struct {
	ID      string   `json:"id" yaml:"id"`
	Cameras []string `json:"cameras" yaml:"cameras"`
}

// VolumeState is a read-only view of a volume.
type VolumeState struct {
	Volume
	Colliders  []string `json:"colliders"`
	Containing bool     `json:"containing"`
}

type volume struct {
	Volume
	colliders []string
}

// Volumes decides camera switches from collider enter/exit events across
// possibly overlapping volumes. Switches go through the registry.
//
// The registry's Activator must not call back into Volumes.
type Volumes struct {
	registry *Registry
	logger   *slog.Logger

	mu            sync.Mutex
	volumes       map[string]*volume
	containing    []*volume
	lastAttempted string
	autoSwitch    bool
}

// NewVolumes creates an empty set with automatic switching enabled.
func NewVolumes(registry *Registry, logger *slog.Logger) *Volumes {
	if logger == nil {
		logger = slog.Default()
	}
	return &Volumes{
		registry:   registry,
		logger:     logger.With("component", "selection.volumes"),
		volumes:    make(map[string]*volume),
		autoSwitch: true,
	}
}

// Add registers a volume.
func (v *Volumes) Add(vol Volume) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.volumes[vol.ID]; ok {
		return fmt.Errorf("%s: %w", vol.ID, ErrDuplicateVolume)
	}
	vol.Cameras = slices.Clone(vol.Cameras)
	v.volumes[vol.ID] = &volume{Volume: vol}
	return nil
}

// Remove disables and forgets a volume.
func (v *Volumes) Remove(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	vol, ok := v.volumes[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownVolume)
	}
	v.disable(vol)
	delete(v.volumes, id)
	return nil
}

// Enter records collider inside the volume. The first collider to enter
// makes the volume containing and may switch to its camera. The returned id
// is the camera switched to, if any.
func (v *Volumes) Enter(volumeID, collider string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	vol, ok := v.volumes[volumeID]
	if !ok {
		return "", fmt.Errorf("%s: %w", volumeID, ErrUnknownVolume)
	}
	if slices.Contains(vol.colliders, collider) {
		return "", nil
	}
	vol.colliders = append(vol.colliders, collider)

	if slices.Contains(v.containing, vol) {
		return "", nil
	}
	v.containing = append(v.containing, vol)
	return v.attemptSwitch(vol), nil
}

// Exit removes collider from the volume. When the last collider leaves, the
// volume stops containing and the remaining containing volumes get a chance
// to switch.
func (v *Volumes) Exit(volumeID, collider string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	vol, ok := v.volumes[volumeID]
	if !ok {
		return "", fmt.Errorf("%s: %w", volumeID, ErrUnknownVolume)
	}
	i := slices.Index(vol.colliders, collider)
	if i < 0 {
		return "", nil
	}
	vol.colliders = slices.Delete(vol.colliders, i, i+1)
	if len(vol.colliders) > 0 {
		return "", nil
	}

	j := slices.Index(v.containing, vol)
	if j < 0 {
		return "", nil
	}
	v.containing = slices.Delete(v.containing, j, j+1)
	return v.attemptSwitchAll(), nil
}

// Disable purges the volume's colliders and containing membership without
// switching.
func (v *Volumes) Disable(volumeID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	vol, ok := v.volumes[volumeID]
	if !ok {
		return fmt.Errorf("%s: %w", volumeID, ErrUnknownVolume)
	}
	v.disable(vol)
	return nil
}

func (v *Volumes) disable(vol *volume) {
	if i := slices.Index(v.containing, vol); i >= 0 {
		v.containing = slices.Delete(v.containing, i, i+1)
	}
	if v.lastAttempted == vol.ID {
		v.lastAttempted = ""
	}
	vol.colliders = nil
}

// SetAutoSwitch enables or disables automatic switching. Membership is
// still tracked while disabled.
func (v *Volumes) SetAutoSwitch(enabled bool) {
	v.mu.Lock()
	v.autoSwitch = enabled
	v.mu.Unlock()
}

// AutoSwitch reports whether automatic switching is enabled.
func (v *Volumes) AutoSwitch() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.autoSwitch
}

// Containing returns the ids of volumes holding at least one collider, in
// entry order.
func (v *Volumes) Containing() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.containing))
	for i, vol := range v.containing {
		out[i] = vol.ID
	}
	return out
}

// LastAttempted returns the volume that last attempted a switch.
func (v *Volumes) LastAttempted() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastAttempted
}

// States returns a view of every volume sorted by id.
func (v *Volumes) States() []VolumeState {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]VolumeState, 0, len(v.volumes))
	for _, vol := range v.volumes {
		out = append(out, VolumeState{
			Volume:     Volume{ID: vol.ID, Cameras: slices.Clone(vol.Cameras)},
			Colliders:  slices.Clone(vol.colliders),
			Containing: slices.Contains(v.containing, vol),
		})
	}
	slices.SortFunc(out, func(a, b VolumeState) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// firstAcceptable returns the first camera of vol that is registered.
func (v *Volumes) firstAcceptable(vol *volume) string {
	for _, id := range vol.Cameras {
		if v.registry.Has(id) {
			return id
		}
	}
	return ""
}

// onAcceptableCamera reports whether the active camera is acceptable for any
// containing volume.
func (v *Volumes) onAcceptableCamera() bool {
	for _, vol := range v.containing {
		for _, id := range vol.Cameras {
			if v.registry.IsActive(id) {
				return true
			}
		}
	}
	return false
}

func (v *Volumes) attemptSwitch(vol *volume) string {
	target := v.firstAcceptable(vol)
	if target == "" || !v.autoSwitch {
		return ""
	}
	v.lastAttempted = vol.ID
	if v.onAcceptableCamera() {
		return ""
	}
	if err := v.registry.Switch(target); err != nil {
		v.logger.Warn("camera switch failed", "volume", vol.ID, "camera", target, "error", err)
		return ""
	}
	return target
}

func (v *Volumes) attemptSwitchAll() string {
	for _, vol := range v.containing {
		if v.firstAcceptable(vol) != "" {
			return v.attemptSwitch(vol)
		}
	}
	return ""
}
