package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-camrig/pkg/rig"
	"github.com/teslashibe/go-camrig/pkg/rotation"
	"github.com/teslashibe/go-camrig/pkg/selection"
)

// DefaultAspect is used when a lens omits its aspect ratio.
const DefaultAspect = 16.0 / 9.0

// ErrInvalidRigs is returned when a rig file fails validation.
var ErrInvalidRigs = errors.New("config: invalid rig file")

//go:embed rigs.schema.json
var rigsSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(rigsSchema)

// File is the contents of a rig file.
type File struct {
	Rigs    []RigSpec          `yaml:"rigs"`
	Cameras []selection.Camera `yaml:"cameras"`
	Volumes []selection.Volume `yaml:"volumes"`
}

// RigSpec describes one rig. Tuning starts from Preset and any set field
// overrides it.
type RigSpec struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Preset string `yaml:"preset"`

	YawLimit               *rotation.AxisLimit `yaml:"yaw_limit"`
	PitchLimit             *rotation.AxisLimit `yaml:"pitch_limit"`
	SpeedLimit             *float64            `yaml:"speed_limit"`
	AccelerationTime       *float64            `yaml:"acceleration_time"`
	DecelerationProportion *float64            `yaml:"deceleration_proportion"`
	AroundPivot            bool                `yaml:"around_pivot"`

	Position [3]float64 `yaml:"position"`
	Yaw      float64    `yaml:"yaw"`
	Pitch    float64    `yaml:"pitch"`

	Frame *AnglesSpec `yaml:"frame"`
	Lens  *LensSpec   `yaml:"lens"`
}

// AnglesSpec is an orientation in degrees.
type AnglesSpec struct {
	Yaw   float64 `yaml:"yaw"`
	Pitch float64 `yaml:"pitch"`
}

// LensSpec configures a perspective lens.
type LensSpec struct {
	FovY   float64 `yaml:"fov_y"`
	Aspect float64 `yaml:"aspect"`
}

// Config returns the controller tuning for the rig.
func (r RigSpec) Config() rotation.Config {
	cfg := rotation.Preset(r.Preset)
	if r.YawLimit != nil {
		cfg.Yaw = *r.YawLimit
	}
	if r.PitchLimit != nil {
		cfg.Pitch = *r.PitchLimit
	}
	if r.SpeedLimit != nil {
		cfg.SpeedLimit = *r.SpeedLimit
	}
	if r.AccelerationTime != nil {
		cfg.AccelerationTime = *r.AccelerationTime
	}
	if r.DecelerationProportion != nil {
		cfg.DecelerationProportion = *r.DecelerationProportion
	}
	cfg.AroundPivot = r.AroundPivot
	return cfg
}

// Definition converts the spec into a rig definition.
func (r RigSpec) Definition() rig.Definition {
	def := rig.Definition{
		ID:     r.ID,
		Name:   r.Name,
		Config: r.Config(),
		Pivot:  rotation.NewTransform(mgl64.Vec3(r.Position), r.Yaw, r.Pitch),
	}
	if r.Frame != nil {
		def.Frame = rotation.NewTransform(mgl64.Vec3{}, r.Frame.Yaw, r.Frame.Pitch)
	}
	if r.Lens != nil {
		aspect := r.Lens.Aspect
		if aspect <= 0 {
			aspect = DefaultAspect
		}
		def.Lens = rotation.NewPerspectiveLens(r.Lens.FovY, aspect)
	}
	return def
}

// LoadRigs reads and validates a rig file.
func LoadRigs(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rig file: %w", err)
	}
	f, err := ParseRigs(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseRigs validates YAML rig file contents against the embedded schema
// and checks cross references between rigs, cameras and volumes.
func ParseRigs(data []byte) (*File, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rig file: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode rig file: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

func validateSchema(doc map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate rig file: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var msgs []string
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRigs, strings.Join(msgs, "; "))
}

func (f *File) check() error {
	var errs []error
	rigs := make(map[string]bool, len(f.Rigs))
	for _, r := range f.Rigs {
		if rigs[r.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate rig %q", ErrInvalidRigs, r.ID))
		}
		rigs[r.ID] = true
		// Inverted limits are left to the controller, which runs the
		// axis unconstrained and reports it.
		if err := r.Config().CheckMotion(); err != nil {
			errs = append(errs, fmt.Errorf("%w: rig %q: %w", ErrInvalidRigs, r.ID, err))
		}
	}

	cams := make(map[string]bool, len(f.Cameras))
	for _, c := range f.Cameras {
		if cams[c.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate camera %q", ErrInvalidRigs, c.ID))
		}
		cams[c.ID] = true
		if c.RigID != "" && !rigs[c.RigID] {
			errs = append(errs, fmt.Errorf("%w: camera %q references unknown rig %q", ErrInvalidRigs, c.ID, c.RigID))
		}
	}

	vols := make(map[string]bool, len(f.Volumes))
	for _, v := range f.Volumes {
		if vols[v.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate volume %q", ErrInvalidRigs, v.ID))
		}
		vols[v.ID] = true
		for _, id := range v.Cameras {
			if !cams[id] {
				errs = append(errs, fmt.Errorf("%w: volume %q references unknown camera %q", ErrInvalidRigs, v.ID, id))
			}
		}
	}
	return errors.Join(errs...)
}

// Definitions returns a rig definition per entry, in file order.
func (f *File) Definitions() []rig.Definition {
	defs := make([]rig.Definition, 0, len(f.Rigs))
	for _, r := range f.Rigs {
		defs = append(defs, r.Definition())
	}
	return defs
}

// DefaultFile is used when no rig file is configured: one rig with the
// default tuning and a single camera on it.
func DefaultFile() *File {
	return &File{
		Rigs: []RigSpec{{
			ID:   "main",
			Name: "Main",
			Lens: &LensSpec{FovY: 60, Aspect: DefaultAspect},
		}},
		Cameras: []selection.Camera{{ID: "main", Name: "Main", RigID: "main"}},
	}
}
