package gfractal

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/geometry/md3"
	"github.com/soypat/gfractal/gleval"
)

const (
	// epstol is used to check for badly conditioned parameters such as
	// scales too close to one or lengths used for normalization.
	epstol = 1e-12
)

// Flags modify the behavior of a [Builder].
type Flags uint64

const (
	// FlagNoDimensionPanic makes the Builder accumulate parameter errors instead of panicking.
	// Accumulated errors are retrieved with [Builder.Err].
	FlagNoDimensionPanic Flags = 1 << iota
)

// Builder wraps fractal construction logic and parameter validation.
// Provides error handling strategies with panics or error accumulation during fractal generation.
type Builder struct {
	flags     Flags
	accumErrs []error
}

// SetFlags sets the Builder's behavior flags.
func (bld *Builder) SetFlags(flags Flags) {
	bld.flags = flags
}

// Flags returns the current Builder flags.
func (bld *Builder) Flags() Flags {
	return bld.flags
}

// Err returns the errors accumulated during construction joined with [errors.Join].
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if bld.flags&FlagNoDimensionPanic == 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

// scene contains the camera placement and tracing precision a fractal variant
// is rendered with by default. It is embedded in all variants.
type scene struct {
	name   string
	camPos md3.Vec
	lookAt md3.Vec
	trace  gleval.TraceConfig
}

// Name returns the fractal variant's identifier, used to name output files.
func (s *scene) Name() string { return s.name }

// CameraPosition returns the default camera position for the fractal.
func (s *scene) CameraPosition() md3.Vec { return s.camPos }

// CameraLookAt returns the point the default camera looks at. Origin unless set otherwise.
func (s *scene) CameraLookAt() md3.Vec { return s.lookAt }

// TraceConfig returns the tracing precision suited to the fractal's scale and detail.
func (s *scene) TraceConfig() gleval.TraceConfig { return s.trace }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isFiniteVec(v md3.Vec) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}
