package gleval

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/soypat/geometry/md3"
)

// SDF3 implements a 3D signed distance field, or distance estimator, in vectorized form.
type SDF3 interface {
	// Evaluate evaluates the signed distance field over pos positions.
	// dist and pos must be of same length.  Resulting distances are stored
	// in dist. Distances must never exceed the true distance to the surface
	// so that they are safe sphere tracing steps.
	//
	// userData facilitates getting data to the evaluators for use in processing, such as [VecPool].
	Evaluate(pos []md3.Vec, dist []float64, userData any) error
}

// Fractal is a distance estimated fractal together with the camera
// placement and tracing precision it is meant to be rendered with.
// Implementations are immutable and safe for concurrent use.
type Fractal interface {
	SDF3
	// CameraPosition is the default camera position.
	CameraPosition() md3.Vec
	// CameraLookAt is the default point the camera looks at, usually the origin.
	CameraLookAt() md3.Vec
	// TraceConfig returns precision parameters suited to the fractal.
	TraceConfig() TraceConfig
}

// TraceConfig contains the precision and performance parameters of sphere tracing
// and normal estimation. Different fractals require different tradeoffs.
type TraceConfig struct {
	// MinDist is the hit threshold: a distance estimate below it is considered a surface hit.
	MinDist float64
	// MaxDist is the far plane. Rays that travel further are misses.
	MaxDist float64
	// MaxSteps is the sphere tracing step budget. Rays exhausting it are misses.
	MaxSteps int
	// NormalStep is the central difference span used to estimate normals.
	NormalStep float64
}

// DefaultTraceConfig returns the precision used for unit-scale fractals.
func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		MinDist:    0.001,
		MaxDist:    1000,
		MaxSteps:   1000,
		NormalStep: 0.002,
	}
}

// Validate checks the TraceConfig parameters are usable.
func (tc TraceConfig) Validate() error {
	switch {
	case !(tc.MinDist > 0):
		return errors.New("hit threshold must be positive")
	case !(tc.MaxDist > tc.MinDist) || math.IsInf(tc.MaxDist, 0):
		return errors.New("far plane must be finite and greater than hit threshold")
	case tc.MaxSteps <= 0:
		return errors.New("step budget must be positive")
	case !(tc.NormalStep > 0):
		return errors.New("normal step must be positive")
	}
	return nil
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and distance buffer length mismatch")
)

// NormalsCentralDiff uses central differences algorithm for normal calculation, which are stored in normals for each position.
// Each axis is offset by half of step in both directions, other axes are left untouched.
// The returned normals are not normalized (converted to unit length).
func NormalsCentralDiff(s SDF3, pos []md3.Vec, normals []md3.Vec, step float64, userData any) error {
	step *= 0.5
	if !(step > 0) {
		return errors.New("invalid step")
	} else if len(pos) != len(normals) {
		return errors.New("length of position must match length of normals")
	} else if s == nil {
		return errors.New("nil SDF3")
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	vp, err := GetVecPool(userData)
	if err != nil {
		return fmt.Errorf("VecPool required for normal calculation: %w", err)
	}
	d1 := vp.Float.Acquire(len(pos))
	d2 := vp.Float.Acquire(len(pos))
	auxPos := vp.V3.Acquire(len(pos))
	defer vp.Float.Release(d1)
	defer vp.Float.Release(d2)
	defer vp.V3.Release(auxPos)
	var vecs = [3]md3.Vec{{X: step}, {Y: step}, {Z: step}}
	for dim := 0; dim < 3; dim++ {
		h := vecs[dim]
		for i, p := range pos {
			auxPos[i] = md3.Add(p, h)
		}
		err = s.Evaluate(auxPos, d1, userData)
		if err != nil {
			return err
		}
		for i, p := range pos {
			auxPos[i] = md3.Sub(p, h)
		}
		err = s.Evaluate(auxPos, d2, userData)
		if err != nil {
			return err
		}

		switch dim {
		case 0:
			for i, d := range d1 {
				normals[i].X = d - d2[i]
			}
		case 1:
			for i, d := range d1 {
				normals[i].Y = d - d2[i]
			}
		case 2:
			for i, d := range d1 {
				normals[i].Z = d - d2[i]
			}
		}
	}
	return nil
}

// EvalCounter wraps a [Fractal] and keeps track of the amount of distance evaluations
// performed through it. It is safe for concurrent use.
type EvalCounter struct {
	Fractal
	evals atomic.Uint64
	calls atomic.Uint64
}

// NewEvalCounter returns an [EvalCounter] wrapping f.
func NewEvalCounter(f Fractal) *EvalCounter {
	return &EvalCounter{Fractal: f}
}

// Evaluate implements the [SDF3] interface and counts evaluations.
func (c *EvalCounter) Evaluate(pos []md3.Vec, dist []float64, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	err := c.Fractal.Evaluate(pos, dist, userData)
	if err != nil {
		return err
	}
	c.evals.Add(uint64(len(pos)))
	c.calls.Add(1)
	return nil
}

// Evaluations returns total evaluations performed succesfully during the wrapper's lifetime.
func (c *EvalCounter) Evaluations() uint64 {
	return c.evals.Load()
}

// Calls returns the amount of successful batched Evaluate calls.
func (c *EvalCounter) Calls() uint64 {
	return c.calls.Load()
}
