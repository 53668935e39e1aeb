package gfractal

import (
	"errors"

	"github.com/soypat/geometry/md3"
)

var errMismatchBufferLength = errors.New("position and distance buffer length mismatch")

// Evaluate implements [gleval.SDF3].
func (s *SphereLattice) Evaluate(pos []md3.Vec, dist []float64, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	}
	r := s.r
	for i, p := range pos {
		dist[i] = md3.Norm(md3.AddScalar(-0.5, Mod(p, 1))) - r
	}
	return nil
}

// Evaluate implements [gleval.SDF3].
func (t *FoldedTetrahedron) Evaluate(pos []md3.Vec, dist []float64, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	}
	for i, p := range pos {
		dist[i] = t.estimate(p, t.fold, t.affine)
	}
	return nil
}

// Evaluate implements [gleval.SDF3].
func (t *VertexTetrahedron) Evaluate(pos []md3.Vec, dist []float64, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	}
	for i, p := range pos {
		dist[i] = t.estimate(p, identityFold, t.affine)
	}
	return nil
}

// Evaluate implements [gleval.SDF3].
func (fc *FoldedCube) Evaluate(pos []md3.Vec, dist []float64, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	}
	for i, p := range pos {
		dist[i] = fc.estimate(p, fc.fold, fc.affine)
	}
	return nil
}
