package gfractal

import (
	"math"

	"github.com/soypat/geometry/md3"
)

// IFSConfig contains the constants of an iterated function system fractal.
// They are fixed at construction and never derived during evaluation.
type IFSConfig struct {
	// Iterations is the maximum amount of fold-scale-translate iterations.
	Iterations int
	// Scale is the per-iteration scale factor. Must be greater than one.
	Scale float64
	// Offset is the translation center for the tetrahedron variants and
	// the per-axis shape constants for the cube variant.
	Offset md3.Vec
	// Bailout is the squared length above which iteration stops early. Zero disables it.
	Bailout float64
	// PreRotation are Euler angles applied before folding each iteration. See [NewEulerRotation].
	PreRotation md3.Vec
	// PostRotation are Euler angles applied after folding each iteration.
	PostRotation md3.Vec
}

// DefaultTetrahedronConfig returns the configuration of the folded tetrahedron (triangle) fractal.
func DefaultTetrahedronConfig() IFSConfig {
	return IFSConfig{
		Iterations: 10,
		Scale:      2,
		Offset:     md3.Vec{X: 1, Y: 1, Z: 1},
	}
}

// DefaultVertexConfig returns the configuration of the nearest-vertex Sierpinski tetrahedron.
// Offset is unused since vertices are fixed.
func DefaultVertexConfig() IFSConfig {
	return IFSConfig{
		Iterations: 15,
		Scale:      2,
	}
}

// DefaultCubeConfig returns the configuration of the folded cube (Menger sponge).
func DefaultCubeConfig() IFSConfig {
	return IFSConfig{
		Iterations: 10,
		Scale:      3,
		Offset:     md3.Vec{X: 1, Y: 1, Z: 1},
		Bailout:    1000,
	}
}

// foldFunc is a per-iteration fold strategy.
type foldFunc func(z md3.Vec) md3.Vec

// ifs is the shared iterate-fold-scale skeleton of all folding fractals.
type ifs struct {
	iterations int
	scale      float64
	bailout    float64
	rot1, rot2 EulerRotation
}

func (bld *Builder) newIFS(cfg IFSConfig) ifs {
	if cfg.Iterations <= 0 {
		bld.shapeErrorf("non-positive IFS iteration count %d", cfg.Iterations)
	}
	if !(cfg.Scale > 1+epstol) || !isFinite(cfg.Scale) {
		bld.shapeErrorf("IFS scale %g must be finite and greater than 1", cfg.Scale)
	}
	if cfg.Bailout < 0 || math.IsNaN(cfg.Bailout) {
		bld.shapeErrorf("negative or NaN IFS bailout")
	}
	if !isFiniteVec(cfg.Offset) || !isFiniteVec(cfg.PreRotation) || !isFiniteVec(cfg.PostRotation) {
		bld.shapeErrorf("non-finite IFS offset or rotation")
	}
	return ifs{
		iterations: cfg.Iterations,
		scale:      cfg.Scale,
		bailout:    cfg.Bailout,
		rot1:       NewEulerRotation(cfg.PreRotation),
		rot2:       NewEulerRotation(cfg.PostRotation),
	}
}

// estimate iterates z through rotation, fold, rotation and affine map until the iteration
// count is exhausted or the squared length escapes the bailout.
// The result is the escaped length scaled back by the accumulated scale: sqrt(r)*s^-i.
func (f *ifs) estimate(z md3.Vec, fold, affine foldFunc) float64 {
	r := md3.Dot(z, z)
	i := 0
	for i < f.iterations && (f.bailout == 0 || r < f.bailout) {
		z = f.rot1.Apply(z)
		z = fold(z)
		z = f.rot2.Apply(z)
		z = affine(z)
		r = md3.Dot(z, z)
		i++
	}
	return math.Sqrt(r) * math.Pow(f.scale, -float64(i))
}

// scaleTranslate returns the uniform map z -> z*s - c*(s-1) that
// contracts space towards c when inverted.
func scaleTranslate(z, c md3.Vec, s float64) md3.Vec {
	return md3.Sub(md3.Scale(s, z), md3.Scale(s-1, c))
}

// foldInvertSwap reflects z across the planes x+y=0, x+z=0 and y+z=0.
// For each negative pair sum the pair is negated and exchanged.
func foldInvertSwap(z md3.Vec) md3.Vec {
	if z.X+z.Y < 0 {
		z.X, z.Y = -z.Y, -z.X
	}
	if z.X+z.Z < 0 {
		z.X, z.Z = -z.Z, -z.X
	}
	if z.Y+z.Z < 0 {
		z.Z, z.Y = -z.Y, -z.Z
	}
	return z
}

// foldAbsPairs takes the absolute value of both components of each pair whose sum is negative.
func foldAbsPairs(z md3.Vec) md3.Vec {
	if z.X+z.Y < 0 {
		z.X, z.Y = math.Abs(z.X), math.Abs(z.Y)
	}
	if z.X+z.Z < 0 {
		z.X, z.Z = math.Abs(z.X), math.Abs(z.Z)
	}
	if z.Y+z.Z < 0 {
		z.Y, z.Z = math.Abs(z.Y), math.Abs(z.Z)
	}
	return z
}

// tetraVertices are the corners of the regular tetrahedron inscribed in the [-1,1] cube.
var tetraVertices = [4]md3.Vec{
	{X: 1, Y: 1, Z: 1},
	{X: -1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: -1},
	{X: -1, Y: 1, Z: -1},
}

// nearestVertex returns the tetrahedron vertex closest to z.
// On ties the first declared vertex wins.
func nearestVertex(z md3.Vec) md3.Vec {
	c := tetraVertices[0]
	best := md3.Dot(md3.Sub(z, c), md3.Sub(z, c))
	for _, v := range tetraVertices[1:] {
		d := md3.Sub(z, v)
		if dist := md3.Dot(d, d); dist < best {
			best = dist
			c = v
		}
	}
	return c
}

// foldSortAbs takes the absolute value of z and sorts components so that x >= y >= z
// by conditional pair swaps.
func foldSortAbs(z md3.Vec) md3.Vec {
	z = md3.AbsElem(z)
	if z.X < z.Y {
		z.X, z.Y = z.Y, z.X
	}
	if z.X < z.Z {
		z.X, z.Z = z.Z, z.X
	}
	if z.Y < z.Z {
		z.Z, z.Y = z.Y, z.Z
	}
	return z
}

// foldBoxZ folds the z component about the box half width 0.5*cz*(s-1)/s.
func foldBoxZ(z md3.Vec, cz, s float64) md3.Vec {
	h := 0.5 * cz * (s - 1) / s
	z.Z = -math.Abs(z.Z-h) + h
	return z
}
