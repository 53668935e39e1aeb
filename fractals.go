package gfractal

import (
	"github.com/soypat/geometry/md3"
	"github.com/soypat/gfractal/gleval"
)

// FoldPolicy selects how the folded tetrahedron reflects points across its symmetry planes.
type FoldPolicy uint8

const (
	// FoldInvertSwap negates and exchanges the pair components, a true reflection across the pair plane.
	FoldInvertSwap FoldPolicy = iota
	// FoldAbs takes the absolute value of the pair components in place.
	FoldAbs
)

func (fp FoldPolicy) String() string {
	switch fp {
	case FoldInvertSwap:
		return "invertswap"
	case FoldAbs:
		return "abs"
	}
	return "unknown"
}

func (fp FoldPolicy) fold() foldFunc {
	switch fp {
	case FoldInvertSwap:
		return foldInvertSwap
	case FoldAbs:
		return foldAbsPairs
	}
	return nil
}

// SphereLattice is an infinite periodic tiling of spheres, one per unit cell,
// centered at half-integer coordinates.
type SphereLattice struct {
	scene
	r float64
}

// NewSphereLattice creates a lattice of spheres of radius r. r must be in (0, 0.5)
// so that spheres of neighboring cells do not overlap. A radius of 0.15 is usually used.
func (bld *Builder) NewSphereLattice(r float64) *SphereLattice {
	if !(r > 0 && r < 0.5) {
		bld.shapeErrorf("sphere lattice radius %g out of range (0, 0.5)", r)
	}
	trace := gleval.DefaultTraceConfig()
	trace.MaxDist = 100
	trace.MaxSteps = 200
	return &SphereLattice{
		scene: scene{
			name:   "spheres",
			camPos: md3.Vec{X: 3, Y: 4, Z: -4},
			trace:  trace,
		},
		r: r,
	}
}

// Radius returns the radius of the lattice's spheres.
func (s *SphereLattice) Radius() float64 { return s.r }

// Distance returns the signed distance from p to the nearest sphere, negative inside.
func (s *SphereLattice) Distance(p md3.Vec) float64 {
	return md3.Norm(md3.AddScalar(-0.5, Mod(p, 1))) - s.r
}

// FoldedTetrahedron is a kaleidoscopic IFS that folds space across the symmetry
// planes of a tetrahedron each iteration, producing a Sierpinski tetrahedron.
type FoldedTetrahedron struct {
	scene
	ifs
	policy FoldPolicy
	fold   foldFunc
	affine foldFunc
}

// NewFoldedTetrahedron creates a folded tetrahedron with the given fold policy.
// See [DefaultTetrahedronConfig] for the usual configuration.
func (bld *Builder) NewFoldedTetrahedron(policy FoldPolicy, cfg IFSConfig) *FoldedTetrahedron {
	fold := policy.fold()
	if fold == nil {
		bld.shapeErrorf("unknown fold policy %d", policy)
		fold = foldInvertSwap
	}
	name := "tetrahedron"
	if policy == FoldInvertSwap {
		name = "triangles"
	}
	it := bld.newIFS(cfg)
	offset, s := cfg.Offset, cfg.Scale
	return &FoldedTetrahedron{
		scene: scene{
			name:   name,
			camPos: md3.Vec{X: -2, Y: -2, Z: -3},
			trace:  gleval.DefaultTraceConfig(),
		},
		ifs:    it,
		policy: policy,
		fold:   fold,
		affine: func(z md3.Vec) md3.Vec { return scaleTranslate(z, offset, s) },
	}
}

// Policy returns the fold policy of the tetrahedron.
func (t *FoldedTetrahedron) Policy() FoldPolicy { return t.policy }

// Distance returns the estimated distance from p to the fractal surface.
func (t *FoldedTetrahedron) Distance(p md3.Vec) float64 {
	return t.estimate(p, t.fold, t.affine)
}

// VertexTetrahedron is the Sierpinski tetrahedron built by contracting
// towards the nearest of the four tetrahedron vertices each iteration.
type VertexTetrahedron struct {
	scene
	ifs
	affine foldFunc
}

// NewVertexTetrahedron creates a nearest-vertex Sierpinski tetrahedron.
// See [DefaultVertexConfig] for the usual configuration.
func (bld *Builder) NewVertexTetrahedron(cfg IFSConfig) *VertexTetrahedron {
	it := bld.newIFS(cfg)
	s := cfg.Scale
	return &VertexTetrahedron{
		scene: scene{
			name:   "sierpinski",
			camPos: md3.Vec{X: -2, Y: -2, Z: -3},
			trace:  gleval.DefaultTraceConfig(),
		},
		ifs: it,
		affine: func(z md3.Vec) md3.Vec {
			return scaleTranslate(z, nearestVertex(z), s)
		},
	}
}

// Distance returns the estimated distance from p to the fractal surface.
func (t *VertexTetrahedron) Distance(p md3.Vec) float64 {
	return t.estimate(p, identityFold, t.affine)
}

func identityFold(z md3.Vec) md3.Vec { return z }

// FoldedCube is a Menger sponge style kaleidoscopic IFS with per-axis shape constants.
type FoldedCube struct {
	scene
	ifs
	c      md3.Vec
	fold   foldFunc
	affine foldFunc
}

// NewFoldedCube creates a folded cube fractal. cfg.Offset holds the per-axis shape constants.
// See [DefaultCubeConfig] for the usual Menger sponge configuration.
func (bld *Builder) NewFoldedCube(cfg IFSConfig) *FoldedCube {
	it := bld.newIFS(cfg)
	c, s := cfg.Offset, cfg.Scale
	return &FoldedCube{
		scene: scene{
			name:   "cube",
			camPos: md3.Vec{X: -2, Y: -2, Z: -3},
			trace:  gleval.DefaultTraceConfig(),
		},
		ifs: it,
		c:   c,
		fold: func(z md3.Vec) md3.Vec {
			return foldBoxZ(foldSortAbs(z), c.Z, s)
		},
		affine: func(z md3.Vec) md3.Vec {
			return md3.Vec{
				X: s*z.X - c.X*(s-1),
				Y: s*z.Y - c.Y*(s-1),
				Z: s * z.Z,
			}
		},
	}
}

// Distance returns the estimated distance from p to the fractal surface.
func (fc *FoldedCube) Distance(p md3.Vec) float64 {
	return fc.estimate(p, fc.fold, fc.affine)
}

// GalleryEntry is a named fractal configuration of the gallery.
type GalleryEntry struct {
	// Config distinguishes configurations of the same variant, such as "-1".
	Config  string
	Fractal interface {
		gleval.Fractal
		Name() string
	}
	// Mode is the name of the color mode the entry is rendered with.
	Mode string
}

// Gallery returns the collection of named fractal configurations rendered by the gallery example.
func (bld *Builder) Gallery() []GalleryEntry {
	cube := func(rot1, c md3.Vec) *FoldedCube {
		cfg := DefaultCubeConfig()
		cfg.PreRotation = rot1
		cfg.Offset = c
		return bld.NewFoldedCube(cfg)
	}
	tetra := func(rot1, rot2 md3.Vec) *FoldedTetrahedron {
		cfg := DefaultTetrahedronConfig()
		cfg.PreRotation = rot1
		cfg.PostRotation = rot2
		return bld.NewFoldedTetrahedron(FoldAbs, cfg)
	}
	one := md3.Vec{X: 1, Y: 1, Z: 1}
	return []GalleryEntry{
		{Config: "-1", Fractal: bld.NewFoldedCube(DefaultCubeConfig()), Mode: "normal"},
		{Config: "-2", Fractal: cube(md3.Vec{Y: 3}, one), Mode: "normal"},
		{Config: "-3", Fractal: cube(md3.Vec{X: 0.2, Y: 0.2, Z: 0.2}, one), Mode: "normal"},
		{Config: "-4", Fractal: cube(md3.Vec{}, md3.Vec{X: 1.2, Y: 1, Z: 0.4}), Mode: "grayscale"},

		{Config: "-1", Fractal: bld.NewSphereLattice(0.15), Mode: "normal"},
		{Config: "-2", Fractal: bld.NewSphereLattice(0.1), Mode: "grayscale"},

		{Config: "-1", Fractal: bld.NewFoldedTetrahedron(FoldAbs, DefaultTetrahedronConfig()), Mode: "normal"},
		{Config: "-2", Fractal: tetra(md3.Vec{X: 4, Y: 4}, md3.Vec{}), Mode: "distance"},
		{Config: "-3", Fractal: tetra(md3.Vec{Y: -0.2}, md3.Vec{}), Mode: "grayscale"},
		{Config: "-4", Fractal: tetra(md3.Vec{Y: 0.35}, md3.Vec{Y: -0.2}), Mode: "normal"},

		{Config: "-1", Fractal: bld.NewFoldedTetrahedron(FoldInvertSwap, DefaultTetrahedronConfig()), Mode: "grayscale"},
		{Config: "-1", Fractal: bld.NewVertexTetrahedron(DefaultVertexConfig()), Mode: "shaded"},
	}
}
