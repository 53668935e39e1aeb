package glrender

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/gfractal"
	"github.com/soypat/gfractal/gleval"
)

func TestCameraBasis(t *testing.T) {
	const tol = 1e-12
	for _, pos := range []md3.Vec{
		{X: 3, Y: 4, Z: -4},
		{X: -2, Y: -2, Z: -3},
		{Z: -10},
		{X: 1e-3, Y: 50, Z: 0},
	} {
		cam, err := NewCamera(pos, md3.Vec{}, 1)
		if err != nil {
			t.Fatal(err)
		}
		f, r, u := cam.Basis()
		for _, v := range [3]md3.Vec{f, r, u} {
			if math.Abs(md3.Norm(v)-1) > tol {
				t.Errorf("camera at %v: basis vector %v not unit length", pos, v)
			}
		}
		if math.Abs(md3.Dot(f, r)) > tol || math.Abs(md3.Dot(f, u)) > tol || math.Abs(md3.Dot(r, u)) > tol {
			t.Errorf("camera at %v: basis not orthogonal", pos)
		}
		if u.Y < 0 {
			t.Errorf("camera at %v: up axis %v points downwards", pos, u)
		}
		center := cam.RayDir(UV(md2.Vec{X: 32, Y: 24}, md2.Vec{X: 64, Y: 48}))
		if md3.Norm(md3.Sub(center, f)) > tol {
			t.Errorf("camera at %v: center pixel ray %v differs from forward %v", pos, center, f)
		}
	}
}

func TestCameraDegenerate(t *testing.T) {
	_, err := NewCamera(md3.Vec{Y: 5}, md3.Vec{}, 1)
	if err == nil {
		t.Error("expected error for camera looking straight down")
	}
	_, err = NewCamera(md3.Vec{X: 1}, md3.Vec{X: 1}, 1)
	if err == nil {
		t.Error("expected error for coincident position and look-at")
	}
	_, err = NewCamera(md3.Vec{X: 1}, md3.Vec{}, 0)
	if err == nil {
		t.Error("expected error for zero zoom")
	}
}

func TestUV(t *testing.T) {
	screen := md2.Vec{X: 64, Y: 48}
	got := UV(md2.Vec{X: 64, Y: 48}, screen)
	want := md2.Vec{X: 32.0 / 48, Y: 0.5}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if UV(md2.Vec{X: 32, Y: 24}, screen) != (md2.Vec{}) {
		t.Error("screen center should map to origin")
	}
}

func TestMarchMonotonic(t *testing.T) {
	var bld gfractal.Builder
	lattice := bld.NewSphereLattice(0.15)
	m := NewMarcher(lattice.TraceConfig())
	cam, _ := NewCamera(lattice.CameraPosition(), md3.Vec{}, 1)
	var vp gleval.VecPool
	screen := md2.Vec{X: 16, Y: 12}
	lastT := 0.0
	for budget := 1; budget < 40; budget++ {
		m.MaxSteps = budget
		rays := []Ray{cam.Ray(md2.Vec{X: 3, Y: 9}, screen)}
		hits := make([]Hit, 1)
		err := m.March(lattice, rays, hits, &vp)
		if err != nil {
			t.Fatal(err)
		}
		h := hits[0]
		if h.T < lastT {
			t.Fatalf("budget %d: t decreased from %g to %g", budget, lastT, h.T)
		}
		if h.Steps > budget {
			t.Fatalf("budget %d: took %d steps", budget, h.Steps)
		}
		if h.Status == StatusNone {
			t.Fatalf("budget %d: ray left unclassified", budget)
		}
		lastT = h.T
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Error(err)
	}
}

func TestMarchInside(t *testing.T) {
	var bld gfractal.Builder
	lattice := bld.NewSphereLattice(0.15)
	m := NewMarcher(lattice.TraceConfig())
	var vp gleval.VecPool
	// Ray starting at a sphere center is inside the surface and hits immediately.
	rays := []Ray{{Origin: md3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, Dir: md3.Vec{X: 1}}}
	hits := make([]Hit, 1)
	err := m.March(lattice, rays, hits, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if !hits[0].OK() || hits[0].T != 0 || hits[0].Steps != 1 {
		t.Errorf("expected immediate hit, got %+v", hits[0])
	}
}

func TestMarchExhausted(t *testing.T) {
	var bld gfractal.Builder
	lattice := bld.NewSphereLattice(0.15)
	m := NewMarcher(lattice.TraceConfig())
	m.MaxSteps = 3
	var vp gleval.VecPool
	rays := []Ray{{Dir: md3.Vec{Y: 1}}}
	hits := make([]Hit, 1)
	err := m.March(lattice, rays, hits, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].Status != StatusExhausted || hits[0].OK() {
		t.Errorf("expected exhausted ray, got %+v", hits[0])
	}
}

func TestLatticeCenterPixel(t *testing.T) {
	var bld gfractal.Builder
	lattice := bld.NewSphereLattice(0.15)
	screen := md2.Vec{X: 64, Y: 48}
	pixel := md2.Vec{X: 32, Y: 24}
	r, err := NewRenderer(lattice, Config{Mode: ModeGrayscale})
	if err != nil {
		t.Fatal(err)
	}
	var vp gleval.VecPool
	rays := []Ray{r.Camera().Ray(pixel, screen)}
	hits := make([]Hit, 1)
	err = r.Marcher().March(lattice, rays, hits, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if !hits[0].OK() || !(hits[0].T < r.Marcher().MaxDist) {
		t.Fatalf("expected hit, got %+v", hits[0])
	}
	c, err := RenderPixel(lattice, pixel, screen, ModeGrayscale)
	if err != nil {
		t.Fatal(err)
	}
	if c.R == 0 || c.R == 255 {
		t.Errorf("expected gray value strictly between 0 and 255, got %d", c.R)
	}
	if c.R != c.G || c.G != c.B || c.A != 255 {
		t.Errorf("expected opaque gray color, got %v", c)
	}
}

func TestLatticeMiss(t *testing.T) {
	var bld gfractal.Builder
	lattice := bld.NewSphereLattice(0.15)
	bg := color.RGBA{R: 10, G: 200, B: 30, A: 255}
	shader := DefaultShader(ModeGrayscale)
	shader.Background = SolidBackground(bg)
	// Straight up from a cell corner between spheres.
	cam, err := NewCamera(md3.Vec{}, md3.Vec{Y: 1, Z: 1e-3}, 1)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRenderer(lattice, Config{Shader: &shader, Camera: &cam})
	if err != nil {
		t.Fatal(err)
	}
	var vp gleval.VecPool
	rays := []Ray{{Origin: md3.Vec{}, Dir: md3.Vec{Y: 1}}}
	hits := make([]Hit, 1)
	colors := make([]color.RGBA, 1)
	err = r.shadeRays(rays, hits, colors, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if hits[0].Status != StatusMiss || !(hits[0].T > 100) {
		t.Errorf("expected miss past far plane, got %+v", hits[0])
	}
	if colors[0] != bg {
		t.Errorf("expected background %v, got %v", bg, colors[0])
	}
}

func TestParseColorMode(t *testing.T) {
	for _, mode := range []ColorMode{ModeGrayscale, ModeDistance, ModeNormal, ModeDistanceShaded} {
		got, err := ParseColorMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("round trip of %s failed: %v %v", mode, got, err)
		}
	}
	if _, err := ParseColorMode("sepia"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if got, _ := ParseColorMode("Normal"); got != ModeNormal {
		t.Error("parse should be case insensitive")
	}
}

func TestShade(t *testing.T) {
	light := md3.Vec{Y: 10}
	p := md3.Vec{}
	facing := md3.Vec{Y: 1}
	gray := DefaultShader(ModeGrayscale)
	if d := gray.Diffuse(p, facing, light); d != 1 {
		t.Errorf("diffuse facing light: got %g, want 1", d)
	}
	if d := gray.Diffuse(p, md3.Vec{Y: -1}, light); d != 0 {
		t.Errorf("diffuse facing away: got %g, want 0", d)
	}
	// Perpendicular normal receives half the linear light.
	want := math.Pow(0.5, gray.Gamma)
	if d := gray.Diffuse(p, md3.Vec{X: 1}, light); math.Abs(d-want) > 1e-12 {
		t.Errorf("diffuse perpendicular: got %g, want %g", d, want)
	}
	if c := gray.Shade(p, facing, light, 100); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("grayscale fully lit: got %v", c)
	}
	normal := DefaultShader(ModeNormal)
	c := normal.Shade(p, md3.Vec{Y: 2}, light, 100)
	if c != (color.RGBA{R: 128, G: 255, B: 128, A: 255}) {
		t.Errorf("normal mode: got %v", c)
	}
	dist := DefaultShader(ModeDistance)
	// 255*255*255 is 0xfd02ff.
	if c := dist.Shade(md3.Vec{X: 200}, facing, light, 100); c != (color.RGBA{R: 0xfd, G: 0x02, B: 0xff, A: 255}) {
		t.Errorf("distance past far plane should saturate: got %v", c)
	}
	if c := dist.Shade(p, facing, light, 100); c != (color.RGBA{A: 255}) {
		t.Errorf("distance at origin should be black: got %v", c)
	}
	shaded := DefaultShader(ModeDistanceShaded)
	if c := shaded.Shade(md3.Vec{X: 200}, md3.Vec{X: -1}, md3.Vec{X: 300}, 100); c != (color.RGBA{A: 255}) {
		t.Errorf("unlit shaded distance should be black: got %v", c)
	}
}

func TestShadeNaN(t *testing.T) {
	gray := DefaultShader(ModeGrayscale)
	c := gray.Shade(md3.Vec{}, md3.Vec{}, md3.Vec{Y: 1}, 100)
	if c != (color.RGBA{A: 255}) {
		t.Errorf("degenerate normal should shade black, got %v", c)
	}
}

func TestMissBackground(t *testing.T) {
	for _, mode := range []ColorMode{ModeDistance, ModeNormal, ModeDistanceShaded} {
		if c := DefaultShader(mode).Miss(md3.Vec{Y: 1}); c != (color.RGBA{A: 255}) {
			t.Errorf("%s: expected black miss color, got %v", mode, c)
		}
	}
	gray := DefaultShader(ModeGrayscale)
	up := gray.Miss(md3.Vec{Y: 1})
	down := gray.Miss(md3.Vec{Y: -1})
	if up == down {
		t.Error("grayscale background should depend on direction")
	}
	if down != (color.RGBA{R: 24, G: 24, B: 28, A: 255}) {
		t.Errorf("downwards background: got %v", down)
	}
	if up != (color.RGBA{R: 150, G: 170, B: 196, A: 255}) {
		t.Errorf("upwards background: got %v", up)
	}
}

func TestImageRenderer(t *testing.T) {
	const width, height = 24, 16
	var bld gfractal.Builder
	lattice := bld.NewSphereLattice(0.15)
	for _, mode := range []ColorMode{ModeGrayscale, ModeNormal} {
		r, err := NewRenderer(lattice, Config{Mode: mode})
		if err != nil {
			t.Fatal(err)
		}
		ir, err := NewImageRenderer(r, width)
		if err != nil {
			t.Fatal(err)
		}
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		err = ir.Render(img)
		if err != nil {
			t.Fatal(err)
		}
		if err := ir.VecPool().AssertAllReleased(); err != nil {
			t.Error(err)
		}
		screen := md2.Vec{X: width, Y: height}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				want, err := r.RenderPixel(md2.Vec{X: float64(x), Y: float64(height - 1 - y)}, screen)
				if err != nil {
					t.Fatal(err)
				}
				if got := img.RGBAAt(x, y); got != want {
					t.Fatalf("%s: pixel (%d,%d) got %v, want %v", mode, x, y, got, want)
				}
			}
		}
	}
}

func TestImageRendererBufferTooSmall(t *testing.T) {
	var bld gfractal.Builder
	r, err := NewRenderer(bld.NewSphereLattice(0.15), Config{})
	if err != nil {
		t.Fatal(err)
	}
	ir, err := NewImageRenderer(r, 4)
	if err != nil {
		t.Fatal(err)
	}
	err = ir.Render(image.NewRGBA(image.Rect(0, 0, 8, 2)))
	if err == nil {
		t.Error("expected error for image wider than buffer")
	}
}

func TestRenderParallel(t *testing.T) {
	const width, height = 32, 21
	var bld gfractal.Builder
	tetra := bld.NewFoldedTetrahedron(gfractal.FoldAbs, gfractal.DefaultTetrahedronConfig())
	r, err := NewRenderer(tetra, Config{Mode: ModeNormal})
	if err != nil {
		t.Fatal(err)
	}
	seq := image.NewRGBA(image.Rect(0, 0, width, height))
	ir, _ := NewImageRenderer(r, width)
	err = ir.Render(seq)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{1, 3, 8} {
		par := image.NewRGBA(image.Rect(0, 0, width, height))
		err = RenderParallel(r, par, workers)
		if err != nil {
			t.Fatal(err)
		}
		for i := range seq.Pix {
			if seq.Pix[i] != par.Pix[i] {
				t.Fatalf("workers=%d: parallel render differs from sequential at byte %d", workers, i)
			}
		}
	}
}
