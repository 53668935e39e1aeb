package glrender

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
	"github.com/soypat/gfractal/gleval"
)

// Config overrides the rendering defaults of a fractal. The zero value renders
// in grayscale with the fractal's own camera placement and tracing precision.
type Config struct {
	Mode ColorMode
	// Shader overrides DefaultShader(Mode). Its Mode field takes precedence over Mode.
	Shader *Shader
	// Trace overrides the fractal's TraceConfig.
	Trace *gleval.TraceConfig
	// Camera overrides the camera built from the fractal's position and look-at with zoom 1.
	Camera *Camera
}

// Renderer renders pixels of a fractal. It is immutable and safe for concurrent use.
type Renderer struct {
	sdf        gleval.Fractal
	cam        Camera
	march      Marcher
	normalStep float64
	shader     Shader
}

// NewRenderer validates cfg against the fractal and returns a ready to use Renderer.
func NewRenderer(f gleval.Fractal, cfg Config) (*Renderer, error) {
	if f == nil {
		return nil, errors.New("nil Fractal")
	}
	trace := f.TraceConfig()
	if cfg.Trace != nil {
		trace = *cfg.Trace
	}
	err := trace.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid trace config: %w", err)
	}
	var cam Camera
	if cfg.Camera != nil {
		cam = *cfg.Camera
	} else {
		cam, err = NewCamera(f.CameraPosition(), f.CameraLookAt(), 1)
		if err != nil {
			return nil, err
		}
	}
	shader := DefaultShader(cfg.Mode)
	if cfg.Shader != nil {
		shader = *cfg.Shader
	}
	if int(shader.Mode) >= len(colorModeNames) {
		return nil, fmt.Errorf("invalid %s", shader.Mode)
	}
	return &Renderer{
		sdf:        f,
		cam:        cam,
		march:      NewMarcher(trace),
		normalStep: trace.NormalStep,
		shader:     shader,
	}, nil
}

// Camera returns the renderer's camera.
func (r *Renderer) Camera() Camera { return r.cam }

// Shader returns the renderer's shader.
func (r *Renderer) Shader() Shader { return r.shader }

// Marcher returns the renderer's sphere tracer.
func (r *Renderer) Marcher() Marcher { return r.march }

// RenderPixel returns the color of the pixel of a screen of the given dimensions.
// The result depends only on its arguments and the renderer's configuration.
func (r *Renderer) RenderPixel(pixel, screen md2.Vec) (color.RGBA, error) {
	var (
		vp     gleval.VecPool
		rays   = [1]Ray{r.cam.Ray(pixel, screen)}
		hits   [1]Hit
		colors [1]color.RGBA
	)
	err := r.shadeRays(rays[:], hits[:], colors[:], &vp)
	return colors[0], err
}

// RenderPixel renders a single pixel of fractal f with its default camera and precision.
func RenderPixel(f gleval.Fractal, pixel, screen md2.Vec, mode ColorMode) (color.RGBA, error) {
	r, err := NewRenderer(f, Config{Mode: mode})
	if err != nil {
		return color.RGBA{}, err
	}
	return r.RenderPixel(pixel, screen)
}

// shadeRays marches rays, estimates normals at hit points in a single batch and shades them into dst.
func (r *Renderer) shadeRays(rays []Ray, hits []Hit, dst []color.RGBA, vp *gleval.VecPool) error {
	err := r.march.March(r.sdf, rays, hits, vp)
	if err != nil {
		return err
	}
	pos := vp.V3.Acquire(len(rays))
	normals := vp.V3.Acquire(len(rays))
	defer vp.V3.Release(pos)
	defer vp.V3.Release(normals)
	nhit := 0
	for i, h := range hits {
		if h.OK() {
			pos[nhit] = rays[i].At(h.T)
			nhit++
		}
	}
	if nhit > 0 {
		err = gleval.NormalsCentralDiff(r.sdf, pos[:nhit], normals[:nhit], r.normalStep, vp)
		if err != nil {
			return err
		}
	}
	light := md3.Add(r.cam.Position(), r.shader.LightOffset)
	j := 0
	for i, h := range hits {
		if !h.OK() {
			dst[i] = r.shader.Miss(rays[i].Dir)
			continue
		}
		dst[i] = r.shader.Shade(pos[j], normals[j], light, r.march.MaxDist)
		j++
	}
	return nil
}
