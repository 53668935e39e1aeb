package glrender

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/soypat/geometry/md3"
)

// ColorMode selects how surface points are mapped to colors. A mode is chosen once per
// render pass and applied uniformly to all pixels.
type ColorMode uint8

const (
	// ModeGrayscale replicates the gamma corrected diffuse light on all channels.
	ModeGrayscale ColorMode = iota
	// ModeDistance spreads the hit point's distance from the origin, normalized by the
	// far plane, over the 24 bits of the three channels.
	ModeDistance
	// ModeNormal maps the surface normal components to channels, shaded by diffuse light.
	ModeNormal
	// ModeDistanceShaded is ModeDistance shaded by diffuse light.
	ModeDistanceShaded
)

var colorModeNames = [...]string{
	ModeGrayscale:      "grayscale",
	ModeDistance:       "distance",
	ModeNormal:         "normal",
	ModeDistanceShaded: "shaded",
}

// String returns the identifier of the color mode used in output file names.
func (cm ColorMode) String() string {
	if int(cm) < len(colorModeNames) {
		return colorModeNames[cm]
	}
	return fmt.Sprintf("ColorMode(%d)", uint8(cm))
}

// ParseColorMode returns the color mode identified by name, case insensitive.
func ParseColorMode(name string) (ColorMode, error) {
	for i, n := range colorModeNames {
		if strings.EqualFold(n, name) {
			return ColorMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color mode %q", name)
}

// Shader maps surface points to colors with a single point light placed relative to the camera.
type Shader struct {
	Mode ColorMode
	// LightOffset is the position of the point light relative to the camera.
	LightOffset md3.Vec
	// Gamma is the exponent applied to linear light before quantization, usually 1/2.2.
	Gamma float64
	// Background colors rays that miss. A nil Background is black.
	Background Background
}

// DefaultShader returns the shader for the mode. Grayscale renders misses with a
// vertical gradient; all other modes render misses black.
func DefaultShader(mode ColorMode) Shader {
	s := Shader{
		Mode:        mode,
		LightOffset: md3.Vec{X: 2, Y: 2},
		Gamma:       0.4545,
	}
	if mode == ModeGrayscale {
		s.Background = GradientBackground(
			color.RGBA{R: 24, G: 24, B: 28, A: 255},
			color.RGBA{R: 150, G: 170, B: 196, A: 255},
		)
	}
	return s
}

// Miss returns the color of a ray with direction dir that hit nothing.
func (s Shader) Miss(dir md3.Vec) color.RGBA {
	if s.Background == nil {
		return color.RGBA{A: 255}
	}
	return s.Background(dir)
}

// Diffuse returns the gamma corrected diffuse light in [0,1] at point p with surface normal n
// lit by a point light at light. n need not be normalized.
func (s Shader) Diffuse(p, n, light md3.Vec) float64 {
	l := unit(md3.Sub(light, p))
	diffuse := clampf(md3.Dot(unit(n), l)*0.5+0.5, 0, 1)
	return math.Pow(diffuse, s.Gamma)
}

// Shade returns the color of the surface at p with normal n. light is the point light
// position and maxDist the far plane used to normalize distances.
func (s Shader) Shade(p, n, light md3.Vec, maxDist float64) color.RGBA {
	switch s.Mode {
	case ModeGrayscale:
		v := toByte(s.Diffuse(p, n, light))
		return color.RGBA{R: v, G: v, B: v, A: 255}
	case ModeDistance:
		return distanceColor(p, maxDist)
	case ModeNormal:
		diff := s.Diffuse(p, n, light)
		n = unit(n)
		return color.RGBA{
			R: toByte((n.X*0.5 + 0.5) * diff),
			G: toByte((n.Y*0.5 + 0.5) * diff),
			B: toByte((n.Z*0.5 + 0.5) * diff),
			A: 255,
		}
	case ModeDistanceShaded:
		diff := s.Diffuse(p, n, light)
		c := distanceColor(p, maxDist)
		return color.RGBA{
			R: toByte(float64(c.R) / 255 * diff),
			G: toByte(float64(c.G) / 255 * diff),
			B: toByte(float64(c.B) / 255 * diff),
			A: 255,
		}
	}
	return color.RGBA{A: 255}
}

// distanceColor maps the distance of p from the origin normalized by maxDist
// to a 24 bit value spread over the channels, red being most significant.
func distanceColor(p md3.Vec, maxDist float64) color.RGBA {
	const full = 255 * 255 * 255
	normalized := md3.Norm(p) / maxDist
	if !(normalized > 0) {
		normalized = 0
	}
	value := uint32(min(normalized, 1) * full)
	return color.RGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 255,
	}
}

// toByte quantizes x in [0,1] to 8 bits. NaN quantizes to zero.
func toByte(x float64) uint8 {
	if !(x > 0) {
		return 0
	}
	x *= 256
	if x >= 255 {
		return 255
	}
	return uint8(x)
}

func clampf(v, Min, Max float64) float64 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}
