package glrender

import (
	"errors"
	"math"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/geometry/md3"
)

// parallelTol is the minimum length of the world-up and forward cross product
// for which the camera's right axis is considered well defined.
const parallelTol = 1e-9

var worldUp = md3.Vec{Y: 1}

// Camera is a pinhole camera defined by an orthonormal forward/right/up basis.
type Camera struct {
	pos     md3.Vec
	forward md3.Vec
	right   md3.Vec
	up      md3.Vec
	zoom    float64
}

// NewCamera creates a camera at position looking towards lookAt. zoom is the
// distance of the screen plane from the camera, 1 gives a 53 degree vertical field of view.
//
// A camera looking straight up or down has no defined right axis and is not supported.
func NewCamera(position, lookAt md3.Vec, zoom float64) (Camera, error) {
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		return Camera{}, errors.New("camera zoom must be positive and finite")
	}
	look := md3.Sub(lookAt, position)
	n := md3.Norm(look)
	if !(n > parallelTol) || math.IsInf(n, 0) {
		return Camera{}, errors.New("camera position coincides with look-at point")
	}
	f := md3.Scale(1/n, look)
	r := md3.Cross(worldUp, f)
	rn := md3.Norm(r)
	if !(rn > parallelTol) {
		return Camera{}, errors.New("camera looks parallel to world up: right axis undefined")
	}
	r = md3.Scale(1/rn, r)
	return Camera{
		pos:     position,
		forward: f,
		right:   r,
		up:      md3.Cross(f, r),
		zoom:    zoom,
	}, nil
}

// Position returns the camera origin.
func (c Camera) Position() md3.Vec { return c.pos }

// Basis returns the orthonormal forward, right and up axes of the camera.
func (c Camera) Basis() (forward, right, up md3.Vec) {
	return c.forward, c.right, c.up
}

// UV remaps a pixel coordinate to screen space centered at the screen's center
// and scaled by the screen height: (pixel - 0.5*screen) / screen.Y.
func UV(pixel, screen md2.Vec) md2.Vec {
	return md2.Vec{
		X: (pixel.X - 0.5*screen.X) / screen.Y,
		Y: (pixel.Y - 0.5*screen.Y) / screen.Y,
	}
}

// RayDir returns the normalized direction of the ray passing through screen coordinate uv.
func (c Camera) RayDir(uv md2.Vec) md3.Vec {
	d := md3.Add(md3.Scale(uv.X, c.right), md3.Scale(uv.Y, c.up))
	d = md3.Add(d, md3.Scale(c.zoom, c.forward))
	return unit(d)
}

// Ray returns the ray through the pixel of a screen of the given dimensions.
func (c Camera) Ray(pixel, screen md2.Vec) Ray {
	return Ray{Origin: c.pos, Dir: c.RayDir(UV(pixel, screen))}
}

// unit returns v scaled to unit length, NaN for the zero vector.
func unit(v md3.Vec) md3.Vec {
	return md3.Scale(1/md3.Norm(v), v)
}
