package gleval

import (
	"math"
	"testing"

	"github.com/soypat/geometry/md3"
)

// unitSphere is a sphere of radius one centered at the origin.
type unitSphere struct{}

func (unitSphere) Evaluate(pos []md3.Vec, dist []float64, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	}
	for i, p := range pos {
		dist[i] = md3.Norm(p) - 1
	}
	return nil
}

func (unitSphere) CameraPosition() md3.Vec { return md3.Vec{Z: -3} }
func (unitSphere) CameraLookAt() md3.Vec { return md3.Vec{} }
func (unitSphere) TraceConfig() TraceConfig { return DefaultTraceConfig() }

func TestVecPool(t *testing.T) {
	var vp VecPool
	a := vp.Float.Acquire(10)
	b := vp.Float.Acquire(5)
	if len(a) != 10 || len(b) != 5 {
		t.Fatal("bad buffer lengths", len(a), len(b))
	}
	if err := vp.AssertAllReleased(); err == nil {
		t.Error("expected error with acquired buffers")
	}
	if err := vp.Float.Release(a); err != nil {
		t.Fatal(err)
	}
	if err := vp.Float.Release(a); err == nil {
		t.Error("expected error on double release")
	}
	// Released buffer is reused for smaller requests.
	c := vp.Float.Acquire(8)
	if &c[0] != &a[0] {
		t.Error("released buffer not reused")
	}
	if err := vp.Float.Release(make([]float64, 3)); err == nil {
		t.Error("expected error releasing foreign buffer")
	}
	vp.Float.Release(b)
	vp.Float.Release(c)
	if err := vp.AssertAllReleased(); err != nil {
		t.Error(err)
	}
	if vp.Float.TotalAlloc() != 15 {
		t.Errorf("want 15 allocated elements, got %d", vp.Float.TotalAlloc())
	}
}

type vpHolder struct{ vp VecPool }

func (h *vpHolder) VecPool() *VecPool { return &h.vp }

func TestGetVecPool(t *testing.T) {
	var vp VecPool
	got, err := GetVecPool(&vp)
	if err != nil || got != &vp {
		t.Error("failed to get *VecPool", err)
	}
	var h vpHolder
	got, err = GetVecPool(&h)
	if err != nil || got != &h.vp {
		t.Error("failed to get VecPool from method", err)
	}
	_, err = GetVecPool(nil)
	if err == nil {
		t.Error("expected error for nil userData")
	}
	_, err = GetVecPool((*VecPool)(nil))
	if err == nil {
		t.Error("expected error for nil *VecPool")
	}
}

func TestNormalsCentralDiff(t *testing.T) {
	var vp VecPool
	pos := []md3.Vec{
		{X: 1},
		{Y: -1},
		{X: 0.6, Z: 0.8},
		{X: 2, Y: 2, Z: -1},
	}
	normals := make([]md3.Vec, len(pos))
	err := NormalsCentralDiff(unitSphere{}, pos, normals, 0.002, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Error(err)
	}
	for i, n := range normals {
		n = md3.Scale(1/md3.Norm(n), n)
		want := md3.Scale(1/md3.Norm(pos[i]), pos[i])
		if md3.Norm(md3.Sub(n, want)) > 1e-5 {
			t.Errorf("normal at %v: got %v, want %v", pos[i], n, want)
		}
	}
	err = NormalsCentralDiff(unitSphere{}, pos, normals, 0.002, nil)
	if err == nil {
		t.Error("expected error without VecPool")
	}
	err = NormalsCentralDiff(unitSphere{}, pos, normals[:1], 0.002, &vp)
	if err == nil {
		t.Error("expected error on length mismatch")
	}
	err = NormalsCentralDiff(unitSphere{}, pos, normals, 0, &vp)
	if err == nil {
		t.Error("expected error on zero step")
	}
}

func TestEvalCounter(t *testing.T) {
	c := NewEvalCounter(unitSphere{})
	pos := make([]md3.Vec, 7)
	dist := make([]float64, 7)
	for i := 0; i < 3; i++ {
		err := c.Evaluate(pos, dist, nil)
		if err != nil {
			t.Fatal(err)
		}
	}
	if c.Evaluations() != 21 || c.Calls() != 3 {
		t.Errorf("want 21 evaluations in 3 calls, got %d in %d", c.Evaluations(), c.Calls())
	}
	if dist[0] != -1 {
		t.Errorf("wrapped evaluation result wrong: %g", dist[0])
	}
	if c.Evaluate(pos, dist[:2], nil) == nil {
		t.Error("expected length mismatch error")
	}
	if c.Evaluate(nil, nil, nil) == nil {
		t.Error("expected empty buffer error")
	}
	if c.Calls() != 3 {
		t.Error("failed evaluations should not be counted")
	}
	if c.CameraPosition() != (md3.Vec{Z: -3}) {
		t.Error("camera position not forwarded to wrapped fractal")
	}
}

func TestTraceConfigValidate(t *testing.T) {
	if err := DefaultTraceConfig().Validate(); err != nil {
		t.Fatal(err)
	}
	for _, mod := range []func(*TraceConfig){
		func(tc *TraceConfig) { tc.MinDist = 0 },
		func(tc *TraceConfig) { tc.MinDist = math.NaN() },
		func(tc *TraceConfig) { tc.MaxDist = tc.MinDist / 2 },
		func(tc *TraceConfig) { tc.MaxDist = math.Inf(1) },
		func(tc *TraceConfig) { tc.MaxSteps = 0 },
		func(tc *TraceConfig) { tc.NormalStep = -1 },
	} {
		tc := DefaultTraceConfig()
		mod(&tc)
		if tc.Validate() == nil {
			t.Errorf("expected validation error for %+v", tc)
		}
	}
}
