package glrender

import (
	"errors"

	"github.com/soypat/geometry/md3"
	"github.com/soypat/gfractal/gleval"
)

// Status is the outcome of marching a ray.
type Status uint8

const (
	// StatusNone means the ray has not been marched to completion.
	StatusNone Status = iota
	// StatusHit means the distance estimate dropped below the hit threshold.
	StatusHit
	// StatusMiss means the ray traveled past the far plane.
	StatusMiss
	// StatusExhausted means the step budget ran out before a hit or miss. It is treated as a miss.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusHit:
		return "hit"
	case StatusMiss:
		return "miss"
	case StatusExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Ray is a half line with a normalized direction.
type Ray struct {
	Origin md3.Vec
	Dir    md3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) md3.Vec {
	return md3.Add(r.Origin, md3.Scale(t, r.Dir))
}

// Hit is the result of marching a ray.
type Hit struct {
	// T is the accumulated distance traveled along the ray.
	T float64
	// Steps is the amount of distance evaluations performed.
	Steps  int
	Status Status
}

// OK reports whether the ray hit a surface.
func (h Hit) OK() bool { return h.Status == StatusHit }

// Marcher is a sphere tracer. Each step advances a ray by exactly the distance
// estimate at its current point, which never skips a surface as long as the estimator
// never overestimates the true distance.
type Marcher struct {
	MinDist  float64
	MaxDist  float64
	MaxSteps int
}

// NewMarcher returns a Marcher with the precision of the trace configuration.
func NewMarcher(tc gleval.TraceConfig) Marcher {
	return Marcher{MinDist: tc.MinDist, MaxDist: tc.MaxDist, MaxSteps: tc.MaxSteps}
}

// March sphere traces rays against sdf and stores results in hits. All active rays
// are evaluated in a single batched Evaluate call per step.
//
// A distance below MinDist, including negative distances of points inside the surface,
// is a hit and does not advance the ray, so T is non-decreasing across steps.
// userData must contain a [gleval.VecPool].
func (m Marcher) March(sdf gleval.SDF3, rays []Ray, hits []Hit, userData any) error {
	if len(rays) != len(hits) {
		return errors.New("length of rays must match length of hits")
	} else if len(rays) == 0 {
		return errors.New("no rays to march")
	} else if m.MaxSteps <= 0 {
		return errors.New("invalid marcher step budget")
	}
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	pos := vp.V3.Acquire(len(rays))
	dist := vp.Float.Acquire(len(rays))
	defer vp.V3.Release(pos)
	defer vp.Float.Release(dist)
	for i := range hits {
		hits[i] = Hit{}
	}
	for step := 0; step < m.MaxSteps; step++ {
		active := 0
		for i, ray := range rays {
			if hits[i].Status == StatusNone {
				pos[active] = ray.At(hits[i].T)
				active++
			}
		}
		if active == 0 {
			return nil
		}
		err = sdf.Evaluate(pos[:active], dist[:active], userData)
		if err != nil {
			return err
		}
		j := 0
		for i := range hits {
			h := &hits[i]
			if h.Status != StatusNone {
				continue
			}
			d := dist[j]
			j++
			h.Steps++
			if d < m.MinDist {
				h.Status = StatusHit
				continue
			}
			h.T += d
			if h.T > m.MaxDist {
				h.Status = StatusMiss
			}
		}
	}
	for i := range hits {
		if hits[i].Status == StatusNone {
			hits[i].Status = StatusExhausted
		}
	}
	return nil
}
