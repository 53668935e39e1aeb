package gleval

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/md3"
)

// VecPool is a set of reusable buffers for SDF evaluation.
// A VecPool is not safe for concurrent use: each goroutine should own its own.
type VecPool struct {
	V3    bufPool[md3.Vec]
	Float bufPool[float64]
}

// GetVecPool extracts a [VecPool] from userData. userData may be a *VecPool
// or implement a VecPool() *VecPool method.
func GetVecPool(userData any) (*VecPool, error) {
	switch v := userData.(type) {
	case *VecPool:
		if v == nil {
			return nil, errors.New("nil VecPool")
		}
		return v, nil
	case interface{ VecPool() *VecPool }:
		vp := v.VecPool()
		if vp == nil {
			return nil, errors.New("VecPool method returned nil")
		}
		return vp, nil
	}
	return nil, fmt.Errorf("want userData type *gleval.VecPool, got %T", userData)
}

// AssertAllReleased returns an error if any buffer of the pool is still acquired.
func (vp *VecPool) AssertAllReleased() error {
	err := vp.Float.assertAllReleased()
	if err != nil {
		return fmt.Errorf("Float pool: %w", err)
	}
	err = vp.V3.assertAllReleased()
	if err != nil {
		return fmt.Errorf("V3 pool: %w", err)
	}
	return nil
}

type bufPool[T any] struct {
	_ins      [][]T
	_acquired []bool
}

// Acquire returns a buffer of length length. The buffer contents are not zeroed.
// The buffer must be returned with Release once no longer in use.
func (bp *bufPool[T]) Acquire(length int) []T {
	for i, locked := range bp._acquired {
		if !locked && cap(bp._ins[i]) >= length {
			bp._acquired[i] = true
			return bp._ins[i][:length]
		}
	}
	newSlice := make([]T, max(1, length))
	bp._ins = append(bp._ins, newSlice)
	bp._acquired = append(bp._acquired, true)
	return newSlice[:length]
}

// Release returns buf to the pool for reuse. buf must have been acquired from the same pool.
func (bp *bufPool[T]) Release(buf []T) error {
	if cap(buf) == 0 {
		return errors.New("release of zero capacity buffer")
	}
	for i, instance := range bp._ins {
		if &instance[:1][0] == &buf[:1][0] {
			if !bp._acquired[i] {
				return errors.New("release of unacquired resource")
			}
			bp._acquired[i] = false
			return nil
		}
	}
	return errors.New("release of nonexistent resource")
}

func (bp *bufPool[T]) assertAllReleased() error {
	for _, locked := range bp._acquired {
		if locked {
			return errors.New("locked resource found in bufPool.assertAllReleased, maybe resource was not released?")
		}
	}
	return nil
}

// TotalAlloc returns the total amount of elements allocated by the pool.
func (bp *bufPool[T]) TotalAlloc() (n int) {
	for _, instance := range bp._ins {
		n += cap(instance)
	}
	return n
}
