package mempool

import (
	"sync"
)

// Sized pools for the per-image scratch buffers of the locate stage: the
// visited bitmap and the flood-fill work stack.

var (
	boolPools sync.Map // key: size class (int), value: *sync.Pool
	intPools  sync.Map // key: size class (int), value: *sync.Pool
)

// sizeClass rounds n up to the next multiple of 1024 (minimum 1024).
func sizeClass(n int) int {
	if n <= 1024 {
		return 1024
	}
	const step = 1024
	r := (n + step - 1) / step
	return r * step
}

func poolFor[T any](pools *sync.Map, cls int) *sync.Pool {
	pAny, _ := pools.LoadOrStore(cls, &sync.Pool{New: func() any { return make([]T, cls) }})
	p, ok := pAny.(*sync.Pool)
	if !ok {
		return nil
	}
	return p
}

// GetBool retrieves a zeroed []bool of length n from the pool.
// The caller should return it via PutBool when done.
func GetBool(n int) []bool {
	cls := sizeClass(n)
	p := poolFor[bool](&boolPools, cls)
	if p == nil {
		return make([]bool, n)
	}
	buf, ok := p.Get().([]bool)
	if !ok || cap(buf) < cls {
		buf = make([]bool, cls)
	}
	buf = buf[:n]
	// Pooled buffers are reused; callers rely on a clean bitmap.
	clear(buf)
	return buf
}

// PutBool returns a buffer to the pool. It is safe to pass a nil slice.
func PutBool(buf []bool) {
	if buf == nil {
		return
	}
	p := poolFor[bool](&boolPools, sizeClass(cap(buf)))
	if p == nil {
		return
	}
	p.Put(buf[:cap(buf)]) //nolint:staticcheck
}

// GetInts retrieves an empty []int with capacity of at least n, for use as a
// growable work stack.
func GetInts(n int) []int {
	cls := sizeClass(n)
	p := poolFor[int](&intPools, cls)
	if p == nil {
		return make([]int, 0, n)
	}
	buf, ok := p.Get().([]int)
	if !ok || cap(buf) < cls {
		buf = make([]int, cls)
	}
	return buf[:0]
}

// PutInts returns a stack buffer to the pool. Buffers that grew past their
// original class land in the larger class.
func PutInts(buf []int) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	if cls > cap(buf) {
		// Capacity is not a class boundary; keep only what fits a full class below.
		cls -= 1024
		if cls < 1024 {
			return
		}
	}
	p := poolFor[int](&intPools, cls)
	if p == nil {
		return
	}
	p.Put(buf[:cls]) //nolint:staticcheck
}
