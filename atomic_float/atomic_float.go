package atomic_float

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a float64 that may be read and written from multiple goroutines
// without locks. The value is stored as its IEEE-754 bit pattern.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 returns an AtomicFloat64 holding val.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	af := &AtomicFloat64{}
	af.bits.Store(math.Float64bits(val))
	return af
}

// Read returns the current value.
func (af *AtomicFloat64) Read() float64 {
	return math.Float64frombits(af.bits.Load())
}

// Set replaces the current value.
func (af *AtomicFloat64) Set(val float64) {
	af.bits.Store(math.Float64bits(val))
}

// Add attempts a single compare-and-swap of value+addend. If another writer changed the
// value in between, nothing is written and succeeded is false, leaving the caller to
// decide whether to retry or drop the update.
func (af *AtomicFloat64) Add(addend float64) (newVal float64, succeeded bool) {
	old := af.bits.Load()
	newVal = math.Float64frombits(old) + addend
	succeeded = af.bits.CompareAndSwap(old, math.Float64bits(newVal))
	return
}

// MustAdd retries Add until it succeeds and returns the new value.
func (af *AtomicFloat64) MustAdd(addend float64) float64 {
	for {
		if newVal, ok := af.Add(addend); ok {
			return newVal
		}
	}
}
