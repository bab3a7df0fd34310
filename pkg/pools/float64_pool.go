package pools

import (
	"math/bits"
	"sync"
)

// Size classes are powers of two from MinClass up to MaxPool elements.
const (
	MinClass = 64
	MaxPool  = 1 << 20 // Don't pool slices larger than this
)

var numClasses = bits.Len(MaxPool) - bits.Len(MinClass) + 1

// Float64Pool pools float64 slices in power-of-two size classes.
type Float64Pool struct {
	classes []sync.Pool
}

// NewFloat64Pool creates a new float64 slice pool.
func NewFloat64Pool() *Float64Pool {
	p := &Float64Pool{classes: make([]sync.Pool, numClasses)}
	for i := range p.classes {
		size := MinClass << i
		p.classes[i].New = func() any {
			s := make([]float64, 0, size)
			return &s
		}
	}
	return p
}

// class returns the index of the smallest class holding n elements, or -1
// when n is too large to pool.
func class(n int) int {
	if n > MaxPool {
		return -1
	}
	if n <= MinClass {
		return 0
	}
	return bits.Len(uint(n-1)) - bits.Len(MinClass-1)
}

// Get returns a zeroed slice of length n.
func (p *Float64Pool) Get(n int) []float64 {
	c := class(n)
	if c < 0 {
		return make([]float64, n)
	}
	sp, ok := p.classes[c].Get().(*[]float64)
	if !ok || cap(*sp) < n {
		// Pool returned wrong type or too small, allocate new
		return make([]float64, n)
	}
	s := (*sp)[:n]
	clear(s)
	return s
}

// Put returns a slice to the pool. Slices whose capacity is not exactly a
// size class are dropped.
func (p *Float64Pool) Put(s []float64) {
	c := cap(s)
	i := class(c)
	if i < 0 || MinClass<<i != c {
		return
	}
	s = s[:0]
	p.classes[i].Put(&s)
}

// Default global float64 pool
var defaultFloat64Pool = NewFloat64Pool()

// GetFloat64s returns a zeroed slice of length n from the default pool.
func GetFloat64s(n int) []float64 {
	return defaultFloat64Pool.Get(n)
}

// PutFloat64s returns a slice to the default pool.
func PutFloat64s(s []float64) {
	defaultFloat64Pool.Put(s)
}
