package interpolate

import (
	"fmt"
)

// Searcher locates the interval of a strictly increasing sequence of knots
// that contains a given value. Lookups first guess under the assumption of
// uniform spacing and fall back to a binary search, so they are O(1) for
// uniform knots and O(log n) otherwise.
//
// A Searcher is read-only after Init and may be shared between goroutines.
type Searcher struct {
	xs []float64
	x0, dx, lim float64
	n int
}

// NewSearcher creates a Searcher over xs.
func NewSearcher(xs []float64) *Searcher {
	s := &Searcher{}
	s.Init(xs)
	return s
}

// Init initializes a Searcher over xs. xs is not copied. Init panics if
// fewer than two knots are given.
func (s *Searcher) Init(xs []float64) {
	if len(xs) < 2 {
		panic(fmt.Sprintf("Searcher needs at least two knots, got %d.",
			len(xs)))
	}
	s.xs = xs
	s.x0 = xs[0]
	s.lim = xs[len(xs)-1]
	s.dx = (s.lim - s.x0) / float64(len(xs)-1)
	s.n = len(xs)
}

// Search returns the index i such that xs[i] <= x < xs[i+1]. Values below
// the first knot give -1 and values at or above the last knot give
// Len() - 1.
func (s *Searcher) Search(x float64) int {
	if x < s.x0 {
		return -1
	} else if x >= s.lim {
		return s.n - 1
	}

	guess := int((x - s.x0) / s.dx)
	if guess >= 0 && guess < s.n-1 &&
		s.xs[guess] <= x && x < s.xs[guess+1] {
		return guess
	}

	lo, hi := 0, s.n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if x >= s.xs[mid] {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// Len returns the number of knots.
func (s *Searcher) Len() int { return s.n }

// Val returns knot i.
func (s *Searcher) Val(i int) float64 { return s.xs[i] }

// Min returns the first knot.
func (s *Searcher) Min() float64 { return s.x0 }

// Max returns the last knot.
func (s *Searcher) Max() float64 { return s.lim }
