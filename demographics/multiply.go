//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package demographics

import (
	"fmt"

	"github.com/markkurossi/mpcstats/gmw"
)

// Multiply computes x*y modulo 2^32 with the shift-and-add method
// over the bits of y.
func (g *Game) Multiply(x, y *gmw.Uint) (*gmw.Uint, error) {
	return g.multiply(x, y, gmw.Width)
}

// multiply computes x*y modulo 2^32 over the low bits of y. The
// high bits of y must be zero.
func (g *Game) multiply(x, y *gmw.Uint, bits int) (*gmw.Uint, error) {
	s := g.Session
	if x.Len() != y.Len() {
		return nil, fmt.Errorf("%w: multiply %d x %d rows",
			ErrInvalidRecordShape, x.Len(), y.Len())
	}
	zero := s.Zero(x.Len())
	result := zero
	multiplicand := x

	for i := 0; i < bits; i++ {
		term, err := s.Select(y.Bit(i), multiplicand, zero)
		if err != nil {
			return nil, err
		}
		result, err = s.Add(result, term)
		if err != nil {
			return nil, err
		}
		multiplicand = multiplicand.ShiftLeft()
	}
	return result, nil
}
