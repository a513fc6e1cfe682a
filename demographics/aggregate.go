//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package demographics

import (
	"fmt"
	"math"

	"github.com/markkurossi/mpcstats/gmw"
)

// AggregateSum reveals the sum of the values v modulo 2^32 to the
// result party. The peer of the result party blinds every row with a
// fresh random mask before the rows are opened to the result party,
// and then opens the sum of the masks separately. The result party
// gets the sum and the other party gets 0. An empty batch returns 0
// without a reveal.
func (g *Game) AggregateSum(v *gmw.Uint, result gmw.Role) (uint32, error) {
	n := v.Len()
	if n == 0 {
		return 0, nil
	}
	s := g.Session
	masking := result.Peer()

	masks := make([]uint32, n)
	if s.Role() == masking {
		var err error
		masks, err = s.Rand32(n)
		if err != nil {
			return 0, err
		}
	}
	secMasks, err := s.Input(masking, masks)
	if err != nil {
		return 0, fmt.Errorf("aggregate: %w", err)
	}
	masked, err := s.Sub(v, secMasks)
	if err != nil {
		return 0, fmt.Errorf("aggregate: %w", err)
	}
	values, err := s.OpenToParty(masked, result)
	if err != nil {
		return 0, fmt.Errorf("aggregate: open masked values: %w", err)
	}
	if g.observe != nil && values != nil {
		g.observe("masked", values)
	}
	var maskedSum uint32
	for _, value := range values {
		maskedSum += value
	}

	var maskSum uint32
	for _, mask := range masks {
		maskSum += mask
	}
	secMaskSum, err := s.Input(masking, []uint32{maskSum})
	if err != nil {
		return 0, fmt.Errorf("aggregate: %w", err)
	}
	pubMaskSum, err := s.OpenToParty(secMaskSum, result)
	if err != nil {
		return 0, fmt.Errorf("aggregate: open mask sum: %w", err)
	}
	if s.Role() != result {
		return 0, nil
	}
	return maskedSum + pubMaskSum[0], nil
}

// AggregateSum64 reveals the sum of the values v without wrapping to
// the result party. The values are split into limbs narrow enough
// that no limb sum can exceed 32 bits, each limb is summed with
// AggregateSum, and the result party combines the limb sums.
func (g *Game) AggregateSum64(v *gmw.Uint, result gmw.Role) (uint64, error) {
	n := v.Len()
	if n == 0 {
		return 0, nil
	}
	w := limbWidth(n)

	var sum uint64
	for ofs := 0; ofs < gmw.Width; ofs += w {
		part, err := g.AggregateSum(limb(g.Session, v, ofs, w), result)
		if err != nil {
			return 0, err
		}
		sum += uint64(part) << ofs
	}
	return sum, nil
}

// limbWidth returns the widest limb whose sum over n rows fits in
// 32 bits.
func limbWidth(n int) int {
	for w := gmw.Width; w > 1; w-- {
		if uint64(n)*(1<<w-1) <= math.MaxUint32 {
			return w
		}
	}
	return 1
}

// limb returns the bits [ofs, ofs+w) of v as the low bits of a new
// batch. Bit selection on XOR shares is local.
func limb(s *gmw.Session, v *gmw.Uint, ofs, w int) *gmw.Uint {
	result := s.Zero(v.Len())
	for i := 0; i < w && ofs+i < gmw.Width; i++ {
		result = result.SetBit(i, v.Bit(ofs+i))
	}
	return result
}
