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

// Average computes the mean age of the datasets.
func (g *Game) Average(a, b Dataset) (float64, error) {
	return g.AverageField(a, b, FieldAge)
}

// AverageField computes the mean of the field f. The sum is computed
// with masked aggregation and the division is done in cleartext by
// the result party. Age sums are computed modulo 2^32 and wealth
// sums in 64 bits.
func (g *Game) AverageField(a, b Dataset, f Field) (float64, error) {
	if err := checkShapes(a, b); err != nil {
		return 0, err
	}
	n := a.Len()
	if n == 0 {
		return 0, fmt.Errorf("%w: average of 0 rows", ErrEmptyDataset)
	}
	values, err := g.combined(a, b, f)
	if err != nil {
		return 0, err
	}
	sum, err := g.sum(values, f)
	if err != nil {
		return 0, err
	}
	if !g.isResultParty() {
		return 0, nil
	}
	g.debugf("average: sum=%d, n=%d\n", sum, n)

	return float64(sum) / float64(n), nil
}

// sum aggregates the values of the field f to the result party.
func (g *Game) sum(values *gmw.Uint, f Field) (uint64, error) {
	if f.wide() {
		return g.AggregateSum64(values, g.ResultParty)
	}
	sum, err := g.AggregateSum(values, g.ResultParty)
	return uint64(sum), err
}

// AverageSequential computes the mean age of the datasets by adding
// the rows one by one and opening only the final sum to the result
// party.
func (g *Game) AverageSequential(a, b Dataset) (float64, error) {
	return g.AverageSequentialField(a, b, FieldAge)
}

// AverageSequentialField computes the mean of the field f by adding
// the rows one by one. It needs one secure addition round per row and
// it is kept as a baseline for AverageField. Wealth is summed in
// limbs like in AggregateSum64.
func (g *Game) AverageSequentialField(a, b Dataset, f Field) (float64, error) {
	if err := checkShapes(a, b); err != nil {
		return 0, err
	}
	n := a.Len()
	if n == 0 {
		return 0, fmt.Errorf("%w: average of 0 rows", ErrEmptyDataset)
	}
	values, err := g.combined(a, b, f)
	if err != nil {
		return 0, err
	}
	s := g.Session

	w := gmw.Width
	if f.wide() {
		w = limbWidth(n)
	}
	var total uint64
	for ofs := 0; ofs < gmw.Width; ofs += w {
		part := values
		if w < gmw.Width {
			part = limb(s, values, ofs, w)
		}
		sum := s.Zero(1)
		for i := 0; i < n; i++ {
			sum, err = s.Add(sum, part.Row(i))
			if err != nil {
				return 0, err
			}
		}
		result, err := s.OpenToParty(sum, g.ResultParty)
		if err != nil {
			return 0, fmt.Errorf("average: %w", err)
		}
		if result != nil {
			total += uint64(result[0]) << ofs
		}
	}
	if !g.isResultParty() {
		return 0, nil
	}
	return float64(total) / float64(n), nil
}

// Variance computes the unbiased sample variance of the ages for the
// public mean.
func (g *Game) Variance(a, b Dataset, mean float64) (float64, error) {
	return g.VarianceField(a, b, FieldAge, mean)
}

// VarianceField computes the unbiased sample variance of the field f
// for the public mean. The mean is truncated to an integer before the
// secure subtraction. The squared age deviations are computed modulo
// 2^32. The wealth deviations are squared in 16-bit halves and summed
// without wrapping.
func (g *Game) VarianceField(a, b Dataset, f Field, mean float64) (
	float64, error) {

	if err := checkShapes(a, b); err != nil {
		return 0, err
	}
	n := a.Len()
	if n < 2 {
		return 0, fmt.Errorf("%w: variance of %d rows", ErrEmptyDataset, n)
	}
	if math.IsNaN(mean) || mean < 0 || mean > math.MaxUint32 {
		return 0, fmt.Errorf("%w: invalid mean %v",
			ErrThresholdMisconfiguration, mean)
	}
	values, err := g.combined(a, b, f)
	if err != nil {
		return 0, err
	}
	s := g.Session
	m := s.Const(n, uint32(mean))

	var sum float64
	if f.wide() {
		sum, err = g.squaresWide(values, m)
	} else {
		sum, err = g.squares(values, m)
	}
	if err != nil {
		return 0, err
	}
	if !g.isResultParty() {
		return 0, nil
	}
	g.debugf("variance: sum=%.0f, n=%d\n", sum, n)

	return sum / float64(n-1), nil
}

// squares returns the sum of (v-m)^2 modulo 2^32.
func (g *Game) squares(values, m *gmw.Uint) (float64, error) {
	diff, err := g.Session.Sub(values, m)
	if err != nil {
		return 0, err
	}
	squares, err := g.Multiply(diff, diff)
	if err != nil {
		return 0, err
	}
	sum, err := g.AggregateSum(squares, g.ResultParty)
	if err != nil {
		return 0, err
	}
	return float64(sum), nil
}

// squaresWide returns the sum of (v-m)^2 without wrapping. With
// d=|v-m|=hi*2^16+lo, d^2 = hi*hi*2^32 + hi*lo*2^17 + lo*lo where
// every product fits in 32 bits.
func (g *Game) squaresWide(values, m *gmw.Uint) (float64, error) {
	s := g.Session

	ge, err := s.Ge(values, m)
	if err != nil {
		return 0, err
	}
	above, err := s.Sub(values, m)
	if err != nil {
		return 0, err
	}
	below, err := s.Sub(m, values)
	if err != nil {
		return 0, err
	}
	d, err := s.Select(ge, above, below)
	if err != nil {
		return 0, err
	}
	lo := limb(s, d, 0, 16)
	hi := limb(s, d, 16, 16)

	terms := []struct {
		x, y *gmw.Uint
		exp  int
	}{
		{lo, lo, 0},
		{hi, lo, 17},
		{hi, hi, 32},
	}
	var sum float64
	for _, term := range terms {
		product, err := g.multiply(term.x, term.y, 16)
		if err != nil {
			return 0, err
		}
		part, err := g.AggregateSum64(product, g.ResultParty)
		if err != nil {
			return 0, err
		}
		sum += math.Ldexp(float64(part), term.exp)
	}
	return sum, nil
}

// Histogram counts the ages in the bins defined by the ascending
// bounds. Bin 0 holds ages below bounds[0], bin i holds ages in
// [bounds[i-1], bounds[i]), and the last bin holds ages at or above
// the last bound.
func (g *Game) Histogram(a, b Dataset, bounds []uint32) ([]uint32, error) {
	return g.HistogramField(a, b, FieldAge, bounds)
}

// HistogramField counts the values of the field f in the bins
// defined by the bounds. Only the bin counts are revealed to the
// result party.
func (g *Game) HistogramField(a, b Dataset, f Field, bounds []uint32) (
	[]uint32, error) {

	if err := CheckBounds(bounds); err != nil {
		return nil, err
	}
	values, err := g.combined(a, b, f)
	if err != nil {
		return nil, err
	}
	s := g.Session
	n := values.Len()

	below := make([]*gmw.Bit, len(bounds))
	for i, bound := range bounds {
		below[i], err = s.Lt(values, s.Const(n, bound))
		if err != nil {
			return nil, err
		}
	}

	bins := []*gmw.Bit{below[0]}
	for i := 1; i < len(bounds); i++ {
		bin, err := s.And(s.Not(below[i-1]), below[i])
		if err != nil {
			return nil, err
		}
		bins = append(bins, bin)
	}
	bins = append(bins, s.Not(below[len(below)-1]))

	one := s.Const(n, 1)
	zero := s.Zero(n)

	var result []uint32
	for i, bin := range bins {
		indicator, err := s.Select(bin, one, zero)
		if err != nil {
			return nil, err
		}
		count, err := g.AggregateSum(indicator, g.ResultParty)
		if err != nil {
			return nil, fmt.Errorf("histogram bin %d: %w", i, err)
		}
		result = append(result, count)
	}
	if !g.isResultParty() {
		return make([]uint32, len(result)), nil
	}
	g.debugf("histogram: %v\n", result)

	return result, nil
}

// CheckBounds verifies that the histogram bounds are non-empty and
// strictly ascending.
func CheckBounds(bounds []uint32) error {
	if len(bounds) == 0 {
		return fmt.Errorf("%w: no histogram bounds",
			ErrThresholdMisconfiguration)
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return fmt.Errorf("%w: histogram bounds not ascending: %v",
				ErrThresholdMisconfiguration, bounds)
		}
	}
	return nil
}

// GenderCount counts the rows whose combined gender bit is set.
func (g *Game) GenderCount(a, b Dataset) (uint32, error) {
	secA, secB, err := g.records(a, b)
	if err != nil {
		return 0, err
	}
	s := g.Session
	n := a.Len()

	gender := secA.Gender.Xor(secB.Gender)
	indicator, err := s.Select(gender, s.Const(n, 1), s.Zero(n))
	if err != nil {
		return 0, err
	}
	return g.AggregateSum(indicator, g.ResultParty)
}
