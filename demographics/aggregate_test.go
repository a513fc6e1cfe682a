//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package demographics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/markkurossi/mpcstats/gmw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregateAges(g *Game, a, b Dataset) (interface{}, error) {
	age, err := g.combined(a, b, FieldAge)
	if err != nil {
		return nil, err
	}
	return g.AggregateSum(age, g.ResultParty)
}

func TestAggregateSum(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	a := NewDataset(50)
	b := NewDataset(50)
	var expected uint32
	for i := 0; i < a.Len(); i++ {
		a.Age[i] = rnd.Uint32()
		b.Age[i] = rnd.Uint32()
		expected += a.Age[i] + b.Age[i]
	}

	results := play(t, a, b, aggregateAges)
	assert.Equal(t, expected, results[0])
	assert.Equal(t, uint32(0), results[1])

	results = playWith(t, a, b, func(g *Game) {
		g.ResultParty = gmw.Responder
	}, aggregateAges)
	assert.Equal(t, uint32(0), results[0])
	assert.Equal(t, expected, results[1])
}

func TestAggregateSumEmpty(t *testing.T) {
	results := play(t, NewDataset(0), NewDataset(0),
		func(g *Game, a, b Dataset) (interface{}, error) {
			sum, err := g.AggregateSum(g.Session.Zero(0), g.ResultParty)
			if err != nil {
				return nil, err
			}
			return []uint64{uint64(sum), g.Session.Stats().Opens}, nil
		})
	for _, r := range results {
		assert.Equal(t, []uint64{0, 0}, r)
	}
}

func TestAggregateMasksFresh(t *testing.T) {
	records := ageRecords(10, 20, 30, 40)
	a, b := shares(t, records)

	results := play(t, a, b, func(g *Game, a, b Dataset) (interface{}, error) {
		var revealed [][]uint32
		g.observe = func(label string, values []uint32) {
			revealed = append(revealed, values)
		}
		age, err := g.combined(a, b, FieldAge)
		if err != nil {
			return nil, err
		}
		var sums []uint32
		for i := 0; i < 2; i++ {
			sum, err := g.AggregateSum(age, g.ResultParty)
			if err != nil {
				return nil, err
			}
			sums = append(sums, sum)
		}
		return [][][]uint32{revealed, {sums}}, nil
	})

	got := results[0].([][][]uint32)
	revealed := got[0]
	require.Len(t, revealed, 2)
	assert.NotEqual(t, revealed[0], revealed[1],
		"masked values repeated across aggregations")
	assert.Equal(t, []uint32{100, 100}, got[1][0])

	// The responder is not the result party and observes nothing.
	assert.Empty(t, results[1].([][][]uint32)[0])
}

func TestMultiply(t *testing.T) {
	xs := []uint32{3, 0, 0, 1 << 16, 0xffffffff, 12345}
	ys := []uint32{5, 0xdeadbeef, 0, 1 << 16, 0xffffffff, 0}

	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 26; i++ {
		xs = append(xs, rnd.Uint32())
		ys = append(ys, rnd.Uint32())
	}

	a := NewDataset(len(xs))
	a.Age = xs
	b := NewDataset(len(ys))
	b.Age = ys

	results := play(t, a, b, func(g *Game, a, b Dataset) (interface{}, error) {
		secA, secB, err := g.records(a, b)
		if err != nil {
			return nil, err
		}
		product, err := g.Multiply(secA.Age, secB.Age)
		if err != nil {
			return nil, err
		}
		return g.Session.OpenToParty(product, gmw.Initiator)
	})

	got := results[0].([]uint32)
	for i := range xs {
		assert.Equal(t, xs[i]*ys[i], got[i], "%d*%d", xs[i], ys[i])
	}
	assert.Equal(t, uint32(15), got[0])
	assert.Equal(t, uint32(0), got[3])
	assert.Nil(t, results[1])
}

func TestLimbWidth(t *testing.T) {
	for _, test := range []struct {
		n, w int
	}{
		{1, 32},
		{2, 31},
		{5000, 19},
		{65537, 16},
		{65538, 15},
	} {
		assert.Equal(t, test.w, limbWidth(test.n), "rows %d", test.n)
	}
}

func TestAggregateSum64(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))

	a := NewDataset(100)
	b := NewDataset(100)
	var expected uint64
	for i := 0; i < a.Len(); i++ {
		a.Wealth[i] = rnd.Uint32()
		b.Wealth[i] = rnd.Uint32()
		expected += uint64(a.Wealth[i] + b.Wealth[i])
	}
	require.Greater(t, expected, uint64(math.MaxUint32))

	results := play(t, a, b, func(g *Game, a, b Dataset) (interface{}, error) {
		wealth, err := g.combined(a, b, FieldWealth)
		if err != nil {
			return nil, err
		}
		return g.AggregateSum64(wealth, g.ResultParty)
	})
	assert.Equal(t, expected, results[0])
	assert.Equal(t, uint64(0), results[1])
}

func TestAggregateSeededMasks(t *testing.T) {
	records := ageRecords(10, 20, 30, 40)
	a, b := shares(t, records)

	observe := func(seed int64) ([]uint32, uint32) {
		var revealed []uint32
		results := playWith(t, a, b, func(g *Game) {
			role := int64(g.Session.Role())
			g.Session.SetRand(rand.New(rand.NewSource(seed + role)))
			g.observe = func(label string, values []uint32) {
				revealed = values
			}
		}, aggregateAges)
		return revealed, results[0].(uint32)
	}

	r0, sum0 := observe(10)
	r1, sum1 := observe(10)
	r2, sum2 := observe(20)

	assert.Equal(t, r0, r1, "same mask seed, different masked values")
	assert.NotEqual(t, r0, r2, "different mask seeds, same masked values")
	assert.Equal(t, []uint32{100, 100, 100}, []uint32{sum0, sum1, sum2})
}
