//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// and computes the AND of the plane pairs xs[i], ys[i] with Beaver
// triples. All pairs are evaluated in one communication round.
func (s *Session) and(n int, xs, ys []*bitset.BitSet) (
	[]*bitset.BitSet, error) {

	k := len(xs)
	if k != len(ys) {
		return nil, fmt.Errorf("gmw: and: %d != %d planes", k, len(ys))
	}
	if n == 0 || k == 0 {
		result := make([]*bitset.BitSet, k)
		for i := range result {
			result[i] = newPlane(n)
		}
		return result, nil
	}

	t, err := s.triples.Triples(k * n)
	if err != nil {
		return nil, err
	}

	as := make([]*bitset.BitSet, k)
	bs := make([]*bitset.BitSet, k)
	cs := make([]*bitset.BitSet, k)
	masked := make([]*bitset.BitSet, 2*k)

	for i := 0; i < k; i++ {
		as[i] = extract(t.A, i*n, n)
		bs[i] = extract(t.B, i*n, n)
		cs[i] = extract(t.C, i*n, n)

		masked[i] = xs[i].SymmetricDifference(as[i])
		masked[k+i] = ys[i].SymmetricDifference(bs[i])
	}

	peer, err := s.exchange(n, masked)
	if err != nil {
		return nil, err
	}

	// x&y = d&e ^ d&b ^ e&a ^ c where d=x^a and e=y^b are public.
	result := make([]*bitset.BitSet, k)
	for i := 0; i < k; i++ {
		d := masked[i].SymmetricDifference(peer[i])
		e := masked[k+i].SymmetricDifference(peer[k+i])

		z := cs[i].SymmetricDifference(d.Intersection(bs[i]))
		z.InPlaceSymmetricDifference(e.Intersection(as[i]))
		if s.role == Initiator {
			z.InPlaceSymmetricDifference(d.Intersection(e))
		}
		result[i] = z
	}
	s.stats.NonFreeGates += uint64(k * n)
	s.stats.FreeGates += uint64(6 * k * n)

	return result, nil
}

func (s *Session) not(b Bits) Bits {
	if s.role != Initiator {
		return b
	}
	result := Bits{
		n: b.n,
	}
	for i := range result.planes {
		result.planes[i] = b.planes[i].Complement()
	}
	s.stats.FreeGates += uint64(Width * b.n)
	return result
}

// ripple adds x and y with the carry-in plane cin using a
// ripple-carry adder with one AND gate per bit. If carryOut is
// false, the carry out of the most significant bit is not computed
// and the returned carry plane is nil.
func (s *Session) ripple(x, y Bits, cin *bitset.BitSet, carryOut bool) (
	Bits, *bitset.BitSet, error) {

	if x.n != y.n {
		return Bits{}, nil, fmt.Errorf("%w: operand sizes %d != %d",
			ErrProtocolDesync, x.n, y.n)
	}
	n := x.n
	sum := Bits{
		n: n,
	}
	c := cin
	for i := 0; i < Width; i++ {
		xc := x.planes[i].SymmetricDifference(c)
		yc := y.planes[i].SymmetricDifference(c)
		sum.planes[i] = xc.SymmetricDifference(y.planes[i])
		s.stats.FreeGates += uint64(3 * n)

		if i == Width-1 && !carryOut {
			return sum, nil, nil
		}
		t, err := s.and(n, []*bitset.BitSet{xc}, []*bitset.BitSet{yc})
		if err != nil {
			return Bits{}, nil, err
		}
		c = c.SymmetricDifference(t[0])
	}
	return sum, c, nil
}

// Add returns x+y mod 2^Width.
func (s *Session) Add(x, y *Uint) (*Uint, error) {
	sum, _, err := s.ripple(x.bits, y.bits, newPlane(x.Len()), false)
	if err != nil {
		return nil, err
	}
	return NewUint(sum), nil
}

// Sub returns x-y mod 2^Width.
func (s *Session) Sub(x, y *Uint) (*Uint, error) {
	diff, _, err := s.ripple(x.bits, s.not(y.bits),
		s.constPlane(x.Len(), true), false)
	if err != nil {
		return nil, err
	}
	return NewUint(diff), nil
}

// Ge returns x>=y for every row. The comparison is the carry out of
// x+^y+1.
func (s *Session) Ge(x, y *Uint) (*Bit, error) {
	_, c, err := s.ripple(x.bits, s.not(y.bits),
		s.constPlane(x.Len(), true), true)
	if err != nil {
		return nil, err
	}
	return &Bit{
		n:     x.Len(),
		share: c,
	}, nil
}

// Lt returns x<y for every row.
func (s *Session) Lt(x, y *Uint) (*Bit, error) {
	ge, err := s.Ge(x, y)
	if err != nil {
		return nil, err
	}
	return s.Not(ge), nil
}

// Select returns ifTrue for rows where cond is set and ifFalse for
// others. All Width bits are selected in one round.
func (s *Session) Select(cond *Bit, ifTrue, ifFalse *Uint) (*Uint, error) {
	n := cond.n
	if ifTrue.Len() != n || ifFalse.Len() != n {
		return nil, fmt.Errorf("%w: select sizes %d/%d/%d",
			ErrProtocolDesync, n, ifTrue.Len(), ifFalse.Len())
	}
	conds := make([]*bitset.BitSet, Width)
	diffs := make([]*bitset.BitSet, Width)
	for i := 0; i < Width; i++ {
		conds[i] = cond.share
		diffs[i] = ifTrue.bits.planes[i].SymmetricDifference(
			ifFalse.bits.planes[i])
	}
	t, err := s.and(n, conds, diffs)
	if err != nil {
		return nil, err
	}
	result := Bits{
		n: n,
	}
	for i := 0; i < Width; i++ {
		result.planes[i] = ifFalse.bits.planes[i].SymmetricDifference(t[i])
	}
	s.stats.FreeGates += uint64(2 * Width * n)

	return NewUint(result), nil
}

// And returns a&b.
func (s *Session) And(a, b *Bit) (*Bit, error) {
	if a.n != b.n {
		return nil, fmt.Errorf("%w: and sizes %d != %d",
			ErrProtocolDesync, a.n, b.n)
	}
	t, err := s.and(a.n, []*bitset.BitSet{a.share}, []*bitset.BitSet{b.share})
	if err != nil {
		return nil, err
	}
	return &Bit{
		n:     a.n,
		share: t[0],
	}, nil
}

// Or returns a|b.
func (s *Session) Or(a, b *Bit) (*Bit, error) {
	ab, err := s.And(a, b)
	if err != nil {
		return nil, err
	}
	return a.Xor(b).Xor(ab), nil
}

// Not returns ^b.
func (s *Session) Not(b *Bit) *Bit {
	if s.role != Initiator {
		return b
	}
	s.stats.FreeGates += uint64(b.n)
	return &Bit{
		n:     b.n,
		share: b.share.Complement(),
	}
}
