//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"io"

	"github.com/bits-and-blooms/bitset"
)

// Input secret shares the owner's values. The owner passes its
// private values; the other party passes a placeholder slice of the
// same length whose contents are ignored. The owner keeps v^r and
// sends the random r to the peer.
func (s *Session) Input(owner Role, values []uint32) (*Uint, error) {
	n := len(values)
	s.stats.Rounds++

	if owner == s.role {
		mask, err := randomBits(s.rand, n)
		if err != nil {
			return nil, err
		}
		if err := s.send(n, mask.planes[:]); err != nil {
			return nil, err
		}
		s.tracef("input %d rows\n", n)
		s.stats.FreeGates += uint64(Width * n)
		return NewUint(BitsFromUint32(values).Xor(mask)), nil
	}

	planes, err := s.receive(n, Width)
	if err != nil {
		return nil, err
	}
	bits := Bits{
		n: n,
	}
	copy(bits.planes[:], planes)
	s.tracef("input %d rows from %s\n", n, owner)

	return NewUint(bits), nil
}

// InputBits secret shares the owner's bit values. The arguments
// follow Input.
func (s *Session) InputBits(owner Role, values []bool) (*Bit, error) {
	n := len(values)
	s.stats.Rounds++

	if owner == s.role {
		mask, err := randomPlane(s.rand, n)
		if err != nil {
			return nil, err
		}
		if err := s.send(n, []*bitset.BitSet{mask}); err != nil {
			return nil, err
		}
		s.stats.FreeGates += uint64(n)
		return &Bit{
			n:     n,
			share: boolsPlane(values).SymmetricDifference(mask),
		}, nil
	}

	planes, err := s.receive(n, 1)
	if err != nil {
		return nil, err
	}
	return &Bit{
		n:     n,
		share: planes[0],
	}, nil
}

// Const creates a batch of n rows holding the public value v. The
// initiator holds the value as its share and the responder holds
// zero.
func (s *Session) Const(n int, v uint32) *Uint {
	if s.role != Initiator || v == 0 {
		return NewUint(NewBits(n))
	}
	bits := NewBits(n)
	for i := 0; i < Width; i++ {
		if v&(1<<i) != 0 {
			bits.planes[i] = onesPlane(n)
		}
	}
	return NewUint(bits)
}

// Zero creates a batch of n zero values.
func (s *Session) Zero(n int) *Uint {
	return NewUint(NewBits(n))
}

func (s *Session) constPlane(n int, v bool) *bitset.BitSet {
	if v && s.role == Initiator {
		return onesPlane(n)
	}
	return newPlane(n)
}

// Rand32 returns n random 32-bit values from the session's random
// source. The values are local to the calling party.
func (s *Session) Rand32(n int) ([]uint32, error) {
	buf := make([]byte, 4*n)
	if _, err := io.ReadFull(s.rand, buf); err != nil {
		return nil, err
	}
	result := make([]uint32, n)
	for i := range result {
		result[i] = bo.Uint32(buf[4*i:])
	}
	return result, nil
}
