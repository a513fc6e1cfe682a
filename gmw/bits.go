//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
)

// Width specifies the bit width of secure integers.
const Width = 32

// Bits holds one party's shares of a batch of Width-bit values as
// little-endian bit planes: plane i holds bit i of every row of the
// batch. Planes are never modified after construction so Bits values
// can share them.
type Bits struct {
	n      int
	planes [Width]*bitset.BitSet
}

// NewBits creates all-zero bits for a batch of n rows.
func NewBits(n int) Bits {
	b := Bits{
		n: n,
	}
	for i := range b.planes {
		b.planes[i] = newPlane(n)
	}
	return b
}

// BitsFromUint32 decomposes the values into bit planes.
func BitsFromUint32(values []uint32) Bits {
	b := NewBits(len(values))
	for row, v := range values {
		for i := 0; i < Width; i++ {
			if v&(1<<i) != 0 {
				b.planes[i].Set(uint(row))
			}
		}
	}
	return b
}

// Len returns the batch size.
func (b Bits) Len() int {
	return b.n
}

// Uint32s composes the bit planes back into values.
func (b Bits) Uint32s() []uint32 {
	result := make([]uint32, b.n)
	for i := 0; i < Width; i++ {
		p := b.planes[i]
		for row, ok := p.NextSet(0); ok; row, ok = p.NextSet(row + 1) {
			result[row] |= 1 << i
		}
	}
	return result
}

// SelectBit returns the plane of bit i. It panics if i is not in
// [0...Width[.
func (b Bits) SelectBit(i int) *bitset.BitSet {
	return b.planes[i]
}

// AssignBit returns a copy of b where the plane of bit i is replaced
// with p.
func (b Bits) AssignBit(i int, p *bitset.BitSet) Bits {
	if int(p.Len()) != b.n {
		panic(fmt.Sprintf("gmw: plane length %d, expected %d", p.Len(), b.n))
	}
	b.planes[i] = p
	return b
}

// ShiftLeft shifts the values left by one bit. A zero plane is
// shifted in at bit 0 and the most significant plane is dropped.
func (b Bits) ShiftLeft() Bits {
	result := Bits{
		n: b.n,
	}
	result.planes[0] = newPlane(b.n)
	copy(result.planes[1:], b.planes[:Width-1])
	return result
}

// Xor returns the bitwise XOR of b and o. It panics if the batch
// sizes differ.
func (b Bits) Xor(o Bits) Bits {
	b.checkLen(o.n)
	result := Bits{
		n: b.n,
	}
	for i := range result.planes {
		result.planes[i] = b.planes[i].SymmetricDifference(o.planes[i])
	}
	return result
}

// Row returns a single-row batch holding the row i of b.
func (b Bits) Row(i int) Bits {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("gmw: row %d out of range [0...%d[", i, b.n))
	}
	result := NewBits(1)
	for j := range b.planes {
		if b.planes[j].Test(uint(i)) {
			result.planes[j].Set(0)
		}
	}
	return result
}

func (b Bits) checkLen(n int) {
	if b.n != n {
		panic(fmt.Sprintf("gmw: batch size mismatch: %d != %d", b.n, n))
	}
}

func newPlane(n int) *bitset.BitSet {
	return bitset.New(uint(n))
}

func onesPlane(n int) *bitset.BitSet {
	return bitset.New(uint(n)).Complement()
}

// planeFromBytes creates a plane from the n first bits of buf in
// little-endian bit order.
func planeFromBytes(buf []byte, n int) *bitset.BitSet {
	p := newPlane(n)
	for i := 0; i < n; i++ {
		if buf[i>>3]&(1<<(i&7)) != 0 {
			p.Set(uint(i))
		}
	}
	return p
}

func randomPlane(r io.Reader, n int) (*bitset.BitSet, error) {
	buf := make([]byte, (n+7)/8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return planeFromBytes(buf, n), nil
}

func randomBits(r io.Reader, n int) (Bits, error) {
	b := Bits{
		n: n,
	}
	for i := range b.planes {
		p, err := randomPlane(r, n)
		if err != nil {
			return b, err
		}
		b.planes[i] = p
	}
	return b, nil
}

// extract returns the n bits of p starting from off as a new plane.
func extract(p *bitset.BitSet, off, n int) *bitset.BitSet {
	result := newPlane(n)
	for i, ok := p.NextSet(uint(off)); ok && i < uint(off+n); i, ok =
		p.NextSet(i + 1) {
		result.Set(i - uint(off))
	}
	return result
}

func planeBools(p *bitset.BitSet, n int) []bool {
	result := make([]bool, n)
	for i := range result {
		result[i] = p.Test(uint(i))
	}
	return result
}

func boolsPlane(values []bool) *bitset.BitSet {
	p := newPlane(len(values))
	for i, v := range values {
		if v {
			p.Set(uint(i))
		}
	}
	return p
}
