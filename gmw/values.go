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

// Uint is a secret-shared batch of Width-bit unsigned integers. It
// holds the local party's XOR shares.
type Uint struct {
	bits Bits
}

// NewUint wraps the local share bits into a secure integer batch.
func NewUint(bits Bits) *Uint {
	return &Uint{
		bits: bits,
	}
}

// Len returns the batch size.
func (u *Uint) Len() int {
	return u.bits.n
}

// Share returns the local party's share bits.
func (u *Uint) Share() Bits {
	return u.bits
}

// Bit returns the bit i of every row as a secure bit batch.
func (u *Uint) Bit(i int) *Bit {
	return &Bit{
		n:     u.bits.n,
		share: u.bits.SelectBit(i),
	}
}

// SetBit returns a copy of u where bit i of every row is replaced
// with b.
func (u *Uint) SetBit(i int, b *Bit) *Uint {
	return &Uint{
		bits: u.bits.AssignBit(i, b.share),
	}
}

// ShiftLeft returns u shifted left by one bit.
func (u *Uint) ShiftLeft() *Uint {
	return &Uint{
		bits: u.bits.ShiftLeft(),
	}
}

// Xor returns the bitwise XOR of u and o. XOR of shares is local and
// needs no communication. It panics if the batch sizes differ.
func (u *Uint) Xor(o *Uint) *Uint {
	return &Uint{
		bits: u.bits.Xor(o.bits),
	}
}

// Row returns the row i of the batch as a single-row batch.
func (u *Uint) Row(i int) *Uint {
	return &Uint{
		bits: u.bits.Row(i),
	}
}

func (u *Uint) String() string {
	return fmt.Sprintf("uint%d[%d]", Width, u.bits.n)
}

// Bit is a secret-shared batch of bits.
type Bit struct {
	n     int
	share *bitset.BitSet
}

// Len returns the batch size.
func (b *Bit) Len() int {
	return b.n
}

// Share returns the local party's share plane.
func (b *Bit) Share() *bitset.BitSet {
	return b.share
}

// Xor returns the XOR of b and o. It panics if the batch sizes differ.
func (b *Bit) Xor(o *Bit) *Bit {
	if b.n != o.n {
		panic(fmt.Sprintf("gmw: batch size mismatch: %d != %d", b.n, o.n))
	}
	return &Bit{
		n:     b.n,
		share: b.share.SymmetricDifference(o.share),
	}
}

func (b *Bit) String() string {
	return fmt.Sprintf("bit[%d]", b.n)
}
