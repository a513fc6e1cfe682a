//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// More Efficient Oblivious Transfer and Extensions for Faster Secure
// Computation
//  - https://eprint.iacr.org/2013/552.pdf

/*

This implementation is derived from the EMP Toolkit's iknp.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/iknp.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Enquiries about further applications and development opportunities are welcome.

*/

package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

const (
	// K defines the IKNP security parameter; the number of IKNP base
	// OTs.
	K = 128

	// Chunk size. Must be multiple of 16 (K-bits).
	chunkSize = 2 * 1024

	// The maximum number of byte-rows in a chunk.
	chunkByteRows = chunkSize / K

	// The number of label rows in a chunk.
	chunkRows = chunkByteRows * 8
)

// IKNPSender implements the semi-honest correlated OT sender.
type IKNPSender struct {
	// Delta defines the correlation delta: b1 = b0 ⊕ Δ
	Delta Label
	io    IO
	g0    [K]cipher.Stream
}

// NewIKNPSender creates a new sender with a random delta. The sender
// runs the K base OTs as the base OT receiver.
func NewIKNPSender(base OT, io IO, r io.Reader) (*IKNPSender, error) {
	delta, err := NewLabel(r)
	if err != nil {
		return nil, err
	}
	s := &IKNPSender{
		Delta: delta,
		io:    io,
	}

	var flags [K]bool
	for i := 0; i < K; i++ {
		flags[i] = delta.Bit(i) == 1
	}

	var k0 [K]Label
	if err := base.Receive(flags[:], k0[:]); err != nil {
		return nil, err
	}
	for i := 0; i < K; i++ {
		s.g0[i], err = newPrg(k0[i])
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Send extends n correlated OTs. The function returns the b0
// labels. The b1 labels are b0[i] ⊕ s.Delta.
func (s *IKNPSender) Send(n int) ([]Label, error) {
	result := make([]Label, n)

	var t [chunkSize]byte

	// The receiver sends the columns u_i = G(k0_i) ⊕ G(k1_i) ⊕ r in
	// chunks of K byte-rows.
	for ofs := 0; ofs < n; {
		chunk, err := s.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 || len(chunk)%K != 0 || len(chunk) > chunkSize {
			return nil, fmt.Errorf("ot: invalid IKNP chunk size: %v",
				len(chunk))
		}
		byteRows := len(chunk) / K

		for i := 0; i < K; i++ {
			row := t[i*byteRows : (i+1)*byteRows]
			prg(s.g0[i], row)
			if s.Delta.Bit(i) == 1 {
				xorBytes(row, chunk[i*byteRows:])
			}
		}
		createLabels(result[ofs:], t[:], byteRows)

		ofs += byteRows * 8
	}
	return result, nil
}

// IKNPReceiver implements the semi-honest correlated OT receiver.
type IKNPReceiver struct {
	io IO
	g0 [K]cipher.Stream
	g1 [K]cipher.Stream
}

// NewIKNPReceiver creates a new receiver. The receiver runs the K
// base OTs as the base OT sender.
func NewIKNPReceiver(base OT, io IO, rand io.Reader) (*IKNPReceiver, error) {
	var wires [K]Wire
	for i := 0; i < K; i++ {
		l0, err := NewLabel(rand)
		if err != nil {
			return nil, err
		}
		l1, err := NewLabel(rand)
		if err != nil {
			return nil, err
		}
		wires[i] = Wire{
			L0: l0,
			L1: l1,
		}
	}
	if err := base.Send(wires[:]); err != nil {
		return nil, err
	}

	r := &IKNPReceiver{
		io: io,
	}
	var err error
	for i := 0; i < K; i++ {
		r.g0[i], err = newPrg(wires[i].L0)
		if err != nil {
			return nil, err
		}
		r.g1[i], err = newPrg(wires[i].L1)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Receive extends correlated OTs with the selection flags b. The
// returned labels implement the correlation: result[i] = b0[i] ⊕
// b[i]*Δ. The function returns an error if b and result have
// different lengths.
func (r *IKNPReceiver) Receive(b []bool, result []Label) error {
	if len(b) != len(result) {
		return fmt.Errorf("ot: %d flags, %d results", len(b), len(result))
	}
	bbuf := make([]byte, (len(b)+7)/8)
	for i, f := range b {
		if f {
			bbuf[i/8] |= 1 << (i % 8)
		}
	}

	var chunk, out [chunkSize]byte
	var tmp [chunkByteRows]byte

	for ofs := 0; ofs < len(b); {
		rows := chunkRows
		if avail := len(b) - ofs; rows > avail {
			rows = avail
		}
		byteRows := (rows + 7) / 8

		for i := 0; i < K; i++ {
			row := chunk[i*byteRows : (i+1)*byteRows]
			prg(r.g0[i], row)
			prg(r.g1[i], tmp[:byteRows])

			xorBytes(tmp[:byteRows], row)
			xorBytes(tmp[:byteRows], bbuf[ofs/8:])

			copy(out[i*byteRows:], tmp[:byteRows])
		}
		if err := r.io.SendData(out[:byteRows*K]); err != nil {
			return err
		}
		createLabels(result[ofs:], chunk[:], byteRows)

		ofs += rows
	}
	return r.io.Flush()
}

func newPrg(key Label) (cipher.Stream, error) {
	var ld LabelData
	block, err := aes.NewCipher(key.Bytes(&ld))
	if err != nil {
		return nil, err
	}
	var iv [16]byte
	return cipher.NewCTR(block, iv[:]), nil
}

func prg(c cipher.Stream, buf []byte) {
	// Clear buffer as it is shared between different caller's
	// iterations.
	for i := 0; i < len(buf); i++ {
		buf[i] = 0
	}
	c.XORKeyStream(buf, buf)
}

// createLabels transposes the K rows of w bytes in buf into the
// labels l. Label i holds the bit i of every row.
func createLabels(l []Label, buf []byte, w int) {
	end := w * 8
	if end > len(l) {
		end = len(l)
	}
	for i := 0; i < end; i++ {
		row := i / 8
		bit := i % 8
		for j := 0; j < K; j++ {
			v := uint((buf[j*w+row] >> bit) & 1)
			l[i].SetBit(j, v)
		}
	}
}

// xorBytes xors src into dst. The src must be at least as long as
// dst.
func xorBytes(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
