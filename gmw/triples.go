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
	"github.com/markkurossi/mpcstats/ot"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20"
	"lukechampine.com/frand"
)

var (
	_ TripleSource = &Dealer{}
	_ TripleSource = &OTTriples{}
)

// Triple holds one party's shares of a batch of multiplication
// triples: for every row, (A0^A1)&(B0^B1) == C0^C1.
type Triple struct {
	A *bitset.BitSet
	B *bitset.BitSet
	C *bitset.BitSet
}

// TripleSource provides multiplication triples for AND gates.
type TripleSource interface {
	// Triples returns the local shares of n triples.
	Triples(n int) (Triple, error)
}

// Dealer generates triples from a seed shared by both parties. Both
// parties expand the seed into the same ChaCha20 keystream and take
// their own halves of each triple. Since both parties know the
// seed, the dealer does not protect the inputs and it must only be
// used for testing and debugging.
type Dealer struct {
	role   Role
	stream *chacha20.Cipher
}

// NewDealer creates a new dealer for the role from the shared seed.
func NewDealer(role Role, seed []byte) (*Dealer, error) {
	key := blake3.Sum256(seed)
	nonce := make([]byte, chacha20.NonceSize)

	stream, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return nil, err
	}
	return &Dealer{
		role:   role,
		stream: stream,
	}, nil
}

func (d *Dealer) plane(n int) *bitset.BitSet {
	buf := make([]byte, (n+7)/8)
	d.stream.XORKeyStream(buf, buf)
	return planeFromBytes(buf, n)
}

// Triples implements TripleSource.Triples.
func (d *Dealer) Triples(n int) (Triple, error) {
	a0 := d.plane(n)
	a1 := d.plane(n)
	b0 := d.plane(n)
	b1 := d.plane(n)
	c1 := d.plane(n)

	if d.role == Responder {
		return Triple{
			A: a1,
			B: b1,
			C: c1,
		}, nil
	}
	c0 := a0.SymmetricDifference(a1).Intersection(b0.SymmetricDifference(b1))
	c0.InPlaceSymmetricDifference(c1)

	return Triple{
		A: a0,
		B: b0,
		C: c0,
	}, nil
}

// OTTriples generates triples with two random oblivious transfers
// per triple. In the first transfer the initiator is the sender and
// in the second the responder. For a transfer of random bits (x0, x1)
// with choice bit b, the receiver learns x0^(b&(x0^x1)) so the cross
// terms a0&b1 and a1&b0 become XOR shared between the parties. The
// transfers are extended with IKNP from 128 base OTs per direction.
type OTTriples struct {
	role        Role
	ot          ot.OT
	io          ot.IO
	rand        io.Reader
	initialized bool
}

// NewOTTriples creates a new OT based triple source. The rand
// argument provides the local randomness; if nil, frand.Reader is
// used.
func NewOTTriples(role Role, conn ot.IO, r io.Reader) *OTTriples {
	if r == nil {
		r = frand.Reader
	}
	return &OTTriples{
		role: role,
		ot:   ot.NewROT(ot.NewCO(r), r),
		io:   conn,
		rand: r,
	}
}

func (t *OTTriples) init() error {
	if t.initialized {
		return nil
	}
	var err error
	if t.role == Initiator {
		err = t.ot.InitSender(t.io)
		if err == nil {
			err = t.ot.InitReceiver(t.io)
		}
	} else {
		err = t.ot.InitReceiver(t.io)
		if err == nil {
			err = t.ot.InitSender(t.io)
		}
	}
	if err != nil {
		return fmt.Errorf("ot init: %w", err)
	}
	t.initialized = true
	return nil
}

// send runs the sender side of n random bit transfers. It returns
// the planes x0 and x0^x1.
func (t *OTTriples) send(n int) (*bitset.BitSet, *bitset.BitSet, error) {
	wires := make([]ot.Wire, n)
	if err := t.ot.Send(wires); err != nil {
		return nil, nil, err
	}
	x0 := newPlane(n)
	delta := newPlane(n)
	for i, w := range wires {
		if w.L0.Bit(0) == 1 {
			x0.Set(uint(i))
		}
		if w.L0.Bit(0) != w.L1.Bit(0) {
			delta.Set(uint(i))
		}
	}
	return x0, delta, nil
}

// receive runs the receiver side of n random bit transfers with
// random choice bits. It returns the choice bits and the received
// bits.
func (t *OTTriples) receive(n int) (*bitset.BitSet, *bitset.BitSet, error) {
	choices, err := randomPlane(t.rand, n)
	if err != nil {
		return nil, nil, err
	}
	flags := planeBools(choices, n)
	labels := make([]ot.Label, n)
	if err := t.ot.Receive(flags, labels); err != nil {
		return nil, nil, err
	}
	got := newPlane(n)
	for i, l := range labels {
		if l.Bit(0) == 1 {
			got.Set(uint(i))
		}
	}
	return choices, got, nil
}

// Triples implements TripleSource.Triples.
func (t *OTTriples) Triples(n int) (Triple, error) {
	if n == 0 {
		return Triple{
			A: newPlane(0),
			B: newPlane(0),
			C: newPlane(0),
		}, nil
	}
	if err := t.init(); err != nil {
		return Triple{}, err
	}

	var sent, a, b, got *bitset.BitSet
	var err error

	if t.role == Initiator {
		sent, a, err = t.send(n)
		if err == nil {
			b, got, err = t.receive(n)
		}
	} else {
		b, got, err = t.receive(n)
		if err == nil {
			sent, a, err = t.send(n)
		}
	}
	if err != nil {
		return Triple{}, fmt.Errorf("ot triples: %w", err)
	}

	c := a.Intersection(b)
	c.InPlaceSymmetricDifference(sent)
	c.InPlaceSymmetricDifference(got)

	return Triple{
		A: a,
		B: b,
		C: c,
	}, nil
}
