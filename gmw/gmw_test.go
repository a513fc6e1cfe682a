//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"errors"
	"io"
	"math/rand"
	"sync"
	"testing"

	"github.com/markkurossi/mpcstats/p2p"
)

type result struct {
	val interface{}
	err error
}

// run runs the function f as both parties and returns their results.
func run(t *testing.T, f func(s *Session) (interface{}, error)) [2]result {
	c0, c1 := p2p.Pipe()
	return runConns(t, c0, c1, f)
}

// runConns runs f as both parties over the connections c0 and c1.
func runConns(t *testing.T, c0, c1 *p2p.Conn,
	f func(s *Session) (interface{}, error)) [2]result {

	var results [2]result
	var wg sync.WaitGroup

	for i, conn := range []*p2p.Conn{c0, c1} {
		wg.Add(1)
		go func(role Role, conn *p2p.Conn) {
			defer wg.Done()
			dealer, err := NewDealer(role, []byte(t.Name()))
			if err != nil {
				results[role].err = err
				return
			}
			val, err := f(NewSession(role, conn, dealer))
			results[role] = result{
				val: val,
				err: err,
			}
		}(Role(i), conn)
	}
	wg.Wait()

	return results
}

// runOK runs f as both parties and fails the test on errors.
func runOK(t *testing.T, f func(s *Session) (interface{}, error)) [2]interface{} {
	results := run(t, f)
	for i, r := range results {
		if r.err != nil {
			t.Fatalf("%s: %v", Role(i), r.err)
		}
	}
	return [2]interface{}{results[0].val, results[1].val}
}

// inputs shares xs from the initiator and ys from the responder.
func inputs(s *Session, xs, ys []uint32) (*Uint, *Uint, error) {
	x, err := s.Input(Initiator, xs)
	if err != nil {
		return nil, nil, err
	}
	y, err := s.Input(Responder, ys)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func testValues(n int) ([]uint32, []uint32) {
	xs := []uint32{0, 1, 0xffffffff, 0x80000000, 7, 42, 0xffffffff}
	ys := []uint32{0, 0xffffffff, 1, 0x80000000, 7, 41, 0xffffffff}

	rnd := rand.New(rand.NewSource(42))
	for len(xs) < n {
		xs = append(xs, rnd.Uint32())
		ys = append(ys, rnd.Uint32())
	}
	return xs, ys
}

func TestArithmetic(t *testing.T) {
	xs, ys := testValues(64)

	results := runOK(t, func(s *Session) (interface{}, error) {
		x, y, err := inputs(s, xs, ys)
		if err != nil {
			return nil, err
		}
		sum, err := s.Add(x, y)
		if err != nil {
			return nil, err
		}
		diff, err := s.Sub(x, y)
		if err != nil {
			return nil, err
		}
		sums, err := s.OpenToParty(sum, Initiator)
		if err != nil {
			return nil, err
		}
		diffs, err := s.OpenToParty(diff, Initiator)
		if err != nil {
			return nil, err
		}
		return [][]uint32{sums, diffs}, nil
	})

	got := results[0].([][]uint32)
	for i := range xs {
		if got[0][i] != xs[i]+ys[i] {
			t.Errorf("%d: %d+%d=%d, expected %d",
				i, xs[i], ys[i], got[0][i], xs[i]+ys[i])
		}
		if got[1][i] != xs[i]-ys[i] {
			t.Errorf("%d: %d-%d=%d, expected %d",
				i, xs[i], ys[i], got[1][i], xs[i]-ys[i])
		}
	}
	if peer := results[1].([][]uint32); peer[0] != nil || peer[1] != nil {
		t.Errorf("responder learned the values: %v", peer)
	}
}

func TestCompare(t *testing.T) {
	xs, ys := testValues(64)

	results := runOK(t, func(s *Session) (interface{}, error) {
		x, y, err := inputs(s, xs, ys)
		if err != nil {
			return nil, err
		}
		lt, err := s.Lt(x, y)
		if err != nil {
			return nil, err
		}
		ge, err := s.Ge(x, y)
		if err != nil {
			return nil, err
		}
		lts, err := s.OpenBitsToParty(lt, Responder)
		if err != nil {
			return nil, err
		}
		ges, err := s.OpenBitsToParty(ge, Responder)
		if err != nil {
			return nil, err
		}
		return [][]bool{lts, ges}, nil
	})

	got := results[1].([][]bool)
	for i := range xs {
		if got[0][i] != (xs[i] < ys[i]) {
			t.Errorf("%d: %d<%d=%v", i, xs[i], ys[i], got[0][i])
		}
		if got[1][i] != (xs[i] >= ys[i]) {
			t.Errorf("%d: %d>=%d=%v", i, xs[i], ys[i], got[1][i])
		}
	}
}

func TestSelect(t *testing.T) {
	xs, ys := testValues(32)
	conds := make([]bool, len(xs))
	for i := range conds {
		conds[i] = i%3 == 0
	}

	results := runOK(t, func(s *Session) (interface{}, error) {
		x, y, err := inputs(s, xs, ys)
		if err != nil {
			return nil, err
		}
		placeholder := make([]bool, len(conds))
		if s.Role() == Responder {
			placeholder = conds
		}
		c, err := s.InputBits(Responder, placeholder)
		if err != nil {
			return nil, err
		}
		sel, err := s.Select(c, x, y)
		if err != nil {
			return nil, err
		}
		return s.OpenToAll(sel)
	})

	for role, r := range results {
		got := r.([]uint32)
		for i := range xs {
			expected := ys[i]
			if conds[i] {
				expected = xs[i]
			}
			if got[i] != expected {
				t.Errorf("%s: %d: got %d, expected %d",
					Role(role), i, got[i], expected)
			}
		}
	}
}

func TestBitOps(t *testing.T) {
	as := []bool{false, false, true, true}
	bs := []bool{false, true, false, true}

	results := runOK(t, func(s *Session) (interface{}, error) {
		a, err := s.InputBits(Initiator, as)
		if err != nil {
			return nil, err
		}
		b, err := s.InputBits(Responder, bs)
		if err != nil {
			return nil, err
		}
		and, err := s.And(a, b)
		if err != nil {
			return nil, err
		}
		or, err := s.Or(a, b)
		if err != nil {
			return nil, err
		}
		ands, err := s.OpenBitsToAll(and)
		if err != nil {
			return nil, err
		}
		ors, err := s.OpenBitsToAll(or)
		if err != nil {
			return nil, err
		}
		nots, err := s.OpenBitsToAll(s.Not(a))
		if err != nil {
			return nil, err
		}
		xors, err := s.OpenBitsToAll(a.Xor(b))
		if err != nil {
			return nil, err
		}
		return [][]bool{ands, ors, nots, xors}, nil
	})

	for role, r := range results {
		got := r.([][]bool)
		for i := range as {
			if got[0][i] != (as[i] && bs[i]) {
				t.Errorf("%s: %v&%v=%v", Role(role), as[i], bs[i], got[0][i])
			}
			if got[1][i] != (as[i] || bs[i]) {
				t.Errorf("%s: %v|%v=%v", Role(role), as[i], bs[i], got[1][i])
			}
			if got[2][i] != !as[i] {
				t.Errorf("%s: !%v=%v", Role(role), as[i], got[2][i])
			}
			if got[3][i] != (as[i] != bs[i]) {
				t.Errorf("%s: %v^%v=%v", Role(role), as[i], bs[i], got[3][i])
			}
		}
	}
}

func TestConst(t *testing.T) {
	results := runOK(t, func(s *Session) (interface{}, error) {
		c := s.Const(3, 0xdeadbeef)
		x, err := s.Input(Responder, []uint32{1, 2, 3})
		if err != nil {
			return nil, err
		}
		sum, err := s.Add(c, x)
		if err != nil {
			return nil, err
		}
		return s.OpenToAll(sum)
	})
	expected := []uint32{0xdeadbeef + 1, 0xdeadbeef + 2, 0xdeadbeef + 3}
	for role, r := range results {
		got := r.([]uint32)
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("%s: %d: got %x, expected %x",
					Role(role), i, got[i], expected[i])
			}
		}
	}
}

func TestEmptyBatch(t *testing.T) {
	results := runOK(t, func(s *Session) (interface{}, error) {
		x, y, err := inputs(s, nil, nil)
		if err != nil {
			return nil, err
		}
		sum, err := s.Add(x, y)
		if err != nil {
			return nil, err
		}
		return s.OpenToAll(sum)
	})
	for role, r := range results {
		if got := r.([]uint32); len(got) != 0 {
			t.Errorf("%s: got %v, expected empty", Role(role), got)
		}
	}
}

func TestInputDesync(t *testing.T) {
	results := run(t, func(s *Session) (interface{}, error) {
		values := make([]uint32, 5)
		if s.Role() == Responder {
			values = values[:4]
		}
		return s.Input(Initiator, values)
	})
	if results[0].err != nil {
		t.Fatalf("initiator: %v", results[0].err)
	}
	if !errors.Is(results[1].err, ErrProtocolDesync) {
		t.Errorf("responder: got %v, expected %v",
			results[1].err, ErrProtocolDesync)
	}
}

func TestOpenDesync(t *testing.T) {
	results := run(t, func(s *Session) (interface{}, error) {
		n := 3
		if s.Role() == Initiator {
			n = 2
		}
		return s.OpenToParty(s.Zero(n), Initiator)
	})
	if !errors.Is(results[0].err, ErrProtocolDesync) {
		t.Errorf("initiator: got %v, expected %v",
			results[0].err, ErrProtocolDesync)
	}
	if results[1].err != nil {
		t.Errorf("responder: %v", results[1].err)
	}
}

func TestStats(t *testing.T) {
	results := runOK(t, func(s *Session) (interface{}, error) {
		x, y, err := inputs(s, []uint32{1, 2}, []uint32{3, 4})
		if err != nil {
			return nil, err
		}
		if _, err := s.Add(x, y); err != nil {
			return nil, err
		}
		return s.Stats(), nil
	})
	for role, r := range results {
		stats := r.(Stats)
		// The adder skips the carry out of the most significant bit.
		if stats.NonFreeGates != 2*(Width-1) {
			t.Errorf("%s: non-free gates %d, expected %d",
				Role(role), stats.NonFreeGates, 2*(Width-1))
		}
		if stats.IO.Sum() == 0 {
			t.Errorf("%s: no I/O recorded", Role(role))
		}
	}
}

func TestSetBit(t *testing.T) {
	xs, ys := testValues(32)

	results := runOK(t, func(s *Session) (interface{}, error) {
		x, _, err := inputs(s, xs, ys)
		if err != nil {
			return nil, err
		}
		// Bits 8-15 of x into bits 0-7, and bit 0 of x into bit 31.
		y := s.Zero(x.Len())
		for i := 0; i < 8; i++ {
			y = y.SetBit(i, x.Bit(i+8))
		}
		y = y.SetBit(31, x.Bit(0))

		return s.OpenToParty(y, Initiator)
	})

	got := results[0].([]uint32)
	for i, x := range xs {
		expected := (x>>8)&0xff | x<<31
		if got[i] != expected {
			t.Errorf("%d: got %08x, expected %08x", i, got[i], expected)
		}
	}
}

// flipPlane wraps a transport and flips the lowest row of every
// single-plane message written to it.
type flipPlane struct {
	io.Reader
	w io.Writer
}

func (f *flipPlane) Write(data []byte) (int, error) {
	if len(data) > 8 && bo.Uint32(data[4:8]) == 1 {
		data = append([]byte(nil), data...)
		data[len(data)-1] ^= 1
	}
	return f.w.Write(data)
}

type readWriter struct {
	io.Reader
	io.Writer
}

// tamperedPipe creates connected connections where the responder's
// single-plane messages are modified in transit.
func tamperedPipe() (*p2p.Conn, *p2p.Conn) {
	r0, w1 := io.Pipe()
	r1, w0 := io.Pipe()

	return p2p.NewConn(&readWriter{r0, w0}),
		p2p.NewConn(&flipPlane{Reader: r1, w: w1})
}

func TestOpenBitsTampered(t *testing.T) {
	values := []bool{true, false, true, true, false}

	c0, c1 := tamperedPipe()
	results := runConns(t, c0, c1, func(s *Session) (interface{}, error) {
		in := values
		if s.Role() != Initiator {
			in = make([]bool, len(values))
		}
		b, err := s.InputBits(Initiator, in)
		if err != nil {
			return nil, err
		}
		return s.OpenBitsToAll(b)
	})
	for i, r := range results {
		if !errors.Is(r.err, ErrProtocolDesync) {
			t.Errorf("%s: got error %v, expected %v",
				Role(i), r.err, ErrProtocolDesync)
		}
		if bits, _ := r.val.([]bool); bits != nil {
			t.Errorf("%s: got bits %v", Role(i), bits)
		}
	}

	// The same exchange over an intact transport agrees.
	ok := runOK(t, func(s *Session) (interface{}, error) {
		in := values
		if s.Role() != Initiator {
			in = make([]bool, len(values))
		}
		b, err := s.InputBits(Initiator, in)
		if err != nil {
			return nil, err
		}
		return s.OpenBitsToAll(b)
	})
	for i := range ok {
		got := ok[i].([]bool)
		for j := range values {
			if got[j] != values[j] {
				t.Errorf("%s: bit %d: got %v", Role(i), j, got[j])
			}
		}
	}
}
