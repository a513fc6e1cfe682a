//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot_test

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/mpcstats/ot"
	"github.com/markkurossi/mpcstats/p2p"
)

func TestROT(t *testing.T) {
	for _, size := range []int{0, 5, 300} {
		c0, c1 := p2p.Pipe()

		flags := make([]bool, size)
		for i := range flags {
			flags[i] = i%2 == 0
		}
		labels := make([]ot.Label, size)
		done := make(chan error)

		go func() {
			receiver := ot.NewROT(ot.NewCO(nil), rand.Reader)
			err := receiver.InitReceiver(c1)
			if err == nil {
				err = receiver.Receive(flags, labels)
			}
			done <- err
		}()

		sender := ot.NewROT(ot.NewCO(nil), rand.Reader)
		if err := sender.InitSender(c0); err != nil {
			t.Fatalf("InitSender: %v", err)
		}
		wires := make([]ot.Wire, size)
		if err := sender.Send(wires); err != nil {
			t.Fatalf("Send: %v", err)
		}
		if err := <-done; err != nil {
			t.Fatalf("receiver failed: %v", err)
		}
		for i, w := range wires {
			expected := w.L0
			if flags[i] {
				expected = w.L1
			}
			if !labels[i].Equal(expected) {
				t.Errorf("size %d: label %d mismatch %v %v", size, i,
					labels[i], w)
			}
			if w.L0.Equal(w.L1) {
				t.Errorf("size %d: wire %d has equal labels", size, i)
			}
		}
	}
}

func TestROTNotInitialized(t *testing.T) {
	rot := ot.NewROT(ot.NewCO(nil), rand.Reader)
	if err := rot.Send(make([]ot.Wire, 1)); err == nil {
		t.Errorf("Send succeeded without InitSender")
	}
	if err := rot.Receive(make([]bool, 1), make([]ot.Label, 1)); err == nil {
		t.Errorf("Receive succeeded without InitReceiver")
	}
}
