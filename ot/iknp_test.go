//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestLabelBits(t *testing.T) {
	var l Label
	for _, i := range []int{0, 1, 63, 64, 100, 127} {
		l.SetBit(i, 1)
		if l.Bit(i) != 1 {
			t.Errorf("bit %d not set: %v", i, l)
		}
	}
	if l.D1 != 0x8000000000000003 {
		t.Errorf("D1=%x", l.D1)
	}
	if l.D0 != 1|1<<36|1<<63 {
		t.Errorf("D0=%x", l.D0)
	}
	l.SetBit(64, 0)
	if l.Bit(64) != 0 || l.Bit(100) != 1 {
		t.Errorf("clear bit 64: %v", l)
	}
}

func TestMITCCRH(t *testing.T) {
	var s Label
	mitccrh := NewMITCCRH(s, otBatchSize)

	blks := make([]Label, 2*otBatchSize)
	mitccrh.Hash(blks, otBatchSize, 2)

	// The first key is zero so H(0) is AES-128 of the zero block
	// under the zero key.
	expected, err := hex.DecodeString("66e94bd4ef8a2c3b884cfa59ca342b2e")
	if err != nil {
		t.Fatal(err)
	}
	var ld LabelData
	for j := 0; j < 2; j++ {
		if !bytes.Equal(expected, blks[j].Bytes(&ld)) {
			t.Errorf("block %d: %x != %x", j, ld, expected)
		}
	}
	for i := 1; i < otBatchSize; i++ {
		if blks[2*i].Equal(blks[0]) {
			t.Errorf("key %d hashes like key 0", i)
		}
		if !blks[2*i].Equal(blks[2*i+1]) {
			t.Errorf("key %d: same input hashes differently", i)
		}
	}
}
