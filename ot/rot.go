//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"fmt"
	"io"
)

const (
	otBatchSize = 8
)

var _ OT = &ROT{}

// ROT implements random OT over the IKNP extension as the OT
// interface. The base OT runs only K transfers per direction when
// the ROT is initialized; all later transfers are extended with
// symmetric crypto. Unlike chosen-message OT, Send does not take the
// sender's labels as input but fills the wires with random labels.
//
// One ROT instance can be initialized both as sender and receiver
// over the same connection. The peer must initialize the opposite
// roles in the same order.
type ROT struct {
	base  OT
	r     io.Reader
	io    IO
	iknpS *IKNPSender
	iknpR *IKNPReceiver
}

// NewROT creates an IKNP-based random OT with the base OT for the
// initial transfers.
func NewROT(base OT, r io.Reader) *ROT {
	return &ROT{
		base: base,
		r:    r,
	}
}

// InitSender implements OT.InitSender. The IKNP sender is the
// receiver of the base OTs.
func (rot *ROT) InitSender(io IO) error {
	if rot.iknpS != nil {
		return fmt.Errorf("ot: already initialized as sender")
	}
	if err := rot.base.InitReceiver(io); err != nil {
		return err
	}
	s, err := NewIKNPSender(rot.base, io, rot.r)
	if err != nil {
		return err
	}
	rot.io = io
	rot.iknpS = s

	return nil
}

// InitReceiver implements OT.InitReceiver. The IKNP receiver is the
// sender of the base OTs.
func (rot *ROT) InitReceiver(io IO) error {
	if rot.iknpR != nil {
		return fmt.Errorf("ot: already initialized as receiver")
	}
	if err := rot.base.InitSender(io); err != nil {
		return err
	}
	r, err := NewIKNPReceiver(rot.base, io, rot.r)
	if err != nil {
		return err
	}
	rot.io = io
	rot.iknpR = r

	return nil
}

// Send implements OT.Send. It sets the wires to random label pairs
// of which the receiver learns one.
func (rot *ROT) Send(wires []Wire) error {
	if rot.iknpS == nil {
		return fmt.Errorf("ot: not initialized as sender")
	}
	data, err := rot.iknpS.Send(len(wires))
	if err != nil {
		return err
	}
	seed, err := NewLabel(rot.r)
	if err != nil {
		return err
	}
	if err := SendLabel(rot.io, seed); err != nil {
		return err
	}
	if err := rot.io.Flush(); err != nil {
		return err
	}
	mitccrh := NewMITCCRH(seed, otBatchSize)

	pad := make([]Label, 2*otBatchSize)
	for i := 0; i < len(wires); i += otBatchSize {
		end := i + otBatchSize
		if end > len(wires) {
			end = len(wires)
		}
		for j := i; j < end; j++ {
			pad[2*(j-i)] = data[j]
			pad[2*(j-i)+1] = data[j]
			pad[2*(j-i)+1].Xor(rot.iknpS.Delta)
		}
		mitccrh.Hash(pad, otBatchSize, 2)
		for j := i; j < end; j++ {
			wires[j].L0 = pad[2*(j-i)]
			wires[j].L1 = pad[2*(j-i)+1]
		}
	}
	return nil
}

// Receive implements OT.Receive.
func (rot *ROT) Receive(flags []bool, result []Label) error {
	if rot.iknpR == nil {
		return fmt.Errorf("ot: not initialized as receiver")
	}
	if len(result) < len(flags) {
		return fmt.Errorf("ot: result too short: %d < %d",
			len(result), len(flags))
	}
	result = result[:len(flags)]
	if err := rot.iknpR.Receive(flags, result); err != nil {
		return err
	}
	seed, err := ReceiveLabel(rot.io)
	if err != nil {
		return err
	}
	mitccrh := NewMITCCRH(seed, otBatchSize)

	pad := make([]Label, otBatchSize)
	for i := 0; i < len(flags); i += otBatchSize {
		copy(pad, result[i:])
		mitccrh.Hash(pad, otBatchSize, 1)
		copy(result[i:], pad)
	}
	return nil
}
