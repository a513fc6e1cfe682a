//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"strings"

	"github.com/markkurossi/mpcstats/demographics"
	"github.com/markkurossi/mpcstats/gmw"
	"github.com/markkurossi/mpcstats/p2p"
)

// hello holds the public parameters both parties must agree on
// before the protocol run.
type hello struct {
	role    gmw.Role
	result  gmw.Role
	field   demographics.Field
	rows    int
	options string
}

func (p *params) hello(rows int) hello {
	return hello{
		role:   p.role,
		result: p.result,
		field:  p.field,
		rows:   rows,
		options: fmt.Sprintf("metrics=%s;threshold=%d;bounds=%v;triples=%s",
			strings.Join(p.metrics, ","), p.threshold, p.bounds, p.triples),
	}
}

func (h hello) send(conn *p2p.Conn) error {
	if err := conn.SendByte(byte(h.role)); err != nil {
		return err
	}
	if err := conn.SendByte(byte(h.result)); err != nil {
		return err
	}
	if err := conn.SendUint16(int(h.field)); err != nil {
		return err
	}
	if err := conn.SendUint32(h.rows); err != nil {
		return err
	}
	if err := conn.SendString(h.options); err != nil {
		return err
	}
	return conn.Flush()
}

func receiveHello(conn *p2p.Conn) (hello, error) {
	var h hello

	role, err := conn.ReceiveByte()
	if err != nil {
		return h, err
	}
	result, err := conn.ReceiveByte()
	if err != nil {
		return h, err
	}
	field, err := conn.ReceiveUint16()
	if err != nil {
		return h, err
	}
	h.rows, err = conn.ReceiveUint32()
	if err != nil {
		return h, err
	}
	h.options, err = conn.ReceiveString()
	if err != nil {
		return h, err
	}
	h.role = gmw.Role(role)
	h.result = gmw.Role(result)
	h.field = demographics.Field(field)

	return h, nil
}

// check verifies the peer's parameters against the local ones.
func (h hello) check(peer hello) error {
	if peer.role != h.role.Peer() {
		return fmt.Errorf("%w: peer is %s, expected %s",
			demographics.ErrProtocolDesync, peer.role, h.role.Peer())
	}
	if peer.result != h.result {
		return fmt.Errorf("%w: peer result party is %s, expected %s",
			demographics.ErrProtocolDesync, peer.result, h.result)
	}
	if peer.field != h.field {
		return fmt.Errorf("%w: peer field is %s, expected %s",
			demographics.ErrProtocolDesync, peer.field, h.field)
	}
	if peer.rows != h.rows {
		return fmt.Errorf("%w: peer has %d rows, expected %d",
			demographics.ErrInvalidRecordShape, peer.rows, h.rows)
	}
	if peer.options != h.options {
		return fmt.Errorf("%w: peer options '%s', expected '%s'",
			demographics.ErrProtocolDesync, peer.options, h.options)
	}
	return nil
}

// handshake exchanges the public parameters with the peer. Both
// parties receive the peer's parameters in full before checking them
// so a mismatch fails on both sides.
func handshake(conn *p2p.Conn, p *params, rows int) error {
	local := p.hello(rows)

	var peer hello
	var err error

	if p.role == gmw.Initiator {
		err = local.send(conn)
		if err == nil {
			peer, err = receiveHello(conn)
		}
	} else {
		peer, err = receiveHello(conn)
		if err == nil {
			err = local.send(conn)
		}
	}
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	return local.check(peer)
}
