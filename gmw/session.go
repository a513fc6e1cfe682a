//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"errors"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/mpcstats/p2p"
	"github.com/markkurossi/text/superscript"
	"lukechampine.com/frand"
)

// ErrProtocolDesync is returned when the parties disagree on the
// batch size or the round structure of the protocol. The session can
// not be used after it.
var ErrProtocolDesync = errors.New("gmw: protocol desync")

// Session implements one party's view of a two-party GMW session.
// A session is not safe for concurrent use; both parties must call
// the same sequence of operations with the same batch sizes.
type Session struct {
	role    Role
	conn    *p2p.Conn
	triples TripleSource
	rand    io.Reader
	stats   Stats

	// Verbose enables protocol traces on standard output.
	Verbose bool
}

// Stats contains session statistics.
type Stats struct {
	NonFreeGates uint64
	FreeGates    uint64
	Rounds       uint64
	Opens        uint64
	IO           p2p.IOStats
}

func (s Stats) String() string {
	return fmt.Sprintf("non-free=%d, free=%d, rounds=%d, opens=%d, xfer=%d",
		s.NonFreeGates, s.FreeGates, s.Rounds, s.Opens, s.IO.Sum())
}

// NewSession creates a new session for the role. The triple source
// provides the multiplication triples for AND gates.
func NewSession(role Role, conn *p2p.Conn, triples TripleSource) *Session {
	return &Session{
		role:    role,
		conn:    conn,
		triples: triples,
		rand:    frand.Reader,
	}
}

// Role returns the local party's role.
func (s *Session) Role() Role {
	return s.role
}

// SetRand sets the source of the local party's share and mask
// randomness. The source must be cryptographically secure and
// exclusive to this party.
func (s *Session) SetRand(r io.Reader) {
	s.rand = r
}

// Stats returns the session statistics.
func (s *Session) Stats() Stats {
	stats := s.stats
	stats.IO = s.conn.Stats.Snapshot()
	return stats
}

// Close closes the session's peer connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) tracef(format string, a ...interface{}) {
	if !s.Verbose {
		return
	}
	fmt.Printf("P%s: %s", superscript.Itoa(int(s.role)),
		fmt.Sprintf(format, a...))
}

// send sends the planes of a batch of n rows to the peer.
func (s *Session) send(n int, planes []*bitset.BitSet) error {
	if err := s.conn.SendUint32(n); err != nil {
		return err
	}
	if err := s.conn.SendUint32(len(planes)); err != nil {
		return err
	}
	for _, p := range planes {
		data, err := p.MarshalBinary()
		if err != nil {
			return err
		}
		if err := s.conn.SendData(data); err != nil {
			return err
		}
	}
	return s.conn.Flush()
}

// receive receives count planes of a batch of n rows from the peer.
func (s *Session) receive(n, count int) ([]*bitset.BitSet, error) {
	rn, err := s.conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	rcount, err := s.conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if rn != n || rcount != count {
		return nil, fmt.Errorf("%w: peer sent %d planes of %d rows, expected %d planes of %d rows",
			ErrProtocolDesync, rcount, rn, count, n)
	}
	result := make([]*bitset.BitSet, count)
	for i := range result {
		data, err := s.conn.ReceiveData()
		if err != nil {
			return nil, err
		}
		p := new(bitset.BitSet)
		if err := p.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		if int(p.Len()) != n {
			return nil, fmt.Errorf("%w: plane %d has %d rows, expected %d",
				ErrProtocolDesync, i, p.Len(), n)
		}
		result[i] = p
	}
	return result, nil
}

// exchange sends the local planes to the peer and returns the peer's
// planes. The initiator sends first and the responder receives first
// so the exchange never blocks on transport buffers.
func (s *Session) exchange(n int, planes []*bitset.BitSet) (
	[]*bitset.BitSet, error) {

	s.stats.Rounds++

	if s.role == Initiator {
		if err := s.send(n, planes); err != nil {
			return nil, err
		}
		return s.receive(n, len(planes))
	}
	peer, err := s.receive(n, len(planes))
	if err != nil {
		return nil, err
	}
	return peer, s.send(n, planes)
}

// exchangeData exchanges one binary blob with the peer in the same
// order as exchange.
func (s *Session) exchangeData(data []byte) ([]byte, error) {
	send := func() error {
		if err := s.conn.SendData(data); err != nil {
			return err
		}
		return s.conn.Flush()
	}
	if s.role == Initiator {
		if err := send(); err != nil {
			return nil, err
		}
		return s.conn.ReceiveData()
	}
	peer, err := s.conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	return peer, send()
}
