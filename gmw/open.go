//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gmw

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/zeebo/blake3"
)

var bo = binary.BigEndian

// OpenToParty reveals the values of u to the party p. The peer of p
// sends its shares and p reconstructs the values. The party p gets
// the values and the other party gets nil.
func (s *Session) OpenToParty(u *Uint, p Role) ([]uint32, error) {
	s.stats.Opens++
	s.stats.Rounds++

	if s.role != p {
		if err := s.send(u.Len(), u.bits.planes[:]); err != nil {
			return nil, err
		}
		return nil, nil
	}
	planes, err := s.receive(u.Len(), Width)
	if err != nil {
		return nil, err
	}
	peer := Bits{
		n: u.Len(),
	}
	copy(peer.planes[:], planes)
	s.tracef("open %s to %s\n", u, p)

	return u.bits.Xor(peer).Uint32s(), nil
}

// OpenToAll reveals the values of u to both parties.
func (s *Session) OpenToAll(u *Uint) ([]uint32, error) {
	s.stats.Opens++

	planes, err := s.exchange(u.Len(), u.bits.planes[:])
	if err != nil {
		return nil, err
	}
	peer := Bits{
		n: u.Len(),
	}
	copy(peer.planes[:], planes)

	return u.bits.Xor(peer).Uint32s(), nil
}

// OpenBitsToParty reveals the bits of b to the party p. The other
// party gets nil.
func (s *Session) OpenBitsToParty(b *Bit, p Role) ([]bool, error) {
	s.stats.Opens++
	s.stats.Rounds++

	if s.role != p {
		if err := s.send(b.n, []*bitset.BitSet{b.share}); err != nil {
			return nil, err
		}
		return nil, nil
	}
	planes, err := s.receive(b.n, 1)
	if err != nil {
		return nil, err
	}
	return planeBools(b.share.SymmetricDifference(planes[0]), b.n), nil
}

// OpenBitsToAll reveals the bits of b to both parties. After the
// open, the parties exchange a digest of the revealed bits and fail
// with ErrProtocolDesync unless both parties revealed the same
// vector. On success, both parties hold the identical canonical
// vector.
func (s *Session) OpenBitsToAll(b *Bit) ([]bool, error) {
	s.stats.Opens++

	planes, err := s.exchange(b.n, []*bitset.BitSet{b.share})
	if err != nil {
		return nil, err
	}
	result := planeBools(b.share.SymmetricDifference(planes[0]), b.n)

	digest := bitsDigest(result)
	peer, err := s.exchangeData(digest[:])
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(digest[:], peer) {
		return nil, fmt.Errorf("%w: revealed bits differ: %x != %x",
			ErrProtocolDesync, digest[:8], peer[:min(len(peer), 8)])
	}
	return result, nil
}

func bitsDigest(values []bool) [32]byte {
	buf := make([]byte, 8+(len(values)+7)/8)
	bo.PutUint64(buf, uint64(len(values)))
	for i, v := range values {
		if v {
			buf[8+i/8] |= 1 << (i % 8)
		}
	}
	return blake3.Sum256(buf)
}
