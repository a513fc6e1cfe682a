//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/markkurossi/mpcstats/demographics"
	"github.com/markkurossi/mpcstats/gmw"
	"github.com/markkurossi/mpcstats/p2p"
)

const blockSize = 64 * 1024

func receiverTestIO(addr string) error {
	conn, err := p2p.Listen(addr)
	if err != nil {
		return err
	}
	start := time.Now()
	for {
		_, err := conn.ReceiveData()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("Received: %v in %s\n",
		demographics.FileSize(conn.Stats.Sum()), elapsed)
	return nil
}

func senderTestIO(addr string, size int64) error {
	conn, err := p2p.Dial(addr, 10)
	if err != nil {
		return err
	}
	block := make([]byte, blockSize)

	var sent int64
	for sent < size {
		if err := conn.SendData(block); err != nil {
			return err
		}
		sent += int64(len(block))
	}
	if err := conn.Close(); err != nil {
		return err
	}
	fmt.Printf("Sent: %v\n", demographics.FileSize(conn.Stats.Sum()))
	return nil
}

// testTriples generates count OT triples and verifies them at the
// initiator. The responder sends its triple shares in cleartext so
// the triples must not be used for anything else.
func testTriples(role gmw.Role, addr string, count int) error {
	var conn *p2p.Conn
	var err error
	if role == gmw.Initiator {
		conn, err = p2p.Listen(addr)
	} else {
		conn, err = p2p.Dial(addr, 10)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	timing := demographics.NewTiming(gmw.Stats{
		IO: conn.Stats.Snapshot(),
	})
	source := gmw.NewOTTriples(role, conn, nil)

	t, err := source.Triples(count)
	if err != nil {
		return err
	}
	timing.Sample("Generate", gmw.Stats{
		NonFreeGates: uint64(count),
		IO:           conn.Stats.Snapshot(),
	})

	planes := []*bitset.BitSet{t.A, t.B, t.C}
	if role == gmw.Responder {
		for _, p := range planes {
			data, err := p.MarshalBinary()
			if err != nil {
				return err
			}
			if err := conn.SendData(data); err != nil {
				return err
			}
		}
		return conn.Flush()
	}

	for i, p := range planes {
		data, err := conn.ReceiveData()
		if err != nil {
			return err
		}
		peer := new(bitset.BitSet)
		if err := peer.UnmarshalBinary(data); err != nil {
			return err
		}
		planes[i] = p.SymmetricDifference(peer)
	}
	ab := planes[0].Intersection(planes[1])
	if !ab.Equal(planes[2]) {
		return fmt.Errorf("triple verification failed")
	}
	timing.Sample("Verify", gmw.Stats{
		NonFreeGates: uint64(count),
		IO:           conn.Stats.Snapshot(),
	})
	timing.Print(os.Stdout)
	fmt.Printf("%d triples verified\n", count)

	return nil
}
