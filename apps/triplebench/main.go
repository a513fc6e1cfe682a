//
// main.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"flag"
	"log"

	"github.com/markkurossi/mpcstats/gmw"
	"github.com/pkg/profile"
)

func main() {
	party := flag.Int("party", 0, "party number: 0 listens, 1 connects")
	addr := flag.String("addr", "localhost:8080", "peer address")
	cpuprofile := flag.Bool("profile", false, "enable CPU profiling")
	testIO := flag.Int64("test-io", 0, "test I/O performance with `bytes`")
	triples := flag.Int("triples", 0, "generate and verify `count` OT triples")
	flag.Parse()

	log.SetFlags(0)

	role, err := gmw.ParseRole(*party)
	if err != nil {
		log.Fatal(err)
	}
	if *cpuprofile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	if *testIO > 0 {
		if role == gmw.Initiator {
			err = receiverTestIO(*addr)
		} else {
			err = senderTestIO(*addr, *testIO)
		}
		if err != nil {
			log.Fatal(err)
		}
	}
	if *triples > 0 {
		if err := testTriples(role, *addr, *triples); err != nil {
			log.Fatal(err)
		}
	}
}
