//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"encoding/binary"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/markkurossi/mpcstats/ot"
)

var (
	bo = binary.BigEndian

	_ ot.IO = &Conn{}
)

// RetryDelay specifies how long Dial waits between connection
// attempts.
var RetryDelay = 5 * time.Second

// Listen listens at addr and returns the first accepted peer
// connection.
func Listen(addr string) (*Conn, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	log.Printf("p2p: listening for peer at %s\n", listener.Addr())

	nc, err := listener.Accept()
	if err != nil {
		return nil, err
	}
	log.Printf("p2p: peer connected from %s\n", nc.RemoteAddr())

	return NewConn(nc), nil
}

// Dial connects to the peer at addr. Failed attempts are retried
// every RetryDelay until attempts have been used; attempts <= 0
// retries forever.
func Dial(addr string, attempts int) (*Conn, error) {
	for i := 0; ; i++ {
		nc, err := net.Dial("tcp", addr)
		if err == nil {
			log.Printf("p2p: connected to %s\n", addr)
			return NewConn(nc), nil
		}
		if attempts > 0 && i+1 >= attempts {
			return nil, fmt.Errorf("p2p: connect to %s failed: %w", addr, err)
		}
		log.Printf("p2p: connect to %s failed, retrying in %s\n",
			addr, RetryDelay)
		<-time.After(RetryDelay)
	}
}
