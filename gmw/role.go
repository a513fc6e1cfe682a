//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package gmw implements the two-party GMW protocol over XOR-shared
// bit planes. It provides the secure integer and bit values the
// demographic statistics protocols are built from.
package gmw

import (
	"fmt"
)

// Role identifies a party of the two-party protocol.
type Role int

// Protocol roles. The Initiator is party 0 and the Responder is
// party 1.
const (
	Initiator Role = iota
	Responder
)

// ParseRole parses the party number into a role.
func ParseRole(party int) (Role, error) {
	switch party {
	case 0:
		return Initiator, nil
	case 1:
		return Responder, nil
	default:
		return 0, fmt.Errorf("invalid party %d: expected 0 or 1", party)
	}
}

// Peer returns the role of the other party.
func (r Role) Peer() Role {
	if r == Initiator {
		return Responder
	}
	return Initiator
}

func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	default:
		return fmt.Sprintf("{Role %d}", int(r))
	}
}
