//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package demographics implements secure demographic statistics over
// a dataset that is additively secret shared between two parties.
// The statistics are revealed only in aggregate form and only to the
// result party.
package demographics

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/markkurossi/mpcstats/gmw"
)

var bo = binary.BigEndian

// Field selects a numeric field of the records.
type Field int

// Numeric fields.
const (
	FieldAge Field = iota
	FieldWealth
)

var fieldNames = map[Field]string{
	FieldAge:    "age",
	FieldWealth: "wealth",
}

func (f Field) String() string {
	name, ok := fieldNames[f]
	if ok {
		return name
	}
	return fmt.Sprintf("{Field %d}", int(f))
}

// wide reports whether the field values are summed in 64 bits.
func (f Field) wide() bool {
	return f == FieldWealth
}

// ParseField parses the field name.
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field '%s'", name)
}

// Game runs the demographic statistics protocols over a two-party
// session. Both parties must call the same sequence of methods with
// datasets of the same length. Each party passes its own dataset in
// its own role's position and a placeholder from NewDataset in the
// peer's position.
type Game struct {
	Session *gmw.Session

	// ResultParty is the party that learns the statistics. The other
	// party gets zero values.
	ResultParty gmw.Role

	// Verbose enables progress output.
	Verbose bool

	observe func(label string, values []uint32)
}

// NewGame creates a new game for the session. The initiator is the
// default result party.
func NewGame(s *gmw.Session) *Game {
	return &Game{
		Session:     s,
		ResultParty: gmw.Initiator,
	}
}

func (g *Game) isResultParty() bool {
	return g.Session.Role() == g.ResultParty
}

func (g *Game) debugf(format string, a ...interface{}) {
	if g.Verbose {
		fmt.Printf(" - "+format, a...)
	}
}

// records creates the secure records of both datasets. The shapes are
// checked before any secure operation.
func (g *Game) records(a, b Dataset) (*SecRecord, *SecRecord, error) {
	if err := checkShapes(a, b); err != nil {
		return nil, nil, err
	}
	secA, err := NewSecRecord(g.Session, a, gmw.Initiator)
	if err != nil {
		return nil, nil, err
	}
	secB, err := NewSecRecord(g.Session, b, gmw.Responder)
	if err != nil {
		return nil, nil, err
	}
	return secA, secB, nil
}

// combined returns the combined secure values of the field f.
func (g *Game) combined(a, b Dataset, f Field) (*gmw.Uint, error) {
	secA, secB, err := g.records(a, b)
	if err != nil {
		return nil, err
	}
	return g.Session.Add(secA.Field(f), secB.Field(f))
}
