//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package demographics

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// Validation holds the result of input validation.
type Validation struct {
	// A and B are the filtered initiator and responder datasets.
	A Dataset
	B Dataset

	// Rows holds the indices of the accepted rows.
	Rows *roaring.Bitmap

	// Count is the number of accepted rows.
	Count int
}

// Validate accepts the rows whose combined age is below the
// threshold. The validity bit of every row is revealed to both
// parties, the ages are not. Both parties filter their datasets with
// the same canonical validity vector so the filtered datasets stay
// aligned. The argument datasets are not modified.
func (g *Game) Validate(a, b Dataset, threshold uint32) (*Validation, error) {
	if threshold == 0 {
		return nil, fmt.Errorf("%w: validation threshold not set",
			ErrThresholdMisconfiguration)
	}
	age, err := g.combined(a, b, FieldAge)
	if err != nil {
		return nil, err
	}
	s := g.Session

	valid, err := s.Lt(age, s.Const(age.Len(), threshold))
	if err != nil {
		return nil, err
	}
	bits, err := s.OpenBitsToAll(valid)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	rows := roaring.New()
	for i, ok := range bits {
		if ok {
			rows.Add(uint32(i))
		}
	}
	count := int(rows.GetCardinality())
	g.debugf("validation: %d/%d rows valid\n", count, len(bits))

	filteredA, err := a.Filter(rows)
	if err != nil {
		return nil, err
	}
	filteredB, err := b.Filter(rows)
	if err != nil {
		return nil, err
	}
	return &Validation{
		A:     filteredA,
		B:     filteredB,
		Rows:  rows,
		Count: count,
	}, nil
}
