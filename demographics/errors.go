//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package demographics

import (
	"errors"

	"github.com/markkurossi/mpcstats/gmw"
)

var (
	// ErrInvalidRecordShape is returned when the field vectors of a
	// dataset, or the two datasets of a protocol run, have different
	// lengths.
	ErrInvalidRecordShape = errors.New("invalid record shape")

	// ErrProtocolDesync is returned when the parties disagree on the
	// batch size or the round structure of a reveal. It is fatal for
	// the protocol run.
	ErrProtocolDesync = gmw.ErrProtocolDesync

	// ErrThresholdMisconfiguration is returned when a threshold, a
	// histogram bin boundary, or a public mean is missing or
	// invalid.
	ErrThresholdMisconfiguration = errors.New("threshold misconfiguration")

	// ErrEmptyDataset is returned when a statistic has too few rows
	// to be defined.
	ErrEmptyDataset = errors.New("empty dataset")
)
