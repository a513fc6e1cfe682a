//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package demographics

import (
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring"
	"github.com/markkurossi/mpcstats/gmw"
	"lukechampine.com/frand"
)

// Record holds one person's demographic values.
type Record struct {
	Age    uint32
	Gender bool
	Wealth uint32
}

func (r Record) String() string {
	return fmt.Sprintf("age=%d, gender=%v, wealth=%d", r.Age, r.Gender, r.Wealth)
}

// Dataset holds one party's local shares of a sequence of records as
// field vectors. Row i of both parties' datasets describes the same
// person. The age and wealth shares are additive modulo 2^32 and the
// gender shares are XOR shares.
type Dataset struct {
	Age    []uint32
	Gender []bool
	Wealth []uint32
}

// NewDataset creates an all-zero dataset of n rows. It is used as the
// placeholder for the peer's dataset in protocol runs.
func NewDataset(n int) Dataset {
	return Dataset{
		Age:    make([]uint32, n),
		Gender: make([]bool, n),
		Wealth: make([]uint32, n),
	}
}

// Len returns the number of rows in the dataset.
func (d Dataset) Len() int {
	return len(d.Age)
}

// CheckShape verifies that all field vectors have the same length.
func (d Dataset) CheckShape() error {
	if len(d.Gender) != len(d.Age) || len(d.Wealth) != len(d.Age) {
		return fmt.Errorf("%w: age=%d, gender=%d, wealth=%d",
			ErrInvalidRecordShape, len(d.Age), len(d.Gender), len(d.Wealth))
	}
	return nil
}

// Filter returns a new dataset holding the rows in the argument set
// in their original relative order. The receiver is not modified. It
// returns ErrInvalidRecordShape if the set holds rows beyond the
// dataset.
func (d Dataset) Filter(rows *roaring.Bitmap) (Dataset, error) {
	if !rows.IsEmpty() && int(rows.Maximum()) >= d.Len() {
		return Dataset{}, fmt.Errorf("%w: row %d out of range [0,%d)",
			ErrInvalidRecordShape, rows.Maximum(), d.Len())
	}
	n := int(rows.GetCardinality())
	result := Dataset{
		Age:    make([]uint32, 0, n),
		Gender: make([]bool, 0, n),
		Wealth: make([]uint32, 0, n),
	}
	it := rows.Iterator()
	for it.HasNext() {
		row := int(it.Next())
		result.Age = append(result.Age, d.Age[row])
		result.Gender = append(result.Gender, d.Gender[row])
		result.Wealth = append(result.Wealth, d.Wealth[row])
	}
	return result, nil
}

// Field returns the values of the numeric field f.
func (d Dataset) Field(f Field) []uint32 {
	if f == FieldWealth {
		return d.Wealth
	}
	return d.Age
}

// Share splits the records into two share datasets. The rand
// argument provides the share randomness; if nil, frand.Reader is
// used.
func Share(records []Record, rand io.Reader) (Dataset, Dataset, error) {
	if rand == nil {
		rand = frand.Reader
	}
	a := NewDataset(len(records))
	b := NewDataset(len(records))

	var buf [9]byte
	for i, r := range records {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return a, b, err
		}
		a.Age[i] = bo.Uint32(buf[0:])
		a.Wealth[i] = bo.Uint32(buf[4:])
		a.Gender[i] = buf[8]&1 != 0

		b.Age[i] = r.Age - a.Age[i]
		b.Wealth[i] = r.Wealth - a.Wealth[i]
		b.Gender[i] = r.Gender != a.Gender[i]
	}
	return a, b, nil
}

// Combine reconstructs the records from two share datasets.
func Combine(a, b Dataset) ([]Record, error) {
	if err := checkShapes(a, b); err != nil {
		return nil, err
	}
	result := make([]Record, a.Len())
	for i := range result {
		result[i] = Record{
			Age:    a.Age[i] + b.Age[i],
			Gender: a.Gender[i] != b.Gender[i],
			Wealth: a.Wealth[i] + b.Wealth[i],
		}
	}
	return result, nil
}

func checkShapes(a, b Dataset) error {
	if err := a.CheckShape(); err != nil {
		return err
	}
	if err := b.CheckShape(); err != nil {
		return err
	}
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: datasets have %d and %d rows",
			ErrInvalidRecordShape, a.Len(), b.Len())
	}
	return nil
}

// SecRecord holds the secure values of one party's dataset.
type SecRecord struct {
	Age    *gmw.Uint
	Gender *gmw.Bit
	Wealth *gmw.Uint
}

// NewSecRecord creates the secure values for the dataset owned by
// owner. The owner passes its local shares and the other party
// passes a placeholder dataset of the same length.
func NewSecRecord(s *gmw.Session, d Dataset, owner gmw.Role) (
	*SecRecord, error) {

	if err := d.CheckShape(); err != nil {
		return nil, err
	}
	age, err := s.Input(owner, d.Age)
	if err != nil {
		return nil, err
	}
	gender, err := s.InputBits(owner, d.Gender)
	if err != nil {
		return nil, err
	}
	wealth, err := s.Input(owner, d.Wealth)
	if err != nil {
		return nil, err
	}
	return &SecRecord{
		Age:    age,
		Gender: gender,
		Wealth: wealth,
	}, nil
}

// Field returns the secure values of the numeric field f.
func (r *SecRecord) Field(f Field) *gmw.Uint {
	if f == FieldWealth {
		return r.Wealth
	}
	return r.Age
}
