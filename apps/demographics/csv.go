//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/markkurossi/mpcstats/demographics"
	"github.com/montanaflynn/stats"
	"lukechampine.com/frand"
)

// CSV column names.
const (
	colAge    = "age"
	colGender = "gender"
	colWealth = "wealth"
	colID     = "id_"
)

// readDataset reads the share dataset from the CSV file.
func readDataset(file string) (demographics.Dataset, error) {
	f, err := os.Open(file)
	if err != nil {
		return demographics.Dataset{}, err
	}
	defer f.Close()

	return parseDataset(f, file)
}

func parseDataset(in io.Reader, name string) (demographics.Dataset, error) {
	var d demographics.Dataset

	r := csv.NewReader(in)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return d, fmt.Errorf("%s: header: %w", name, err)
	}
	columns := map[string]int{}
	for idx, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		switch col {
		case colAge, colGender, colWealth, colID:
			columns[col] = idx
		default:
			log.Printf("%s: ignoring unknown column '%s'\n", name, col)
		}
	}
	for _, col := range []string{colAge, colGender, colWealth} {
		if _, ok := columns[col]; !ok {
			return d, fmt.Errorf("%s: missing column '%s'", name, col)
		}
	}

	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d, err
		}
		age, err := strconv.ParseUint(record[columns[colAge]], 10, 32)
		if err != nil {
			return d, fmt.Errorf("%s:%d: invalid age: %w", name, line, err)
		}
		gender, err := strconv.ParseBool(record[columns[colGender]])
		if err != nil {
			return d, fmt.Errorf("%s:%d: invalid gender: %w", name, line, err)
		}
		wealth, err := strconv.ParseUint(record[columns[colWealth]], 10, 32)
		if err != nil {
			return d, fmt.Errorf("%s:%d: invalid wealth: %w", name, line, err)
		}
		d.Age = append(d.Age, uint32(age))
		d.Gender = append(d.Gender, gender)
		d.Wealth = append(d.Wealth, uint32(wealth))
	}
	return d, d.CheckShape()
}

// writeDataset writes the share dataset into the CSV file.
func writeDataset(file string, d demographics.Dataset) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := formatDataset(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatDataset(out io.Writer, d demographics.Dataset) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{colID, colAge, colGender, colWealth}); err != nil {
		return err
	}
	for i := 0; i < d.Len(); i++ {
		gender := "0"
		if d.Gender[i] {
			gender = "1"
		}
		err := w.Write([]string{
			strconv.Itoa(i),
			strconv.FormatUint(uint64(d.Age[i]), 10),
			gender,
			strconv.FormatUint(uint64(d.Wealth[i]), 10),
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// generate creates n random records and writes their shares into the
// files prefix_0.csv and prefix_1.csv.
func generate(prefix string, n int) error {
	records := make([]demographics.Record, n)
	var ages stats.Float64Data
	for i := range records {
		records[i] = demographics.Record{
			Age:    uint32(18 + frand.Intn(80)),
			Gender: frand.Intn(2) == 1,
			Wealth: uint32(frand.Intn(1000000)),
		}
		ages = append(ages, float64(records[i].Age))
	}
	a, b, err := demographics.Share(records, nil)
	if err != nil {
		return err
	}
	for i, d := range []demographics.Dataset{a, b} {
		file := fmt.Sprintf("%s_%d.csv", prefix, i)
		if err := writeDataset(file, d); err != nil {
			return err
		}
		fmt.Printf(" - wrote %s\n", file)
	}

	mean, _ := stats.Mean(ages)
	variance, _ := stats.SampleVariance(ages)
	median, _ := stats.Median(ages)
	fmt.Printf(" - plaintext age: mean=%.2f, variance=%.2f, median=%.0f\n",
		mean, variance, median)

	return nil
}
