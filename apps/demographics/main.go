//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/markkurossi/mpcstats/demographics"
	"github.com/markkurossi/mpcstats/gmw"
	"github.com/pkg/profile"
)

type params struct {
	role      gmw.Role
	result    gmw.Role
	addr      string
	input     string
	output    string
	metrics   []string
	threshold uint32
	bounds    []uint32
	field     demographics.Field
	triples   string
	seed      []byte
	insecure  bool
	verbose   bool
}

func main() {
	fParty := flag.Int("party", 0, "party number: 0 listens, 1 connects")
	fResult := flag.Int("result", 0, "result party number")
	fAddr := flag.String("addr", "localhost:8080", "peer address")
	fInput := flag.String("i", "", "input CSV file, output prefix with -gen")
	fOutput := flag.String("o", "", "result output file")
	fMetrics := flag.String("metrics", "validate,average,variance,histogram",
		"comma-separated list of metrics: validate, average, sequential, variance, histogram, gender")
	fThreshold := flag.Uint("threshold", 0, "validation threshold")
	fBounds := flag.String("bounds", "", "comma-separated histogram bin bounds")
	fField := flag.String("field", "age", "statistics field: age or wealth")
	fTriples := flag.String("triples", "ot",
		"multiplication triples: ot or dealer")
	fSeed := flag.String("seed", "", "dealer seed as hex string")
	fInsecureDealer := flag.Bool("insecure-dealer", false,
		"allow the dealer triples; both parties know the seed so the inputs are not protected")
	fConfig := flag.String("config", "", "configuration file")
	fVerbose := flag.Bool("v", false, "verbose output")
	fProfile := flag.Bool("profile", false, "enable CPU profiling")
	fGen := flag.Int("gen", 0, "generate shares of N random records")
	flag.Parse()

	log.SetFlags(0)

	if len(*fConfig) > 0 {
		if err := applyConfig(flag.CommandLine, *fConfig); err != nil {
			log.Fatal(err)
		}
	}
	if len(*fInput) == 0 {
		fmt.Printf("No input file\n")
		os.Exit(1)
	}
	if *fGen > 0 {
		if err := generate(*fInput, *fGen); err != nil {
			log.Fatal(err)
		}
		return
	}
	if *fProfile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	var p params
	var err error

	p.role, err = gmw.ParseRole(*fParty)
	if err != nil {
		log.Fatal(err)
	}
	p.result, err = gmw.ParseRole(*fResult)
	if err != nil {
		log.Fatal(err)
	}
	p.addr = *fAddr
	p.input = *fInput
	p.output = *fOutput
	p.threshold = uint32(*fThreshold)
	p.triples = *fTriples
	p.insecure = *fInsecureDealer
	p.verbose = *fVerbose

	p.metrics, err = parseMetrics(*fMetrics)
	if err != nil {
		log.Fatal(err)
	}
	p.bounds, err = parseBounds(*fBounds)
	if err != nil {
		log.Fatal(err)
	}
	p.field, err = demographics.ParseField(*fField)
	if err != nil {
		log.Fatal(err)
	}
	p.seed, err = hex.DecodeString(*fSeed)
	if err != nil {
		log.Fatalf("invalid seed: %s", err)
	}
	if err := p.check(); err != nil {
		log.Fatal(err)
	}

	if err := run(&p); err != nil {
		log.Fatal(err)
	}
}

// check verifies the parameters before the protocol run.
func (p *params) check() error {
	for _, m := range p.metrics {
		switch m {
		case metricValidate:
			if p.threshold == 0 {
				return fmt.Errorf("%w: validate needs -threshold",
					demographics.ErrThresholdMisconfiguration)
			}
		case metricHistogram:
			if err := demographics.CheckBounds(p.bounds); err != nil {
				return err
			}
		}
	}
	switch p.triples {
	case "dealer":
		if !p.insecure {
			return fmt.Errorf("dealer triples do not protect the inputs, enable with -insecure-dealer")
		}
		if len(p.seed) == 0 {
			return fmt.Errorf("dealer triples need -seed")
		}
	case "ot":
	default:
		return fmt.Errorf("unknown triple source '%s'", p.triples)
	}
	return nil
}
