//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fatih/color"
	"github.com/markkurossi/mpcstats/demographics"
	"github.com/markkurossi/mpcstats/gmw"
	"github.com/markkurossi/mpcstats/p2p"
	"github.com/schollz/progressbar/v3"
)

const dialAttempts = 12

type result struct {
	metric string
	value  string
}

func run(p *params) error {
	own, err := readDataset(p.input)
	if err != nil {
		return err
	}

	color.Set(color.FgBlue, color.Bold)
	fmt.Printf("secure demographic statistics\n")
	color.Unset()
	fmt.Printf(" - party  : %s\n", p.role)
	fmt.Printf(" - result : %s\n", p.result)
	fmt.Printf(" - input  : %s (%d rows)\n", p.input, own.Len())
	fmt.Printf(" - metrics: %v\n", p.metrics)
	fmt.Printf(" - triples: %s\n", p.triples)
	if p.triples == "dealer" {
		color.Set(color.FgRed, color.Bold)
		fmt.Printf("WARNING: dealer triples are insecure, the peer can recover all inputs\n")
		color.Unset()
	}

	var conn *p2p.Conn
	if p.role == gmw.Initiator {
		conn, err = p2p.Listen(p.addr)
	} else {
		conn, err = p2p.Dial(p.addr, dialAttempts)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := handshake(conn, p, own.Len()); err != nil {
		return err
	}

	var triples gmw.TripleSource
	if p.triples == "ot" {
		triples = gmw.NewOTTriples(p.role, conn, nil)
	} else {
		triples, err = gmw.NewDealer(p.role, p.seed)
		if err != nil {
			return err
		}
	}
	session := gmw.NewSession(p.role, conn, triples)
	session.Verbose = p.verbose

	game := demographics.NewGame(session)
	game.ResultParty = p.result
	game.Verbose = p.verbose

	// Each party holds its own dataset in its role's position.
	a, b := own, demographics.NewDataset(own.Len())
	if p.role == gmw.Responder {
		a, b = b, a
	}

	timing := demographics.NewTiming(session.Stats())
	bar := progressbar.NewOptions(len(p.metrics),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription("[cyan]Computing...[reset]"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var results []result
	var mean float64
	var haveMean bool

	average := func() error {
		mean, err = game.AverageField(a, b, p.field)
		if err != nil {
			return err
		}
		haveMean = true
		return nil
	}

	for _, metric := range p.metrics {
		switch metric {
		case metricValidate:
			v, err := game.Validate(a, b, p.threshold)
			if err != nil {
				return err
			}
			a, b = v.A, v.B
			results = append(results, result{
				metric: metric,
				value:  fmt.Sprintf("%d/%d", v.Count, own.Len()),
			})

		case metricAverage:
			if err := average(); err != nil {
				return err
			}
			results = append(results, result{
				metric: fmt.Sprintf("%s(%s)", metric, p.field),
				value:  fmt.Sprintf("%.4f", mean),
			})

		case metricSequential:
			avg, err := game.AverageSequentialField(a, b, p.field)
			if err != nil {
				return err
			}
			results = append(results, result{
				metric: fmt.Sprintf("%s(%s)", metric, p.field),
				value:  fmt.Sprintf("%.4f", avg),
			})

		case metricVariance:
			if !haveMean {
				if err := average(); err != nil {
					return err
				}
			}
			public, err := publishMean(conn, p.role, p.result, mean)
			if err != nil {
				return err
			}
			variance, err := game.VarianceField(a, b, p.field, public)
			if err != nil {
				return err
			}
			results = append(results, result{
				metric: fmt.Sprintf("%s(%s)", metric, p.field),
				value:  fmt.Sprintf("%.4f", variance),
			})

		case metricHistogram:
			bins, err := game.HistogramField(a, b, p.field, p.bounds)
			if err != nil {
				return err
			}
			results = append(results, result{
				metric: fmt.Sprintf("%s(%s)%v", metric, p.field, p.bounds),
				value:  fmt.Sprintf("%v", bins),
			})

		case metricGender:
			count, err := game.GenderCount(a, b)
			if err != nil {
				return err
			}
			results = append(results, result{
				metric: metric,
				value:  fmt.Sprintf("%d", count),
			})
		}
		timing.Sample(metric, session.Stats())
		bar.Add(1)
	}
	fmt.Println()

	if p.verbose {
		timing.Print(os.Stdout)
		fmt.Printf(" - %s\n", session.Stats())
	}

	if p.role != p.result {
		color.Set(color.FgYellow)
		fmt.Printf("Statistics were revealed to the %s\n", p.result)
		color.Unset()
	}
	color.Set(color.FgMagenta, color.Bold)
	printResults(os.Stdout, results)
	color.Unset()

	if len(p.output) > 0 {
		f, err := os.Create(p.output)
		if err != nil {
			return err
		}
		printResults(f, results)
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// publishMean sends the mean from the result party to its peer. The
// mean is a public parameter of the variance computation.
func publishMean(conn *p2p.Conn, role, resultParty gmw.Role, mean float64) (
	float64, error) {

	if role == resultParty {
		if err := conn.SendUint64(math.Float64bits(mean)); err != nil {
			return 0, err
		}
		return mean, conn.Flush()
	}
	bits, err := conn.ReceiveUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func printResults(w io.Writer, results []result) {
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\n", r.metric, r.value)
	}
}
