//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package demographics

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/mpcstats/gmw"
	"github.com/markkurossi/mpcstats/p2p"
	"github.com/markkurossi/tabulate"
)

// FileSize specifies a data size in bytes.
type FileSize uint64

func (s FileSize) String() string {
	if s > 1000*1000*1000*1000 {
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	} else if s > 1000*1000*1000 {
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	} else if s > 1000*1000 {
		return fmt.Sprintf("%dMB", s/(1000*1000))
	} else if s > 1000 {
		return fmt.Sprintf("%dkB", s/1000)
	} else {
		return fmt.Sprintf("%dB", s)
	}
}

// Timing records per-metric samples of a protocol run and renders a
// report.
type Timing struct {
	Start   time.Time
	Samples []*Sample
	last    gmw.Stats
}

// Sample contains information about one metric computation.
type Sample struct {
	Label string
	Start time.Time
	End   time.Time
	Stats gmw.Stats
}

// NewTiming creates a new Timing instance. The stats argument holds
// the session statistics at the start of the run.
func NewTiming(stats gmw.Stats) *Timing {
	return &Timing{
		Start: time.Now(),
		last:  stats,
	}
}

// Sample adds a sample for the label. The stats argument holds the
// current session statistics and the sample records the difference
// to the previous sample.
func (t *Timing) Sample(label string, stats gmw.Stats) *Sample {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	sample := &Sample{
		Label: label,
		Start: start,
		End:   time.Now(),
		Stats: gmw.Stats{
			NonFreeGates: stats.NonFreeGates - t.last.NonFreeGates,
			FreeGates:    stats.FreeGates - t.last.FreeGates,
			Rounds:       stats.Rounds - t.last.Rounds,
			Opens:        stats.Opens - t.last.Opens,
			IO:           stats.IO.Sub(t.last.IO),
		},
	}
	t.last = stats
	t.Samples = append(t.Samples, sample)
	return sample
}

// Print prints the report to the writer.
func (t *Timing) Print(w io.Writer) {
	if len(t.Samples) == 0 {
		return
	}

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("AND").SetAlign(tabulate.MR)
	tab.Header("Rounds").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)

	total := gmw.Stats{
		IO: p2p.NewIOStats(),
	}

	duration := t.Samples[len(t.Samples)-1].End.Sub(t.Start)
	for _, sample := range t.Samples {
		row := tab.Row()
		row.Column(sample.Label)

		d := sample.End.Sub(sample.Start)
		row.Column(d.String())
		row.Column(fmt.Sprintf("%.2f%%", float64(d)/float64(duration)*100))
		row.Column(fmt.Sprintf("%d", sample.Stats.NonFreeGates))
		row.Column(fmt.Sprintf("%d", sample.Stats.Rounds))
		row.Column(FileSize(sample.Stats.IO.Sum()).String())

		total.NonFreeGates += sample.Stats.NonFreeGates
		total.Rounds += sample.Stats.Rounds
		total.IO = total.IO.Add(sample.Stats.IO)
	}

	sent := total.IO.Sent.Load()
	received := total.IO.Recvd.Load()

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(duration.String()).SetFormat(tabulate.FmtBold)
	row.Column("").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", total.NonFreeGates)).SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", total.Rounds)).SetFormat(tabulate.FmtBold)
	row.Column(FileSize(sent + received).String()).SetFormat(tabulate.FmtBold)

	row = tab.Row()
	row.Column("├╴Sent").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(percent(sent, sent+received)).SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column("")
	row.Column(FileSize(sent).String()).SetFormat(tabulate.FmtItalic)

	row = tab.Row()
	row.Column("╰╴Rcvd").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(percent(received, sent+received)).SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column("")
	row.Column(FileSize(received).String()).SetFormat(tabulate.FmtItalic)

	tab.Print(w)
}

func percent(a, b uint64) string {
	if b == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(a)/float64(b)*100)
}
