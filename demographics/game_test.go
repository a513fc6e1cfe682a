//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package demographics

import (
	"io"
	"sync"
	"testing"

	"github.com/markkurossi/mpcstats/gmw"
	"github.com/markkurossi/mpcstats/p2p"
	"github.com/stretchr/testify/require"
)

type playFunc func(g *Game, a, b Dataset) (interface{}, error)

// play runs f as both parties. The initiator holds the dataset a and
// the responder holds b; both pass a placeholder for the peer's
// dataset.
func play(t *testing.T, a, b Dataset, f playFunc) [2]interface{} {
	return playWith(t, a, b, nil, f)
}

func playWith(t *testing.T, a, b Dataset, setup func(g *Game),
	f playFunc) [2]interface{} {

	t.Helper()

	c0, c1 := p2p.Pipe()
	results, errs := playConns(t, c0, c1, a, b, setup, f)

	for i, err := range errs {
		require.NoError(t, err, "party %s", gmw.Role(i))
	}
	return results
}

// playConns runs f as both parties over the connections c0 and c1
// and returns the results and errors of both parties.
func playConns(t *testing.T, c0, c1 *p2p.Conn, a, b Dataset,
	setup func(g *Game), f playFunc) ([2]interface{}, [2]error) {

	var results [2]interface{}
	var errs [2]error
	var wg sync.WaitGroup

	for i, conn := range []*p2p.Conn{c0, c1} {
		wg.Add(1)
		go func(role gmw.Role, conn *p2p.Conn) {
			defer wg.Done()
			dealer, err := gmw.NewDealer(role, []byte(t.Name()))
			if err != nil {
				errs[role] = err
				return
			}
			g := NewGame(gmw.NewSession(role, conn, dealer))
			if setup != nil {
				setup(g)
			}
			own := a
			peer := NewDataset(b.Len())
			if role == gmw.Responder {
				own = b
				peer = NewDataset(a.Len())
			}
			if role == gmw.Initiator {
				results[role], errs[role] = f(g, own, peer)
			} else {
				results[role], errs[role] = f(g, peer, own)
			}
		}(gmw.Role(i), conn)
	}
	wg.Wait()

	return results, errs
}

// shares splits the records into two share datasets.
func shares(t *testing.T, records []Record) (Dataset, Dataset) {
	t.Helper()
	a, b, err := Share(records, nil)
	require.NoError(t, err)
	return a, b
}

func wealthRecords(wealth ...uint32) []Record {
	var result []Record
	for i, w := range wealth {
		result = append(result, Record{
			Age:    uint32(20 + i%50),
			Gender: i%2 == 0,
			Wealth: w,
		})
	}
	return result
}

// flipPlane wraps a transport and flips the lowest row of every
// single-plane message written to it.
type flipPlane struct {
	io.Reader
	w io.Writer
}

func (f *flipPlane) Write(data []byte) (int, error) {
	if len(data) > 8 && bo.Uint32(data[4:8]) == 1 {
		data = append([]byte(nil), data...)
		data[len(data)-1] ^= 1
	}
	return f.w.Write(data)
}

type readWriter struct {
	io.Reader
	io.Writer
}

// tamperedPipe creates connected connections where the responder's
// single-plane messages are modified in transit.
func tamperedPipe() (*p2p.Conn, *p2p.Conn) {
	r0, w1 := io.Pipe()
	r1, w0 := io.Pipe()

	return p2p.NewConn(&readWriter{r0, w0}),
		p2p.NewConn(&flipPlane{Reader: r1, w: w1})
}

func ageRecords(ages ...uint32) []Record {
	var result []Record
	for i, age := range ages {
		result = append(result, Record{
			Age:    age,
			Gender: i%2 == 0,
			Wealth: 1000 * age,
		})
	}
	return result
}

func TestFieldNames(t *testing.T) {
	for _, f := range []Field{FieldAge, FieldWealth} {
		parsed, err := ParseField(f.String())
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}
	_, err := ParseField("height")
	require.Error(t, err)
}
