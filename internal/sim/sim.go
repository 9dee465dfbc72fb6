// Package sim rolls a table many times and reports how often each payload
// appeared. It is the tool for checking that a table's odds match its design.
package sim

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/nb2rs/dtx/internal/rollable"
)

// Frequency is the tally of one payload key.
type Frequency struct {
	Key   string
	Count int
	// Rate is Count divided by the number of rolls. Tables that yield several
	// payloads per roll can have rates summing past 1.
	Rate float64
}

// Report is the outcome of a simulation run.
type Report struct {
	Rolls    int
	Empty    int
	Payloads int
	counts   map[string]int
}

// Run rolls t against target n times and tallies every payload under key(payload).
//
// Precondition: n >= 0; key must be non-nil.
// Postcondition: Rolls == n; Payloads is the sum of all counts.
func Run[T, R any](t rollable.Rollable[T, R], target T, args rollable.Args, n int, key func(R) string) Report {
	rep := Report{Rolls: n, counts: make(map[string]int)}
	for range n {
		out := t.Roll(target, args)
		if out.IsEmpty() {
			rep.Empty++
			continue
		}
		for _, v := range out.Values() {
			rep.counts[key(v)]++
			rep.Payloads++
		}
	}
	return rep
}

func (r Report) rate(count int) float64 {
	if r.Rolls == 0 {
		return 0
	}
	return float64(count) / float64(r.Rolls)
}

// Count returns the number of payloads tallied under key.
func (r Report) Count(key string) int {
	return r.counts[key]
}

// Rate returns the per-roll rate of key.
func (r Report) Rate(key string) float64 {
	return r.rate(r.counts[key])
}

// EmptyRate returns the share of rolls that produced nothing.
func (r Report) EmptyRate() float64 {
	return r.rate(r.Empty)
}

// Frequencies returns every tallied key ordered by count descending, then key.
func (r Report) Frequencies() []Frequency {
	out := make([]Frequency, 0, len(r.counts))
	for k, c := range r.counts {
		out = append(out, Frequency{Key: k, Count: c, Rate: r.rate(c)})
	}
	slices.SortFunc(out, func(a, b Frequency) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// WriteText renders the report as an aligned plain-text table.
func (r Report) WriteText(w io.Writer) error {
	freqs := r.Frequencies()
	width := len("key")
	for _, f := range freqs {
		width = max(width, len(f.Key))
	}

	if _, err := fmt.Fprintf(w, "rolls     %d\nempty     %d (%.2f%%)\npayloads  %d\n\n",
		r.Rolls, r.Empty, 100*r.EmptyRate(), r.Payloads); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-*s  %8s  %8s\n", width, "key", "count", "rate"); err != nil {
		return err
	}
	for _, f := range freqs {
		if _, err := fmt.Fprintf(w, "%-*s  %8d  %7.2f%%\n", width, f.Key, f.Count, 100*f.Rate); err != nil {
			return err
		}
	}
	return nil
}
