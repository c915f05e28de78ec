package aggregate

import (
	"sort"

	"github.com/vvka-141/datmerge/pkg/datmerge"
)

type group struct {
	total float64
}

// Aggregator accumulates records into per-identity totals.
// It is not safe for concurrent use.
type Aggregator struct {
	groups     map[string]*group
	seen       map[string]struct{}
	duplicates int
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	a := &Aggregator{}
	a.Reset()
	return a
}

// Add folds records into the aggregate. Records whose fingerprint was
// already added are counted as duplicates and otherwise ignored.
func (a *Aggregator) Add(records ...datmerge.Record) {
	for _, r := range records {
		fp := r.Fingerprint()
		if _, dup := a.seen[fp]; dup {
			a.duplicates++
			continue
		}
		a.seen[fp] = struct{}{}

		g, ok := a.groups[r.Key]
		if !ok {
			g = &group{}
			a.groups[r.Key] = g
		}
		g.total += r.Total()
	}
}

// Result returns the aggregated entries sorted by key.
func (a *Aggregator) Result() datmerge.RecordSet {
	entries := make([]datmerge.Entry, 0, len(a.groups))
	for key, g := range a.groups {
		entries = append(entries, datmerge.Entry{
			Key:   key,
			Total: g.total,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	return datmerge.RecordSet{Entries: entries, Duplicates: a.duplicates}
}

// Reset clears the aggregator state for reuse.
func (a *Aggregator) Reset() {
	a.groups = make(map[string]*group)
	a.seen = make(map[string]struct{})
	a.duplicates = 0
}

// Aggregate is a shorthand for aggregating a single batch of records.
func Aggregate(records []datmerge.Record) datmerge.RecordSet {
	a := NewAggregator()
	a.Add(records...)
	return a.Result()
}
