// Package telemetrytest provides a telemetry.API that records reports so tests
// can assert on what a component logged.
package telemetrytest

import (
	"slices"
	"sync"
)

type Kind int

const (
	KindBroken Kind = iota
	KindWarning
	KindDebug
	KindCount
)

type Report struct {
	Kind   Kind
	ID     string
	Params []any
	Count  int64
}

// Recorder implements telemetry.API, the zero value is ready to use.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) add(report Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Report{Kind: KindBroken, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Report{Kind: KindWarning, ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Report{Kind: KindDebug, ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(Report{Kind: KindCount, ID: id, Count: count})
}

// IDs returns the ids of every report of the given kind, in order.
func (r *Recorder) IDs(kind Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, report := range r.reports {
		if report.Kind == kind {
			ids = append(ids, report.ID)
		}
	}
	return ids
}

// Has reports whether a report with the given kind and id was recorded.
func (r *Recorder) Has(kind Kind, id string) bool {
	return slices.Contains(r.IDs(kind), id)
}

// Reports returns a copy of every recorded report.
func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.reports)
}
