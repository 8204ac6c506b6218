// Package analytics computes visitor reports from the stored event stream.
package analytics

import (
	"context"
	"time"

	"storefront/api/apperr"
)

type ReportType string

const (
	ReportAvgVisitor  ReportType = "avg-visitor"
	ReportUniqVisitor ReportType = "uniq-visitor"
	ReportLocalTime   ReportType = "localTime"
)

// Visit is the slice of an event that reports read.
type Visit struct {
	VisitorID string
	Timestamp time.Time
}

// VisitSource streams every stored visit to fn. Returning an error from fn
// stops the scan.
type VisitSource interface {
	ScanVisits(ctx context.Context, fn func(Visit) error) error
}

// accumulator folds visits one at a time and produces a report body.
type accumulator interface {
	add(v Visit)
	result() any
}

var reports = map[ReportType]func(loc *time.Location) accumulator{
	ReportAvgVisitor:  func(loc *time.Location) accumulator { return newAverageAccumulator(loc, false) },
	ReportUniqVisitor: func(loc *time.Location) accumulator { return newAverageAccumulator(loc, true) },
	ReportLocalTime:   func(loc *time.Location) accumulator { return newHourlyAccumulator(loc) },
}

// ParseReportType rejects anything outside the three known reports.
func ParseReportType(s string) (ReportType, error) {
	rt := ReportType(s)
	if _, err := lookup(rt); err != nil {
		return "", err
	}
	return rt, nil
}

func lookup(rt ReportType) (func(loc *time.Location) accumulator, error) {
	newAcc, ok := reports[rt]
	if !ok {
		return nil, apperr.InvalidArgument("Invalid type. Use ?type=avg-visitor | uniq-visitor | localTime")
	}
	return newAcc, nil
}

// Compute runs a report over an in-memory set of visits.
func Compute(rt ReportType, loc *time.Location, visits []Visit) (any, error) {
	newAcc, err := lookup(rt)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	acc := newAcc(loc)
	for _, v := range visits {
		acc.add(v)
	}
	return acc.result(), nil
}

// Engine runs reports against a VisitSource in a single pass.
type Engine struct {
	source VisitSource
}

func NewEngine(source VisitSource) *Engine {
	return &Engine{source: source}
}

func (e *Engine) Report(ctx context.Context, rt ReportType, loc *time.Location) (any, error) {
	newAcc, err := lookup(rt)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	acc := newAcc(loc)
	err = e.source.ScanVisits(ctx, func(v Visit) error {
		acc.add(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc.result(), nil
}

// averageAccumulator counts per date, week and month bucket, either raw
// events or distinct visitors.
type averageAccumulator struct {
	loc      *time.Location
	distinct bool

	daily, weekly, monthly map[string]*bucketCount
}

type bucketCount struct {
	events   int64
	visitors map[string]struct{}
}

func newAverageAccumulator(loc *time.Location, distinct bool) *averageAccumulator {
	return &averageAccumulator{
		loc:      loc,
		distinct: distinct,
		daily:    make(map[string]*bucketCount),
		weekly:   make(map[string]*bucketCount),
		monthly:  make(map[string]*bucketCount),
	}
}

func (a *averageAccumulator) add(v Visit) {
	b := BucketsFor(v.Timestamp, a.loc)
	a.count(a.daily, b.Date, v.VisitorID)
	a.count(a.weekly, b.Week, v.VisitorID)
	a.count(a.monthly, b.Month, v.VisitorID)
}

func (a *averageAccumulator) count(m map[string]*bucketCount, key, visitorID string) {
	bc, ok := m[key]
	if !ok {
		bc = &bucketCount{}
		if a.distinct {
			bc.visitors = make(map[string]struct{})
		}
		m[key] = bc
	}
	bc.events++
	if a.distinct {
		bc.visitors[visitorID] = struct{}{}
	}
}

func (a *averageAccumulator) counts(m map[string]*bucketCount) []int64 {
	out := make([]int64, 0, len(m))
	for _, bc := range m {
		if a.distinct {
			out = append(out, int64(len(bc.visitors)))
		} else {
			out = append(out, bc.events)
		}
	}
	return out
}

func (a *averageAccumulator) result() any {
	return assembleAverages(a.counts(a.daily), a.counts(a.weekly), a.counts(a.monthly))
}

// hourlyAccumulator merges every day into 24 hour-of-day buckets.
type hourlyAccumulator struct {
	loc   *time.Location
	hours map[string]int64
}

func newHourlyAccumulator(loc *time.Location) *hourlyAccumulator {
	return &hourlyAccumulator{loc: loc, hours: make(map[string]int64)}
}

func (h *hourlyAccumulator) add(v Visit) {
	h.hours[v.Timestamp.In(h.loc).Format("15")]++
}

func (h *hourlyAccumulator) result() any {
	return assembleHourly(h.hours)
}
