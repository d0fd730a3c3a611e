// This file implements the Strategy Pattern for recurrence stepping.
// Each interval (daily, weekly, monthly, custom day count) has its own
// cadence that knows how to compute the k-th occurrence of a series.

package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	Daily   Interval = "Daily"
	Weekly  Interval = "Weekly"
	Monthly Interval = "Monthly"
	Other   Interval = "Other"
)

// Interval names the cadence of a recurring transaction.
type Interval string

// Cadence is the strategy interface for stepping a recurring series.
// Occurrence is indexed from the series start so long series never drift.
type Cadence interface {
	// Occurrence returns the k-th date of a series starting at start (k=0 is start).
	Occurrence(start Date, k int, daysInterval int) Date
	// NeedsDays reports whether the cadence reads daysInterval.
	NeedsDays() bool
}

// DailyCadence steps one calendar day.
type DailyCadence struct{}

func (DailyCadence) Occurrence(start Date, k int, _ int) Date { return start.AddDays(k) }
func (DailyCadence) NeedsDays() bool                          { return false }

// WeeklyCadence steps seven calendar days.
type WeeklyCadence struct{}

func (WeeklyCadence) Occurrence(start Date, k int, _ int) Date { return start.AddDays(7 * k) }
func (WeeklyCadence) NeedsDays() bool                          { return false }

// MonthlyCadence keeps the start's day of month, clamped to short months.
type MonthlyCadence struct{}

func (MonthlyCadence) Occurrence(start Date, k int, _ int) Date { return start.AddMonthsClamped(k) }
func (MonthlyCadence) NeedsDays() bool                          { return false }

// DaysCadence steps a caller-chosen number of days.
type DaysCadence struct{}

func (DaysCadence) Occurrence(start Date, k int, daysInterval int) Date {
	return start.AddDays(k * daysInterval)
}
func (DaysCadence) NeedsDays() bool { return true }

var (
	cadenceMu sync.RWMutex
	cadences  = map[Interval]Cadence{
		Daily:   DailyCadence{},
		Weekly:  WeeklyCadence{},
		Monthly: MonthlyCadence{},
		Other:   DaysCadence{},
	}
	builtinIntervals = []Interval{Daily, Weekly, Monthly, Other}
)

// CadenceFor returns the cadence registered for an interval.
func CadenceFor(i Interval) (Cadence, error) {
	cadenceMu.RLock()
	defer cadenceMu.RUnlock()
	c, ok := cadences[i]
	if !ok {
		return nil, fmt.Errorf("unknown interval: %q", i)
	}
	return c, nil
}

// RegisterCadence adds or replaces the cadence for an interval.
func RegisterCadence(i Interval, c Cadence) {
	cadenceMu.Lock()
	defer cadenceMu.Unlock()
	cadences[i] = c
}

// ParseInterval resolves s case-insensitively against the registry and
// returns the canonical spelling.
func ParseInterval(s string) (Interval, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	cadenceMu.RLock()
	defer cadenceMu.RUnlock()
	for i := range cadences {
		if strings.EqualFold(string(i), s) {
			return i, true
		}
	}
	return "", false
}

// Intervals lists registered intervals, built-ins first in their usual order.
func Intervals() []Interval {
	cadenceMu.RLock()
	defer cadenceMu.RUnlock()
	out := make([]Interval, 0, len(cadences))
	seen := make(map[Interval]bool, len(builtinIntervals))
	for _, i := range builtinIntervals {
		if _, ok := cadences[i]; ok {
			out = append(out, i)
			seen[i] = true
		}
	}
	var extra []Interval
	for i := range cadences {
		if !seen[i] {
			extra = append(extra, i)
		}
	}
	sort.Slice(extra, func(a, b int) bool { return extra[a] < extra[b] })
	return append(out, extra...)
}
