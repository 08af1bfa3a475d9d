package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/crmdash/backend/internal/dataset"
)

// Period is a time-series bucket size.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ValidPeriod reports whether p is a supported bucket size.
func ValidPeriod(p Period) bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// GroupByPeriod buckets rows by the given date column. Rows with a nil or
// missing date are dropped. Output is sorted chronologically, which the
// label formats guarantee lexicographically.
func GroupByPeriod(t dataset.Table, dateCol string, p Period) []PeriodCount {
	counts := map[string]int{}
	for _, r := range t.Rows {
		ts, ok := r.Time(dateCol)
		if !ok {
			continue
		}
		counts[periodLabel(ts, p)]++
	}
	out := make([]PeriodCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, PeriodCount{Period: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

func periodLabel(ts time.Time, p Period) string {
	switch p {
	case PeriodWeek:
		year, week := ts.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonth:
		return ts.Format("2006-01")
	case PeriodQuarter:
		q := (int(ts.Month())-1)/3 + 1
		return fmt.Sprintf("%04d-Q%d", ts.Year(), q)
	case PeriodYear:
		return ts.Format("2006")
	default:
		return ts.Format("2006-01-02")
	}
}
