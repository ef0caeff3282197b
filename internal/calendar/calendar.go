package calendar

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/jinzhu/now"

	"github.com/derekprior/fixturegen/internal/league"
)

// Last is the SkipOccurrences value for the final weekday of a month.
const Last = -1

// maxSpan bounds an open-ended calendar.
const maxSpan = 5 * 366 * 24 * time.Hour

// Blackout excludes a single date or an inclusive range of dates.
type Blackout struct {
	Start  time.Time
	End    time.Time // zero for a single date
	Reason string
}

// Dates returns all dates covered by this blackout.
func (b Blackout) Dates() []time.Time {
	if b.End.IsZero() {
		return []time.Time{day(b.Start)}
	}
	var dates []time.Time
	for d := day(b.Start); !d.After(day(b.End)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Season describes when rounds are played.
type Season struct {
	Start    time.Time
	End      time.Time // zero = as long as needed
	Weekdays []time.Weekday
	// SkipOccurrences drops the nth matching weekday of every month (1-5, or
	// Last), e.g. []int{1} skips the first Thursday of each month.
	SkipOccurrences []int
	Blackouts       []Blackout
}

// Skipped is a match day left out of the calendar.
type Skipped struct {
	Date   time.Time
	Reason string
}

// Validate checks the season independently of a round count.
func (s Season) Validate() error {
	if s.Start.IsZero() {
		return &league.ModelError{Reason: "calendar start date is required"}
	}
	if !s.End.IsZero() && s.End.Before(s.Start) {
		return &league.ModelError{Reason: fmt.Sprintf("calendar end date %s must not be before start date %s",
			s.End.Format("2006-01-02"), s.Start.Format("2006-01-02"))}
	}
	for _, n := range s.SkipOccurrences {
		if n != Last && (n < 1 || n > 5) {
			return &league.ModelError{Reason: fmt.Sprintf("skipped weekday occurrence %d must be 1-5 or %d for the last", n, Last)}
		}
	}
	for _, b := range s.Blackouts {
		if !b.End.IsZero() && b.End.Before(b.Start) {
			return &league.ModelError{Reason: fmt.Sprintf("blackout %q ends before it starts", b.Reason)}
		}
	}
	return nil
}

// Dates returns up to limit match dates in order. A limit of 0 means every
// date up to End.
func (s Season) Dates(limit int) []time.Time {
	dates, _ := s.walk(limit)
	return dates
}

// Skips lists weekday dates that were dropped, in date order, for display.
func (s Season) Skips(limit int) []Skipped {
	_, skipped := s.walk(limit)
	return skipped
}

func (s Season) walk(limit int) ([]time.Time, []Skipped) {
	blackouts := make(map[time.Time]string)
	for _, b := range s.Blackouts {
		for _, d := range b.Dates() {
			blackouts[d] = b.Reason
		}
	}

	start := day(s.Start)
	end := day(s.End)
	if s.End.IsZero() {
		if limit == 0 {
			return nil, nil
		}
		end = start.Add(maxSpan)
	}

	var dates []time.Time
	var skipped []Skipped
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if limit > 0 && len(dates) == limit {
			break
		}
		if !s.matchDay(d) {
			continue
		}
		if reason, ok := blackouts[d]; ok {
			skipped = append(skipped, Skipped{Date: d, Reason: reason})
			continue
		}
		if s.skipOccurrence(d) {
			skipped = append(skipped, Skipped{Date: d, Reason: fmt.Sprintf("%s %s of the month", ordinal(d), d.Weekday())})
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Date.Before(skipped[j].Date) })
	return dates, skipped
}

func (s Season) matchDay(d time.Time) bool {
	if len(s.Weekdays) == 0 {
		return d.Weekday() == s.Start.Weekday()
	}
	return slices.Contains(s.Weekdays, d.Weekday())
}

func (s Season) skipOccurrence(d time.Time) bool {
	for _, n := range s.SkipOccurrences {
		if n == Last && isLast(d) {
			return true
		}
		if n == occurrence(d) {
			return true
		}
	}
	return false
}

// RoundDates assigns one date to each of the given number of rounds.
func RoundDates(s Season, rounds int) ([]time.Time, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	dates := s.Dates(rounds)
	if len(dates) < rounds {
		return nil, &league.ModelError{Reason: fmt.Sprintf("calendar has only %d match dates between %s and %s, season needs %d rounds",
			len(dates), s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"), rounds)}
	}
	return dates, nil
}

// occurrence is the 1-based index of d's weekday within its month.
func occurrence(d time.Time) int {
	return (d.Day()-1)/7 + 1
}

func isLast(d time.Time) bool {
	return d.AddDate(0, 0, 7).After(now.With(d).EndOfMonth())
}

func ordinal(d time.Time) string {
	if isLast(d) {
		return "last"
	}
	return [...]string{"first", "second", "third", "fourth", "fifth"}[occurrence(d)-1]
}

func day(t time.Time) time.Time {
	return now.With(t).BeginningOfDay()
}
