package validator

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/fixturegen/internal/excel"
	"github.com/derekprior/fixturegen/internal/league"
	"github.com/derekprior/fixturegen/internal/model"
	"github.com/derekprior/fixturegen/internal/schedule"
)

// Violation represents a problem found during validation.
type Violation struct {
	Row     int    // workbook row of the Fixtures sheet, 0 when not tied to one
	Type    string // "error" or "warning"
	Message string
}

// Options tunes which guidelines are reported.
type Options struct {
	Weights model.Weights
	Dates   []time.Time // expected round dates, nil to skip the date check
}

// Validate reads a fixture workbook and checks it against the league. Hard
// rules are reported as errors and guideline breaches as warnings. Byes are
// derived from the matches, so an edited workbook needs no Byes sheet.
func Validate(l *league.League, path string, opts Options) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	fl, rowErrs, err := excel.ReadFixtures(f, l.TotalRounds())
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}

	var violations []Violation
	for _, re := range rowErrs {
		violations = append(violations, Violation{Row: re.Row, Type: "error", Message: re.Message})
	}

	for len(fl.Rounds) < l.TotalRounds() {
		fl.Rounds = append(fl.Rounds, schedule.Round{Index: len(fl.Rounds)})
	}
	schedule.WithByes(l, fl)

	for _, p := range schedule.Check(l, fl) {
		violations = append(violations, Violation{Type: "error", Message: p})
	}
	violations = append(violations, checkDates(fl, opts.Dates)...)

	rep := schedule.BuildReport(l, fl, opts.Weights)
	for _, w := range rep.Warnings {
		violations = append(violations, Violation{Type: "warning", Message: w})
	}
	return violations, nil
}

// checkDates warns about rounds dated differently from the calendar.
func checkDates(fl *schedule.FixtureList, dates []time.Time) []Violation {
	var violations []Violation
	for i, r := range fl.Rounds {
		if i >= len(dates) || r.Date.IsZero() || r.Date.Equal(dates[i]) {
			continue
		}
		violations = append(violations, Violation{
			Type: "warning",
			Message: fmt.Sprintf("round %d is dated %s, calendar has %s",
				i+1, r.Date.Format("01/02/2006"), dates[i].Format("01/02/2006")),
		})
	}
	return violations
}

// Count returns the number of errors and warnings.
func Count(violations []Violation) (errors, warnings int) {
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
		case "warning":
			warnings++
		}
	}
	return errors, warnings
}
