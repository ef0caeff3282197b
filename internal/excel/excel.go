package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/fixturegen/internal/league"
	"github.com/derekprior/fixturegen/internal/schedule"
)

const (
	FixturesSheet = "Fixtures"
	ByesSheet     = "Byes"

	dateLayout   = "01/02/2006"
	maxSheetName = 31
)

var (
	fixtureHeaders = []string{"Round", "Date", "Division", "Home", "Away"}
	byeHeaders     = []string{"Round", "Date", "Division", "Team"}
	teamHeaders    = []string{"Round", "Date", "Opponent", "Home/Away"}
)

type styles struct {
	header int
	cell   int
	bye    int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return st, err
	}
	st.cell, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	if err != nil {
		return st, err
	}
	st.bye, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	return st, err
}

// Generate creates an Excel workbook with the fixture list, the byes and
// one sheet per team.
func Generate(l *league.League, fl *schedule.FixtureList) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("creating styles: %w", err)
	}
	if err := writeFixturesSheet(f, st, fl); err != nil {
		return nil, fmt.Errorf("writing fixtures sheet: %w", err)
	}
	if err := writeDerivedSheets(f, st, l, fl); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if idx, err := f.GetSheetIndex(FixturesSheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func writeDerivedSheets(f *excelize.File, st styles, l *league.League, fl *schedule.FixtureList) error {
	if err := writeByesSheet(f, st, fl); err != nil {
		return fmt.Errorf("writing byes sheet: %w", err)
	}
	if err := writeTeamSheets(f, st, l, fl); err != nil {
		return fmt.Errorf("writing team sheets: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, st styles, sheet string, headers []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", cellRef(len(headers), 1), st.header)
}

func writeFixturesSheet(f *excelize.File, st styles, fl *schedule.FixtureList) error {
	sheet := FixturesSheet
	if err := writeHeader(f, st, sheet, fixtureHeaders); err != nil {
		return err
	}

	row := 2
	for _, r := range fl.Rounds {
		for _, m := range r.Matches {
			values := []interface{}{r.Index + 1, formatDate(r.Date), m.Division, m.Home, m.Away}
			if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
				return err
			}
			row++
		}
	}
	if row > 2 {
		if err := f.SetCellStyle(sheet, "A2", cellRef(len(fixtureHeaders), row-1), st.cell); err != nil {
			return err
		}
	}

	// Column widths are sized for Arial 16
	widths := map[string]float64{"A": 10, "B": 18, "C": 20, "D": 24, "E": 24}
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func writeByesSheet(f *excelize.File, st styles, fl *schedule.FixtureList) error {
	sheet := ByesSheet
	if err := writeHeader(f, st, sheet, byeHeaders); err != nil {
		return err
	}

	row := 2
	for _, r := range fl.Rounds {
		for _, b := range r.Byes {
			values := []interface{}{r.Index + 1, formatDate(r.Date), b.Division, b.Team}
			if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
				return err
			}
			row++
		}
	}
	if row > 2 {
		if err := f.SetCellStyle(sheet, "A2", cellRef(len(byeHeaders), row-1), st.cell); err != nil {
			return err
		}
	}
	widths := map[string]float64{"A": 10, "B": 18, "C": 20, "D": 24}
	for col, w := range widths {
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func writeTeamSheets(f *excelize.File, st styles, l *league.League, fl *schedule.FixtureList) error {
	taken := map[string]bool{
		strings.ToLower(FixturesSheet): true,
		strings.ToLower(ByesSheet):     true,
	}
	for _, div := range l.Divisions {
		for _, team := range div.Teams {
			sheet := SheetName(team.DisplayName(), div.Name, taken)
			if err := writeHeader(f, st, sheet, teamHeaders); err != nil {
				return err
			}

			row := 2
			for _, r := range fl.Rounds {
				values, bye := teamRow(r, div.Name, team.ID)
				if values == nil {
					continue
				}
				if err := f.SetSheetRow(sheet, cellRef(1, row), &values); err != nil {
					return err
				}
				style := st.cell
				if bye {
					style = st.bye
				}
				if err := f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(teamHeaders), row), style); err != nil {
					return err
				}
				row++
			}

			widths := map[string]float64{"A": 10, "B": 18, "C": 24, "D": 14}
			for col, w := range widths {
				if err := f.SetColWidth(sheet, col, col, w); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// teamRow returns the team sheet row for a round, or nil when the team
// neither plays nor has a bye in it.
func teamRow(r schedule.Round, division, team string) ([]interface{}, bool) {
	for _, m := range r.Matches {
		if m.Division != division {
			continue
		}
		switch team {
		case m.Home:
			return []interface{}{r.Index + 1, formatDate(r.Date), m.Away, "Home"}, false
		case m.Away:
			return []interface{}{r.Index + 1, formatDate(r.Date), m.Home, "Away"}, false
		}
	}
	for _, b := range r.Byes {
		if b.Division == division && b.Team == team {
			return []interface{}{r.Index + 1, formatDate(r.Date), "", "BYE"}, true
		}
	}
	return nil, false
}

// SheetName returns a worksheet name for a team that is valid in Excel and
// not yet in taken, and records it there. Names are compared case
// insensitively, as Excel does.
func SheetName(team, division string, taken map[string]bool) string {
	clean := func(s string) string {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(`:\/?*[]`, r) {
				return '_'
			}
			return r
		}, s)
		s = strings.Trim(s, "'")
		if s == "" {
			s = "Team"
		}
		return truncate(s, maxSheetName)
	}

	candidates := []string{clean(team), clean(team + " (" + division + ")")}
	for _, c := range candidates {
		if !taken[strings.ToLower(c)] {
			taken[strings.ToLower(c)] = true
			return c
		}
	}
	base := candidates[1]
	for n := 2; ; n++ {
		suffix := " " + strconv.Itoa(n)
		c := truncate(base, maxSheetName-len([]rune(suffix))) + suffix
		if !taken[strings.ToLower(c)] {
			taken[strings.ToLower(c)] = true
			return c
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ReadFixtures reads the fixture list back from a workbook's Fixtures
// sheet. Byes are not read; the Byes sheet only contributes round dates and
// rounds in which nobody plays. Malformed rows, and rows numbered past the
// season's rounds, are returned as problems keyed by their sheet row.
func ReadFixtures(f *excelize.File, rounds int) (*schedule.FixtureList, []RowError, error) {
	rows, err := f.GetRows(FixturesSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", FixturesSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s sheet is empty", FixturesSheet)
	}

	fl := &schedule.FixtureList{}
	var problems []RowError
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		if len(row) < len(fixtureHeaders) {
			problems = append(problems, RowError{Sheet: FixturesSheet, Row: line, Message: "expected Round, Date, Division, Home and Away"})
			continue
		}
		r, date, err := parseRoundDate(row)
		if err != nil {
			problems = append(problems, RowError{Sheet: FixturesSheet, Row: line, Message: err.Error()})
			continue
		}
		if r >= rounds {
			problems = append(problems, RowError{Sheet: FixturesSheet, Row: line, Message: beyondSeason(r, rounds)})
			continue
		}
		round := ensureRound(fl, r, date)
		round.Matches = append(round.Matches, schedule.Match{
			Division: strings.TrimSpace(row[2]),
			Home:     strings.TrimSpace(row[3]),
			Away:     strings.TrimSpace(row[4]),
			Round:    r,
		})
	}

	// The Byes sheet is optional.
	if byeRows, err := f.GetRows(ByesSheet); err == nil && len(byeRows) > 0 {
		for i, row := range byeRows[1:] {
			if blank(row) || len(row) < 2 {
				continue
			}
			r, date, err := parseRoundDate(row)
			if err != nil {
				continue
			}
			if r >= rounds {
				problems = append(problems, RowError{Sheet: ByesSheet, Row: i + 2, Message: beyondSeason(r, rounds)})
				continue
			}
			ensureRound(fl, r, date)
		}
	}
	return fl, problems, nil
}

// RowError is a malformed workbook row.
type RowError struct {
	Sheet   string
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %s", e.Sheet, e.Row, e.Message)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func beyondSeason(r, rounds int) string {
	return fmt.Sprintf("round %d is beyond the season's %d rounds", r+1, rounds)
}

func parseRoundDate(row []string) (int, time.Time, error) {
	n, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil || n < 1 {
		return 0, time.Time{}, fmt.Errorf("invalid round %q", row[0])
	}
	var date time.Time
	if s := strings.TrimSpace(row[1]); s != "" {
		date, err = time.Parse(dateLayout, s)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("invalid date %q", row[1])
		}
	}
	return n - 1, date, nil
}

// ensureRound grows the list to include round r and returns it.
func ensureRound(fl *schedule.FixtureList, r int, date time.Time) *schedule.Round {
	for len(fl.Rounds) <= r {
		fl.Rounds = append(fl.Rounds, schedule.Round{Index: len(fl.Rounds)})
	}
	round := &fl.Rounds[r]
	if round.Date.IsZero() {
		round.Date = date
	}
	return round
}

// UpdateTeamSheets rebuilds the Byes sheet and the per-team sheets of a
// saved workbook from its Fixtures sheet, after manual edits.
func UpdateTeamSheets(path string, l *league.League) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	fl, _, err := ReadFixtures(f, l.TotalRounds())
	if err != nil {
		return err
	}
	for len(fl.Rounds) < l.TotalRounds() {
		fl.Rounds = append(fl.Rounds, schedule.Round{Index: len(fl.Rounds)})
	}
	schedule.WithByes(l, fl)

	for _, sheet := range f.GetSheetList() {
		if sheet == FixturesSheet {
			continue
		}
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("removing sheet %s: %w", sheet, err)
		}
	}
	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("creating styles: %w", err)
	}
	if err := writeDerivedSheets(f, st, l, fl); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex(FixturesSheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f.Save()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
