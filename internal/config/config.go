package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/fixturegen/internal/calendar"
	"github.com/derekprior/fixturegen/internal/league"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

// Team is either a plain name or a mapping with optional venue and
// unavailability.
type Team struct {
	Name              string `yaml:"name"`
	Venue             string `yaml:"venue"`
	UnavailableRounds []int  `yaml:"unavailable_rounds"` // 1-based
	UnavailableDates  []Date `yaml:"unavailable_dates"`
}

func (t *Team) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Name = value.Value
		return nil
	}
	type plain Team
	return value.Decode((*plain)(t))
}

type Division struct {
	Name     string `yaml:"name"`
	Meetings int    `yaml:"meetings"`
	Rounds   int    `yaml:"rounds"`
	Teams    []Team `yaml:"teams"`
}

type Venue struct {
	Name              string `yaml:"name"`
	Capacity          int    `yaml:"capacity"`
	UnavailableRounds []int  `yaml:"unavailable_rounds"` // 1-based
	UnavailableDates  []Date `yaml:"unavailable_dates"`
}

type BlackoutDate struct {
	Date      *Date  `yaml:"date"`
	StartDate *Date  `yaml:"start_date"`
	EndDate   *Date  `yaml:"end_date"`
	Reason    string `yaml:"reason"`
}

type Calendar struct {
	StartDate       Date           `yaml:"start_date"`
	EndDate         *Date          `yaml:"end_date"`
	Weekdays        []string       `yaml:"weekdays"`
	SkipOccurrences []int          `yaml:"skip_occurrences"`
	BlackoutDates   []BlackoutDate `yaml:"blackout_dates"`
}

type Config struct {
	Rounds             int        `yaml:"rounds"`
	SharedResources    bool       `yaml:"shared_resources_across_divisions"`
	MaxMatchesPerRound int        `yaml:"max_matches_per_round"`
	Venues             []Venue    `yaml:"venues"`
	Divisions          []Division `yaml:"divisions"`
	Calendar           *Calendar  `yaml:"calendar"`
	Run                Run        `yaml:"run"`
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) applyDefaults() {
	for i := range c.Divisions {
		if c.Divisions[i].Meetings == 0 {
			c.Divisions[i].Meetings = 1
		}
	}
	for i := range c.Venues {
		if c.Venues[i].Capacity == 0 {
			c.Venues[i].Capacity = 1
		}
	}
}

func (c *Config) validate() error {
	if len(c.Divisions) == 0 {
		return fmt.Errorf("at least one division is required")
	}

	for _, d := range c.Divisions {
		for _, t := range d.Teams {
			if t.Name == "" {
				return fmt.Errorf("division %q: every team needs a name", d.Name)
			}
			if len(t.UnavailableDates) > 0 && c.Calendar == nil {
				return fmt.Errorf("team %q: unavailable_dates requires a calendar", t.Name)
			}
		}
	}
	for _, v := range c.Venues {
		if len(v.UnavailableDates) > 0 && c.Calendar == nil {
			return fmt.Errorf("venue %q: unavailable_dates requires a calendar", v.Name)
		}
	}

	if c.Calendar != nil {
		if c.Calendar.StartDate.Time.IsZero() {
			return fmt.Errorf("calendar: start_date is required")
		}
		if e := c.Calendar.EndDate; e != nil && !e.Time.After(c.Calendar.StartDate.Time) {
			return fmt.Errorf("calendar: end date %s must be after start date %s",
				e.Time.Format("2006-01-02"),
				c.Calendar.StartDate.Time.Format("2006-01-02"))
		}
		for _, w := range c.Calendar.Weekdays {
			if _, err := parseWeekday(w); err != nil {
				return fmt.Errorf("calendar: %w", err)
			}
		}
		for _, b := range c.Calendar.BlackoutDates {
			hasDate := b.Date != nil
			hasRange := b.StartDate != nil || b.EndDate != nil
			if !hasDate && !hasRange {
				return fmt.Errorf("calendar: blackout %q must have either 'date' or 'start_date'/'end_date'", b.Reason)
			}
			if hasDate && hasRange {
				return fmt.Errorf("calendar: blackout %q cannot have both 'date' and 'start_date'/'end_date'", b.Reason)
			}
			if hasRange && (b.StartDate == nil || b.EndDate == nil) {
				return fmt.Errorf("calendar: blackout %q with date range must have both 'start_date' and 'end_date'", b.Reason)
			}
			if hasRange && b.EndDate.Time.Before(b.StartDate.Time) {
				return fmt.Errorf("calendar: blackout %q end_date must be on or after start_date", b.Reason)
			}
		}
	}

	return c.Run.validate()
}

// Season converts the calendar section, if any.
func (c *Config) Season() (calendar.Season, bool) {
	if c.Calendar == nil {
		return calendar.Season{}, false
	}
	season := calendar.Season{
		Start:           c.Calendar.StartDate.Time,
		SkipOccurrences: c.Calendar.SkipOccurrences,
	}
	if c.Calendar.EndDate != nil {
		season.End = c.Calendar.EndDate.Time
	}
	for _, w := range c.Calendar.Weekdays {
		day, _ := parseWeekday(w)
		season.Weekdays = append(season.Weekdays, day)
	}
	for _, b := range c.Calendar.BlackoutDates {
		if b.Date != nil {
			season.Blackouts = append(season.Blackouts, calendar.Blackout{Start: b.Date.Time, Reason: b.Reason})
			continue
		}
		season.Blackouts = append(season.Blackouts, calendar.Blackout{Start: b.StartDate.Time, End: b.EndDate.Time, Reason: b.Reason})
	}
	return season, true
}

// League builds the validated league model. With a calendar, unavailable
// dates are translated into the rounds played on them and the returned
// dates hold one match date per round.
func (c *Config) League() (*league.League, []time.Time, error) {
	in, err := c.leagueInput(nil)
	if err != nil {
		return nil, nil, err
	}
	l, err := league.New(in)
	if err != nil {
		return nil, nil, err
	}

	season, ok := c.Season()
	if !ok {
		return l, nil, nil
	}
	dates, err := calendar.RoundDates(season, l.TotalRounds())
	if err != nil {
		return nil, nil, err
	}
	in, err = c.leagueInput(dates)
	if err != nil {
		return nil, nil, err
	}
	l, err = league.New(in)
	if err != nil {
		return nil, nil, err
	}
	return l, dates, nil
}

func (c *Config) leagueInput(dates []time.Time) (league.League, error) {
	in := league.League{
		Rounds:             c.Rounds,
		SharedResources:    c.SharedResources,
		MaxMatchesPerRound: c.MaxMatchesPerRound,
	}
	for _, v := range c.Venues {
		rounds, err := unavailable(v.UnavailableRounds, v.UnavailableDates, dates)
		if err != nil {
			return league.League{}, fmt.Errorf("venue %q: %w", v.Name, err)
		}
		in.Venues = append(in.Venues, league.Venue{Name: v.Name, Capacity: v.Capacity, Unavailable: rounds})
	}
	for _, d := range c.Divisions {
		div := league.Division{Name: d.Name, Meetings: d.Meetings, Rounds: d.Rounds}
		for _, t := range d.Teams {
			rounds, err := unavailable(t.UnavailableRounds, t.UnavailableDates, dates)
			if err != nil {
				return league.League{}, fmt.Errorf("team %q: %w", t.Name, err)
			}
			div.Teams = append(div.Teams, league.Team{ID: t.Name, Name: t.Name, Venue: t.Venue, Unavailable: rounds})
		}
		in.Divisions = append(in.Divisions, div)
	}
	return in, nil
}

// unavailable converts 1-based round numbers and match dates into round
// indexes. Dates that are not match days are ignored.
func unavailable(rounds []int, days []Date, dates []time.Time) ([]int, error) {
	var out []int
	for _, r := range rounds {
		if r < 1 {
			return nil, fmt.Errorf("unavailable round %d must be 1 or more", r)
		}
		out = append(out, r-1)
	}
	for _, d := range days {
		for i, md := range dates {
			if md.Equal(d.Time) {
				out = append(out, i)
			}
		}
	}
	return out, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if l := strings.ToLower(s); l == name || l == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// EnvFromFile reads KEY=value pairs from a dotenv file. A missing file
// yields no values.
func EnvFromFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return env, nil
}
