package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/derekprior/fixturegen/internal/league"
)

// New returns a logger writing to w at the named level. Console loggers
// print human-readable lines; otherwise each event is one JSON object.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Component returns a child logger tagged with a component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// League logs the shape of a league at the given level.
func League(logger *zerolog.Logger, l *league.League, level zerolog.Level) {
	divisions := zerolog.Arr()
	for _, d := range l.Divisions {
		divisions = divisions.Dict(zerolog.Dict().
			Str("name", d.Name).
			Int("teams", len(d.Teams)).
			Int("meetings", d.Meetings).
			Int("min_rounds", d.MinRounds()))
	}
	logger.WithLevel(level).
		Int("total_divisions", len(l.Divisions)).
		Int("total_teams", l.TeamCount()).
		Int("rounds", l.TotalRounds()).
		Bool("shared_resources", l.SharedResources).
		Array("divisions", divisions).
		Msg("league loaded")
}
