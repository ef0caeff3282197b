package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/derekprior/fixturegen/internal/schedule"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FIXTURES_"

// Run holds the solver options of a config file. Nil fields keep the
// defaults.
type Run struct {
	Seed                  *int64   `yaml:"seed"`
	TimeLimitSeconds      *float64 `yaml:"time_limit_seconds"`
	SearchWorkers         *int     `yaml:"search_workers"`
	NodeLimit             *int     `yaml:"node_limit"`
	MoveLimit             *int     `yaml:"move_limit"`
	WeightHomeAwayBalance *float64 `yaml:"weight_home_away_balance"`
	WeightByeDistribution *float64 `yaml:"weight_bye_distribution"`
	WeightRepeatStreak    *float64 `yaml:"weight_repeat_streak"`
}

// maxTimeLimitSeconds is the longest time limit a time.Duration can hold.
const maxTimeLimitSeconds = float64(math.MaxInt64 / int64(time.Second))

type intField struct {
	name  string
	field **int
}

type floatField struct {
	name  string
	field **float64
}

// ints and floats list the numeric options in file order. Names are the
// YAML keys; the environment key is the upper-cased name.
func (r *Run) ints() []intField {
	return []intField{
		{"search_workers", &r.SearchWorkers},
		{"node_limit", &r.NodeLimit},
		{"move_limit", &r.MoveLimit},
	}
}

func (r *Run) floats() []floatField {
	return []floatField{
		{"time_limit_seconds", &r.TimeLimitSeconds},
		{"weight_home_away_balance", &r.WeightHomeAwayBalance},
		{"weight_bye_distribution", &r.WeightByeDistribution},
		{"weight_repeat_streak", &r.WeightRepeatStreak},
	}
}

func (r *Run) validate() error {
	if err := checkFloat("time_limit_seconds", r.TimeLimitSeconds); err != nil {
		return err
	}
	if r.TimeLimitSeconds != nil && *r.TimeLimitSeconds > maxTimeLimitSeconds {
		return fmt.Errorf("run: time_limit_seconds must be at most %.0f", maxTimeLimitSeconds)
	}
	for _, f := range r.ints() {
		if v := *f.field; v != nil && *v < 0 {
			return fmt.Errorf("run: %s must not be negative", f.name)
		}
	}
	for _, f := range r.floats()[1:] {
		if err := checkFloat(f.name, *f.field); err != nil {
			return err
		}
	}
	return nil
}

func checkFloat(name string, v *float64) error {
	switch {
	case v == nil:
		return nil
	case math.IsNaN(*v) || math.IsInf(*v, 0):
		return fmt.Errorf("run: %s must be a finite number", name)
	case *v < 0:
		return fmt.Errorf("run: %s must not be negative", name)
	}
	return nil
}

// ApplyEnv overrides run options from FIXTURES_* variables found by lookup.
func (r *Run) ApplyEnv(lookup func(string) (string, bool)) error {
	if s, ok := lookup(EnvPrefix + "SEED"); ok {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sSEED: %w", EnvPrefix, err)
		}
		r.Seed = &v
	}
	for _, f := range r.ints() {
		key := EnvPrefix + strings.ToUpper(f.name)
		if s, ok := lookup(key); ok {
			v, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*f.field = &v
		}
	}
	for _, f := range r.floats() {
		key := EnvPrefix + strings.ToUpper(f.name)
		if s, ok := lookup(key); ok {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*f.field = &v
		}
	}
	return r.validate()
}

// Options returns engine options: defaults overlaid with the set fields.
func (r Run) Options() schedule.Options {
	opts := schedule.DefaultOptions()
	if r.Seed != nil {
		opts.Seed = *r.Seed
	}
	if r.TimeLimitSeconds != nil {
		opts.TimeLimit = time.Duration(*r.TimeLimitSeconds * float64(time.Second))
	}
	if r.SearchWorkers != nil {
		opts.Workers = *r.SearchWorkers
	}
	if r.NodeLimit != nil {
		opts.NodeLimit = *r.NodeLimit
	}
	if r.MoveLimit != nil {
		opts.MoveLimit = *r.MoveLimit
	}
	if r.WeightHomeAwayBalance != nil {
		opts.Weights.HomeAwayBalance = *r.WeightHomeAwayBalance
	}
	if r.WeightByeDistribution != nil {
		opts.Weights.ByeDistribution = *r.WeightByeDistribution
	}
	if r.WeightRepeatStreak != nil {
		opts.Weights.RepeatStreak = *r.WeightRepeatStreak
	}
	return opts
}
