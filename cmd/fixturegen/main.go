package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/derekprior/fixturegen/internal/calendar"
	"github.com/derekprior/fixturegen/internal/config"
	"github.com/derekprior/fixturegen/internal/excel"
	"github.com/derekprior/fixturegen/internal/league"
	"github.com/derekprior/fixturegen/internal/logging"
	"github.com/derekprior/fixturegen/internal/metrics"
	"github.com/derekprior/fixturegen/internal/schedule"
	"github.com/derekprior/fixturegen/internal/solver"
	"github.com/derekprior/fixturegen/internal/validator"
)

const defaultConfigFile = "config.yaml"

// Exit codes beyond the generic 1.
const (
	exitModel     = 2
	exitNoFit     = 3
	exitTimedOut  = 4
	exitInvariant = 70
)

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

// runFlags are the solver overrides given on the command line.
type runFlags struct {
	seed        int64
	timeLimit   time.Duration
	workers     int
	envFile     string
	metricsFile string
	logLevel    string
	logJSON     bool
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "fixturegen",
		Short: "Multi-division league fixture generator",
	}

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	fixturesCmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate and validate fixture lists",
	}

	var configFile string
	var rf runFlags
	pf := fixturesCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")
	pf.StringVar(&rf.envFile, "env-file", ".env", "dotenv file with FIXTURES_* overrides")
	pf.StringVar(&rf.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.BoolVar(&rf.logJSON, "log-json", false, "Log JSON instead of console output")

	var outputFile string
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a fixture list from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runGenerate(cmd, configPath, outputFile, rf)
		},
	}
	gf := generateCmd.Flags()
	gf.StringVarP(&outputFile, "output", "o", "fixtures.xlsx", "Output Excel file path")
	gf.Int64Var(&rf.seed, "seed", 0, "Random seed")
	gf.DurationVar(&rf.timeLimit, "time-limit", 0, "Search time limit, e.g. 30s")
	gf.IntVar(&rf.workers, "workers", 0, "Parallel search workers")
	gf.StringVar(&rf.metricsFile, "metrics-file", "", "Write solver metrics in Prometheus text format to this file")

	validateCmd := &cobra.Command{
		Use:          "validate <fixtures.xlsx>",
		Short:        "Validate a fixture list against the league rules",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0], rf)
		},
	}

	fixturesCmd.AddCommand(generateCmd, validateCmd)
	rootCmd.AddCommand(initCmd, fixturesCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var me *league.ModelError
	var ie *schedule.InfeasibleError
	var te *schedule.SearchTimedOutError
	var iv *schedule.InvariantViolation
	switch {
	case errors.As(err, &iv):
		return exitInvariant
	case errors.As(err, &me):
		return exitModel
	case errors.As(err, &ie):
		return exitNoFit
	case errors.As(err, &te):
		return exitTimedOut
	default:
		return 1
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

// loadConfig reads the config file and applies environment overrides.
// Process environment wins over the dotenv file.
func loadConfig(configPath, envFile string) (*config.Config, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	fileEnv, err := config.EnvFromFile(envFile)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
	if err := cfg.Run.ApplyEnv(lookup); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, configPath, outputPath string, rf runFlags) error {
	logger, err := logging.New(os.Stderr, rf.logLevel, !rf.logJSON)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath, rf.envFile)
	if err != nil {
		return err
	}
	l, dates, err := cfg.League()
	if err != nil {
		return err
	}
	logging.League(&logger, l, zerolog.InfoLevel)

	opts := cfg.Run.Options()
	flags := cmd.Flags()
	if flags.Changed("seed") {
		opts.Seed = rf.seed
	}
	if flags.Changed("time-limit") {
		opts.TimeLimit = rf.timeLimit
	}
	if flags.Changed("workers") {
		opts.Workers = rf.workers
	}
	opts.Dates = dates
	engineLog := logging.Component(logger, "engine")
	opts.Logger = &engineLog
	if rf.metricsFile != "" {
		opts.Recorder = metrics.NewRecorder()
	}

	matches := 0
	for d := range l.Divisions {
		for _, p := range l.Pairings(d) {
			matches += p.Meetings
		}
	}
	fmt.Printf("Scheduling %d matches for %d teams in %d rounds...\n", matches, l.TeamCount(), l.TotalRounds())
	if season, ok := cfg.Season(); ok {
		printSkipped(os.Stdout, season.Skips(l.TotalRounds()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := schedule.Generate(ctx, l, opts)
	if err != nil {
		var iv *schedule.InvariantViolation
		if errors.As(err, &iv) {
			fmt.Fprintln(os.Stderr, iv.Trace())
		}
		return err
	}

	switch res.Status {
	case solver.TimedOut:
		fmt.Fprintf(os.Stderr, "⚠ Search budget ran out; the fixture list is valid but may not be the best available\n")
	case solver.Optimal:
		fmt.Printf("✓ All %d matches scheduled (optimal)\n", res.Fixtures.MatchCount())
	default:
		fmt.Printf("✓ All %d matches scheduled (objective %.1f)\n", res.Fixtures.MatchCount(), res.Objective)
	}

	printReport(res.Report)

	f, err := excel.Generate(l, res.Fixtures)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	fmt.Printf("\n✓ Fixtures saved to %s\n", outputPath)

	if rf.metricsFile != "" {
		if err := opts.Recorder.WriteTextfile(rf.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		fmt.Printf("✓ Metrics written to %s\n", rf.metricsFile)
	}
	return nil
}

// printSkipped lists the match days the calendar left out of the season.
func printSkipped(w io.Writer, skips []calendar.Skipped) {
	for _, s := range skips {
		fmt.Fprintf(w, "  • Skipped %s: %s\n", s.Date.Format("Mon 01/02/2006"), s.Reason)
	}
}

func printReport(rep *schedule.Report) {
	fmt.Println("\nPer Team Metrics:")
	fmt.Printf("  %-15s %-15s %6s %4s %4s %4s %4s\n", "Division", "Team", "Games", "Home", "Away", "Byes", "Run")
	for _, m := range rep.Teams {
		fmt.Printf("  %-15s %-15s %6d %4d %4d %4d %4d\n", m.Division, m.Team, m.Games, m.Home, m.Away, m.Byes, m.LongestRun)
	}

	if len(rep.Warnings) > 0 {
		fmt.Printf("\nGuideline violations (%d):\n", len(rep.Warnings))
		for _, w := range rep.Warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	} else {
		fmt.Println("\n✓ No guideline violations")
	}
}

func runValidate(configPath, fixturesPath string, rf runFlags) error {
	cfg, err := loadConfig(configPath, rf.envFile)
	if err != nil {
		return err
	}
	l, dates, err := cfg.League()
	if err != nil {
		return err
	}

	violations, err := validator.Validate(l, fixturesPath, validator.Options{
		Weights: cfg.Run.Options().Weights,
		Dates:   dates,
	})
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	for _, v := range violations {
		where := ""
		if v.Row > 0 {
			where = fmt.Sprintf("row %d: ", v.Row)
		}
		switch v.Type {
		case "error":
			fmt.Printf("✗ Rule violation: %s%s\n", where, v.Message)
		case "warning":
			fmt.Printf("⚠ Guideline violation: %s%s\n", where, v.Message)
		}
	}
	errs, warnings := validator.Count(violations)
	fmt.Printf("\nValidation complete: %d rule violations, %d guideline violations\n", errs, warnings)

	// Regenerate byes and team sheets from the fixtures sheet
	if err := excel.UpdateTeamSheets(fixturesPath, l); err != nil {
		return fmt.Errorf("updating team sheets: %w", err)
	}
	fmt.Printf("✓ Team sheets updated in %s\n", fixturesPath)

	if errs > 0 {
		return fmt.Errorf("%d rule violations found", errs)
	}
	return nil
}
