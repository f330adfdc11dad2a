// Package main provides the CLI entrypoint for minirace.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/minirace/internal/collect"
	"github.com/verte-zerg/minirace/internal/config"
	"github.com/verte-zerg/minirace/internal/export"
	"github.com/verte-zerg/minirace/internal/logging"
	"github.com/verte-zerg/minirace/internal/model"
	"github.com/verte-zerg/minirace/internal/nyt"
	"github.com/verte-zerg/minirace/internal/report"
	"github.com/verte-zerg/minirace/internal/statsui"
	"github.com/verte-zerg/minirace/internal/store"
)

const (
	formatCSV    = "csv"
	formatSQLite = "sqlite"
)

type globalOptions struct {
	configPath  string
	concurrency int
	onInvalid   string
	logLevel    string
}

type rangeOptions struct {
	from string
	to   string
	days int
}

type statsOptions struct {
	rangeOptions
	plot        bool
	extended    bool
	tui         bool
	curveWindow int
}

type exportOptions struct {
	rangeOptions
	format string
	out    string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:           "minirace",
		Short:         "Daily mini crossword race between friends",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initLogging(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.IntVar(&opts.concurrency, "concurrency", config.DefaultConcurrency, "parallel result fetches")
	flags.StringVar(&opts.onInvalid, "on-invalid", config.OnInvalidAbort, "invalid record policy (abort|default)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newPlayersCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

func initLogging(cmd *cobra.Command, opts *globalOptions) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return err
	}
	level := envCfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = opts.logLevel
	}
	logging.Init(logging.Options{Level: level, Format: envCfg.LogFormat})
	return nil
}

func loadSettings(cmd *cobra.Command, opts *globalOptions) (config.Settings, error) {
	fileCfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return config.Settings{}, err
	}
	settings, err := config.Resolve(fileCfg, envCfg)
	if err != nil {
		return config.Settings{}, err
	}
	if cmd.Flags().Changed("concurrency") {
		settings.Concurrency = opts.concurrency
	}
	if cmd.Flags().Changed("on-invalid") {
		settings.OnInvalid = strings.ToLower(strings.TrimSpace(opts.onInvalid))
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func addRangeFlags(cmd *cobra.Command, opts *rangeOptions) {
	cmd.Flags().StringVar(&opts.from, "from", "", "first puzzle date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.to, "to", "", "last puzzle date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&opts.days, "days", config.DefaultDays, "number of days when --from is not set")
}

// resolveRange turns range flags into an inclusive date range. Without
// --from the range covers days days ending at --to.
func resolveRange(opts rangeOptions, days int, now time.Time) (time.Time, time.Time, error) {
	to := model.Day(now)
	if opts.to != "" {
		parsed, err := model.ParseDate(opts.to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value: %w", err)
		}
		to = parsed
	}
	if days < 1 {
		return time.Time{}, time.Time{}, fmt.Errorf("--days must be >= 1")
	}
	from := to.AddDate(0, 0, -(days - 1))
	if opts.from != "" {
		parsed, err := model.ParseDate(opts.from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value: %w", err)
		}
		from = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", model.FormatDate(from), model.FormatDate(to))
	}
	return from, to, nil
}

func collectRun(ctx context.Context, settings config.Settings, from, to time.Time) (model.Run, error) {
	log := logging.L()
	client := nyt.NewClient(settings.BaseURL, settings.Timeout)
	collector, err := collect.New(client, settings.Players, log)
	if err != nil {
		return model.Run{}, err
	}
	log.Debug("starting run",
		zap.String("from", model.FormatDate(from)),
		zap.String("to", model.FormatDate(to)),
		zap.Strings("players", config.PlayerNames(settings.Players)),
		zap.Int("concurrency", settings.Concurrency))
	run, err := collector.Run(ctx, model.RunConfig{
		From:        from,
		To:          to,
		Concurrency: settings.Concurrency,
		SkipInvalid: settings.OnInvalid == config.OnInvalidDefault,
	})
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to collect results: %w", err)
	}
	return run, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newStatsCmd(global *globalOptions) *cobra.Command {
	opts := &statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch results and show the race",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatsCmd(cmd, global, opts)
		},
	}
	addRangeFlags(cmd, &opts.rangeOptions)
	cmd.Flags().BoolVar(&opts.plot, "plot", false, "print cumulative win and solve time curves")
	cmd.Flags().BoolVar(&opts.extended, "extended", false, "print median, spread and win streaks")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "browse the results interactively")
	cmd.Flags().IntVar(&opts.curveWindow, "curve-window", config.DefaultCurveWindow, "moving average window for solve time curves")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, global *globalOptions, opts *statsOptions) error {
	settings, err := loadSettings(cmd, global)
	if err != nil {
		return err
	}
	days, window := settings.Days, settings.CurveWindow
	if cmd.Flags().Changed("days") {
		days = opts.days
	}
	if cmd.Flags().Changed("curve-window") {
		window = opts.curveWindow
	}
	if window < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	from, to, err := resolveRange(opts.rangeOptions, days, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	run, err := collectRun(ctx, settings, from, to)
	if err != nil {
		return err
	}

	if opts.tui {
		program := tea.NewProgram(statsui.NewModel(run, window), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}
	return printStats(cmd.OutOrStdout(), run, opts, window)
}

func printStats(w io.Writer, run model.Run, opts *statsOptions, window int) error {
	if err := report.WriteTimeline(w, run.Timeline); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.WriteSummaries(w, run.Summaries); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if opts.extended {
		if err := report.WriteExtended(w, run.Timeline); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if opts.plot {
		if err := report.WritePlots(w, run.Timeline, window, 0, 0, false); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newExportCmd(global *globalOptions) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch results and export them as CSV or SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExportCmd(cmd, global, opts)
		},
	}
	addRangeFlags(cmd, &opts.rangeOptions)
	cmd.Flags().StringVar(&opts.format, "format", formatCSV, "export format (csv|sqlite)")
	cmd.Flags().StringVar(&opts.out, "out", "", "output path (csv default: stdout, sqlite default: data dir)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, global *globalOptions, opts *exportOptions) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != formatCSV && format != formatSQLite {
		return fmt.Errorf("--format must be %q or %q", formatCSV, formatSQLite)
	}
	settings, err := loadSettings(cmd, global)
	if err != nil {
		return err
	}
	days := settings.Days
	if cmd.Flags().Changed("days") {
		days = opts.days
	}
	from, to, err := resolveRange(opts.rangeOptions, days, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	run, err := collectRun(ctx, settings, from, to)
	if err != nil {
		return err
	}

	if format == formatSQLite {
		return exportSQLite(ctx, run, opts.out)
	}
	return exportCSV(cmd.OutOrStdout(), run, opts.out)
}

func exportCSV(stdout io.Writer, run model.Run, path string) error {
	if path == "" || path == "-" {
		return export.WriteCSV(stdout, run.Timeline)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCSV(f, run.Timeline); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	logging.L().Info("wrote csv export", zap.String("path", path), zap.Int("days", len(run.Timeline.Days)))
	return nil
}

func exportSQLite(ctx context.Context, run model.Run, path string) error {
	if path == "" {
		path = filepath.Join(config.DefaultExportDir(), "minirace.db")
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logging.L().Warn("failed to close db", zap.Error(cerr))
		}
	}()
	id, err := st.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logging.L().Info("wrote sqlite export", zap.String("path", path), zap.Int64("run", id))
	return nil
}

func newPlayersCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List configured players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd, global)
			if err != nil {
				return err
			}
			for i, name := range config.PlayerNames(settings.Players) {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, name); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			return nil
		},
	}
}

func newConfigCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigCmd(global.configPath)
		},
	}
}

func runConfigCmd(path string) error {
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# minirace configuration
# Uncomment a value to enable it. Environment variables override config
# values and CLI flags override both.

# tokens-file = %q   # Used when no [[players]] are listed

[fetch]
# base-url = %q
# concurrency = %d          # Parallel result fetches
# timeout = %q            # Per-request timeout
# on-invalid = %q        # abort | default (treat unreadable times as unsolved)

[stats]
# days = %d                 # Days shown when --from is not set
# curve-window = %d         # Moving average window for solve time curves

# Players in display order. The first player's token lists the puzzles.
# [[players]]
# name = "Ben"
# token-env = "BEN_NYT_S"   # or token = "<nyt-s cookie>"
`,
		config.DefaultTokensPath(),
		config.DefaultBaseURL,
		config.DefaultConcurrency,
		config.DefaultTimeout.String(),
		config.OnInvalidAbort,
		config.DefaultDays,
		config.DefaultCurveWindow,
	)
}
