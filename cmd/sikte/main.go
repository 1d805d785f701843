// Command sikte is the goal-tracking analytics engine CLI. It appends
// progress entries, sessions, and goal snapshots to a local append-only log
// and answers windowed statistics, category rollups, and date-range reports
// over it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hylla/sikte/internal/adapters/server"
	filestore "github.com/hylla/sikte/internal/adapters/storage/file"
	"github.com/hylla/sikte/internal/adapters/storage/sqlite"
	"github.com/hylla/sikte/internal/analytics"
	"github.com/hylla/sikte/internal/config"
	"github.com/hylla/sikte/internal/domain"
	"github.com/hylla/sikte/internal/platform"
	"github.com/hylla/sikte/internal/timeutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(os.Stdout, os.Stderr)); err != nil {
		os.Exit(1)
	}
}

// rootFlags holds persistent CLI options shared by every subcommand.
type rootFlags struct {
	configPath string
	storePath  string
	backend    string
	format     string
	devMode    bool
}

// runtime bundles the wired store and its collaborators for one invocation.
type runtime struct {
	store  *analytics.Store
	cfg    config.Config
	paths  platform.Paths
	logger *charmlog.Logger
	close  func() error
}

// newRootCmd builds the CLI command tree.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "sikte",
		Short:         "Personal goal-tracking analytics over a local append-only log",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&flags.storePath, "store", "", "path to the analytics log (file or sqlite db)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend: file or sqlite")
	root.PersistentFlags().StringVar(&flags.format, "format", "json", "output format: json or yaml")
	root.PersistentFlags().BoolVar(&flags.devMode, "dev", false, "use dev mode paths (sikte-dev)")

	root.AddCommand(
		newAddProgressCmd(flags, stdout, stderr),
		newAddSessionCmd(flags, stdout, stderr),
		newRecordGoalCmd(flags, stdout, stderr),
		newSyncGoalsCmd(flags, stdout, stderr),
		newHistoryCmd(flags, stdout, stderr),
		newStatsCmd(flags, stdout, stderr),
		newCategoriesCmd(flags, stdout, stderr),
		newReportCmd(flags, stdout, stderr),
		newExportCmd(flags, stdout, stderr),
		newImportCmd(flags, stdout, stderr),
		newServeCmd(flags, stderr),
		newPathsCmd(flags, stdout),
	)
	return root
}

// openRuntime resolves paths and config, then wires the store with the
// configured storage backend.
func openRuntime(ctx context.Context, flags *rootFlags, stderr io.Writer) (*runtime, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: "sikte",
		DevMode: flags.devMode,
	})
	if err != nil {
		return nil, err
	}

	configPath := flags.configPath
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("SIKTE_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	cfg, err := config.Load(configPath, config.Default(paths.LogPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if flags.backend != "" {
		cfg.Storage.Backend = config.StorageBackend(flags.backend)
	}
	if flags.storePath != "" {
		cfg.Storage.Path = flags.storePath
	} else if cfg.Storage.Backend == config.BackendSQLite && cfg.Storage.Path == paths.LogPath {
		cfg.Storage.Path = paths.DBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := charmlog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Logging.Level, err)
	}
	logger := charmlog.NewWithOptions(stderr, charmlog.Options{
		Level:           level,
		Prefix:          "sikte",
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	var (
		persister analytics.Persister
		closeFn   = func() error { return nil }
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		repo, openErr := sqlite.Open(cfg.Storage.Path)
		if openErr != nil {
			return nil, fmt.Errorf("open sqlite store: %w", openErr)
		}
		persister = repo
		closeFn = repo.Close
	default:
		store, openErr := filestore.New(cfg.Storage.Path)
		if openErr != nil {
			return nil, fmt.Errorf("open file store: %w", openErr)
		}
		persister = store
	}
	logger.Debug("storage backend ready", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	store := analytics.NewStore(ctx, persister, uuid.NewString, nil, logger)
	return &runtime{
		store:  store,
		cfg:    cfg,
		paths:  paths,
		logger: logger,
		close:  closeFn,
	}, nil
}

// emit writes one result in the selected output format.
func emit(stdout io.Writer, format string, payload any) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		defer func() { _ = enc.Close() }()
		return enc.Encode(payload)
	default:
		return fmt.Errorf("unknown output format: %q", format)
	}
}

// reportPersistWarning surfaces a persist failure without failing the append.
func reportPersistWarning(logger *charmlog.Logger, err error) {
	if err != nil && errors.Is(err, analytics.ErrPersistFailed) {
		logger.Warn("your latest change may not have been saved", "err", err)
	}
}

func newAddProgressCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		goalID  string
		value   float64
		notes   string
		dateRaw string
	)
	cmd := &cobra.Command{
		Use:   "add-progress",
		Short: "Append one progress entry to the log",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			date, err := parseOptionalDate(dateRaw)
			if err != nil {
				return err
			}
			entry, err := rt.store.AppendProgress(cmd.Context(), domain.ProgressInput{
				GoalID: goalID,
				Date:   date,
				Value:  value,
				Notes:  notes,
			})
			if err != nil && !errors.Is(err, analytics.ErrPersistFailed) {
				return err
			}
			reportPersistWarning(rt.logger, err)
			return emit(stdout, flags.format, entry)
		},
	}
	cmd.Flags().StringVar(&goalID, "goal", "", "goal identifier (required)")
	cmd.Flags().Float64Var(&value, "value", 0, "measured progress value")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes")
	cmd.Flags().StringVar(&dateRaw, "date", "", "entry date (RFC3339 or YYYY-MM-DD, default now)")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

func newAddSessionCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		duration    int
		sessionType string
		goalID      string
		completed   bool
		dateRaw     string
	)
	cmd := &cobra.Command{
		Use:   "add-session",
		Short: "Append one timed work/break/focus session to the log",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			date, err := parseOptionalDate(dateRaw)
			if err != nil {
				return err
			}
			session, err := rt.store.AppendSession(cmd.Context(), domain.SessionInput{
				Date:      date,
				Duration:  duration,
				GoalID:    goalID,
				Type:      domain.SessionType(sessionType),
				Completed: completed,
			})
			if err != nil && !errors.Is(err, analytics.ErrPersistFailed) {
				return err
			}
			reportPersistWarning(rt.logger, err)
			return emit(stdout, flags.format, session)
		},
	}
	cmd.Flags().IntVar(&duration, "duration", 0, "session length in minutes")
	cmd.Flags().StringVar(&sessionType, "type", "work", "session type: work, break, or focus")
	cmd.Flags().StringVar(&goalID, "goal", "", "optional goal identifier")
	cmd.Flags().BoolVar(&completed, "completed", false, "whether the session ran to completion")
	cmd.Flags().StringVar(&dateRaw, "date", "", "session date (RFC3339 or YYYY-MM-DD, default now)")
	return cmd
}

func newRecordGoalCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		goalID   string
		title    string
		category string
		target   float64
		current  float64
		unit     string
		priority string
		status   string
		archived bool
	)
	cmd := &cobra.Command{
		Use:   "record-goal",
		Short: "Append one goal snapshot to the history log",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			snapshot, err := rt.store.RecordGoalSnapshot(cmd.Context(), domain.Goal{
				ID:           goalID,
				Title:        title,
				Category:     category,
				TargetValue:  target,
				CurrentValue: current,
				Unit:         unit,
				Priority:     domain.Priority(priority),
				Status:       domain.GoalStatus(status),
				Archived:     archived,
			})
			if err != nil && !errors.Is(err, analytics.ErrPersistFailed) {
				return err
			}
			reportPersistWarning(rt.logger, err)
			return emit(stdout, flags.format, snapshot)
		},
	}
	cmd.Flags().StringVar(&goalID, "id", "", "goal identifier (required)")
	cmd.Flags().StringVar(&title, "title", "", "goal title (required)")
	cmd.Flags().StringVar(&category, "category", "", "goal category")
	cmd.Flags().Float64Var(&target, "target", 0, "target value")
	cmd.Flags().Float64Var(&current, "current", 0, "current value")
	cmd.Flags().StringVar(&unit, "unit", "", "unit of measure")
	cmd.Flags().StringVar(&priority, "priority", "", "priority: low, medium, or high")
	cmd.Flags().StringVar(&status, "status", "", "status: active, completed, or paused")
	cmd.Flags().BoolVar(&archived, "archived", false, "whether the goal is archived")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// fileGoalSource reads the goal-management collaborator's export file.
type fileGoalSource struct {
	path string
}

// ListGoals decodes the goal list JSON.
func (f fileGoalSource) ListGoals(_ context.Context) ([]domain.Goal, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read goals file: %w", err)
	}
	var goals []domain.Goal
	if err := json.Unmarshal(content, &goals); err != nil {
		return nil, fmt.Errorf("decode goals json: %w", err)
	}
	return goals, nil
}

func newSyncGoalsCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "sync-goals",
		Short: "Record snapshots for every goal in a goal-manager export",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			err = rt.store.SyncFrom(cmd.Context(), fileGoalSource{path: inPath})
			if err != nil && !errors.Is(err, analytics.ErrPersistFailed) {
				return err
			}
			reportPersistWarning(rt.logger, err)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "goal list JSON file (required)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newHistoryCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history <goal-id>",
		Short: "Show a goal's progress entries within a trailing window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()
			if !cmd.Flags().Changed("days") {
				days = rt.cfg.Windows.HistoryDays
			}
			return emit(stdout, flags.format, rt.store.GoalProgressHistory(args[0], days))
		},
	}
	cmd.Flags().IntVar(&days, "days", analytics.DefaultHistoryWindowDays, "trailing window in days")
	return cmd
}

func newStatsCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show rolling productivity statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()
			if !cmd.Flags().Changed("days") {
				days = rt.cfg.Windows.StatsDays
			}
			return emit(stdout, flags.format, rt.store.ProductivityStats(days))
		},
	}
	cmd.Flags().IntVar(&days, "days", analytics.DefaultStatsWindowDays, "trailing window in days")
	return cmd
}

func newCategoriesCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show per-category rollups over the whole log",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()
			return emit(stdout, flags.format, rt.store.CategoryAnalytics())
		},
	}
}

func newReportCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		startRaw string
		endRaw   string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a date-range report with summary, daily buckets, and breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			start, err := parseDayArg(startRaw, false)
			if err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
			end, err := parseDayArg(endRaw, true)
			if err != nil {
				return fmt.Errorf("parse --end: %w", err)
			}
			report, err := rt.store.GenerateReport(start, end)
			if err != nil {
				return fmt.Errorf("report could not be generated: %w", err)
			}
			return emit(stdout, flags.format, report)
		},
	}
	cmd.Flags().StringVar(&startRaw, "start", "", "range start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&endRaw, "end", "", "range end, YYYY-MM-DD inclusive (required)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newExportCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full versioned log as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			encoded, err := json.MarshalIndent(rt.store.ExportLog(), "", "  ")
			if err != nil {
				return fmt.Errorf("encode log json: %w", err)
			}
			encoded = append(encoded, '\n')
			if outPath == "-" {
				_, err = stdout.Write(encoded)
				return err
			}
			if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

func newImportCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the log from an exported JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var export analytics.LogExport
			if err := json.Unmarshal(content, &export); err != nil {
				return fmt.Errorf("decode log json: %w", err)
			}
			err = rt.store.ImportLog(cmd.Context(), export)
			if err != nil && !errors.Is(err, analytics.ErrPersistFailed) {
				return err
			}
			reportPersistWarning(rt.logger, err)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input log JSON file (required)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newServeCmd(flags *rootFlags, stderr io.Writer) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and MCP endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), flags, stderr)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			if bind == "" {
				bind = rt.cfg.Server.Bind
			}
			rt.logger.Info("serving analytics api", "bind", bind)
			return server.Run(cmd.Context(), server.Config{
				HTTPBind:       bind,
				ServerVersion:  version,
				AllowedOrigins: rt.cfg.Server.AllowedOrigins,
			}, rt.store)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (default from config)")
	return cmd
}

func newPathsCmd(flags *rootFlags, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show resolved config and data paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: "sikte",
				DevMode: flags.devMode,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "log: %s\n", paths.LogPath)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

// parseOptionalDate accepts RFC3339 timestamps or bare day keys; empty means
// "now" and is resolved by the store clock.
func parseOptionalDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	day, err := time.ParseInLocation(timeutil.DayFormat, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be RFC3339 or YYYY-MM-DD: %w", err)
	}
	return day, nil
}

// parseDayArg reads one required day argument, expanding an end day to its
// final second so the inclusive range covers it.
func parseDayArg(raw string, endOfDay bool) (time.Time, error) {
	day, err := time.ParseInLocation(timeutil.DayFormat, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Second), nil
	}
	return day, nil
}
