// Package main provides the CLI entrypoint for lingua.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/lingua/internal/config"
	"github.com/verte-zerg/lingua/internal/deck"
	"github.com/verte-zerg/lingua/internal/eval"
	"github.com/verte-zerg/lingua/internal/model"
	"github.com/verte-zerg/lingua/internal/scheduler"
	"github.com/verte-zerg/lingua/internal/stats"
	"github.com/verte-zerg/lingua/internal/store"
	"github.com/verte-zerg/lingua/internal/tracker"
	"github.com/verte-zerg/lingua/internal/tui"
)

const (
	defaultDataset     = "en_tr"
	defaultDirection   = "forward"
	defaultMode        = "choice"
	defaultOptions     = 4
	defaultStatsWindow = 10
	defaultHardestTop  = 10
	defaultTermWidth   = 80
)

var (
	practiceDataset   string
	practiceDeck      string
	practiceLevel     string
	practiceDirection string
	practiceMode      string
	practiceOptions   int
	practiceSeed      int64
	practiceMemory    bool

	statsDataset   string
	statsDeck      string
	statsLevel     string
	statsDirection string
	statsSince     string
	statsLast      int
	statsWindow    int

	resetDataset   string
	resetDeck      string
	resetLevel     string
	resetDirection string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lingua",
		Short:         "Adaptive vocabulary drill",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}
	rootCmd.Flags().StringVar(&practiceDataset, "dataset", defaultDataset, "built-in dataset name")
	rootCmd.Flags().StringVar(&practiceDeck, "deck", "", "TSV deck file (overrides --dataset)")
	rootCmd.Flags().StringVar(&practiceLevel, "level", "", "only practice items of this level (e.g. A1)")
	rootCmd.Flags().StringVar(&practiceDirection, "direction", defaultDirection, "forward or reverse")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "choice or write")
	rootCmd.Flags().IntVar(&practiceOptions, "options", defaultOptions, "number of choices in choice mode")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed (0 = time seeded)")
	rootCmd.Flags().BoolVar(&practiceMemory, "memory", false, "keep progress in memory only")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDatasetsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "dataset", &practiceDataset, fileCfg.Practice.Dataset)
	applyStringConfig(cmd, "deck", &practiceDeck, fileCfg.Practice.Deck)
	applyStringConfig(cmd, "level", &practiceLevel, fileCfg.Practice.Level)
	applyStringConfig(cmd, "direction", &practiceDirection, fileCfg.Practice.Direction)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "options", &practiceOptions, fileCfg.Practice.Options)

	params := scheduler.DefaultParams()
	if fileCfg.Scheduler.RecencyCap != nil {
		params.RecencyCap = *fileCfg.Scheduler.RecencyCap
	}
	if fileCfg.Scheduler.MinElapsed != nil {
		params.MinElapsedSeconds = *fileCfg.Scheduler.MinElapsed
	}

	cfg := model.Config{
		Dataset:    practiceDataset,
		DeckPath:   practiceDeck,
		Level:      practiceLevel,
		Direction:  practiceDirection,
		Mode:       practiceMode,
		Options:    practiceOptions,
		Seed:       practiceSeed,
		MemoryOnly: practiceMemory,
		RecencyCap: params.RecencyCap,
		MinElapsed: params.MinElapsedSeconds,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	dir, err := deck.ParseDirection(cfg.Direction)
	if err != nil {
		return fmt.Errorf("invalid --direction: %w", err)
	}
	mode, _ := eval.ParseMode(cfg.Mode)

	d, err := loadDeck(cfg.Dataset, cfg.DeckPath)
	if err != nil {
		return err
	}
	items := d.Items(dir, cfg.Level)
	if len(items) == 0 {
		return fmt.Errorf("no items in %s for level %q (levels: %s)", d.Name, cfg.Level, strings.Join(d.Levels(), ", "))
	}
	scope := d.Scope(cfg.Level, dir)

	var kv tracker.KV
	var answers tui.AnswerLog
	if cfg.MemoryOnly {
		kv = tracker.NewMemoryKV()
	} else {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		kv = st.KV()
		answers = st
	}

	// Tracker warnings are held back while the alt screen owns the terminal.
	var warnings bytes.Buffer
	tr := tracker.New(scope, kv, tracker.WithLog(&warnings))
	schedOpts := []scheduler.Option{scheduler.WithParams(params)}
	if cfg.Seed != 0 {
		schedOpts = append(schedOpts, scheduler.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}

	m := tui.NewModel(tui.Params{
		DeckName:    d.Name,
		Direction:   string(dir),
		AnswerLabel: d.AnswerLabel(dir),
		Items:       items,
		Tracker:     tr,
		Scheduler:   scheduler.New(schedOpts...),
		Log:         answers,
		RunID:       store.NewRunID(),
		Mode:        mode,
		OptionCount: cfg.Options,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := program.Run()
	flushWarnings(&warnings)
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

func flushWarnings(buf *bytes.Buffer) {
	if buf.Len() == 0 {
		return
	}
	if _, err := buf.WriteTo(os.Stderr); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats for a dataset",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDataset, "dataset", defaultDataset, "built-in dataset name")
	cmd.Flags().StringVar(&statsDeck, "deck", "", "TSV deck file (overrides --dataset)")
	cmd.Flags().StringVar(&statsLevel, "level", "", "level filter")
	cmd.Flags().StringVar(&statsDirection, "direction", defaultDirection, "forward or reverse")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsWindow, "window", defaultStatsWindow, "moving average and recent-accuracy window in runs")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsWindow < 0 {
		return fmt.Errorf("--window must be >= 0")
	}
	dir, err := deck.ParseDirection(statsDirection)
	if err != nil {
		return fmt.Errorf("invalid --direction: %w", err)
	}
	d, err := loadDeck(statsDataset, statsDeck)
	if err != nil {
		return err
	}
	items := d.Items(dir, statsLevel)
	cfg := model.StatsConfig{
		Scope:  d.Scope(statsLevel, dir),
		Since:  sinceTime,
		Last:   statsLast,
		Window: statsWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	state := tracker.New(cfg.Scope, st.KV(), tracker.WithLog(os.Stderr)).State()

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, cfg.Scope, len(items), report.Totals, report.Runs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderAccuracyCurve(out, report.Runs, cfg.Window, terminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	rows := stats.HardestItems(items, state, report.Items, report.ItemsWindow, defaultHardestTop)
	if err := stats.RenderItemTable(out, rows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget progress for a dataset",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().StringVar(&resetDataset, "dataset", defaultDataset, "built-in dataset name")
	cmd.Flags().StringVar(&resetDeck, "deck", "", "TSV deck file (overrides --dataset)")
	cmd.Flags().StringVar(&resetLevel, "level", "", "level filter")
	cmd.Flags().StringVar(&resetDirection, "direction", defaultDirection, "forward or reverse")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	dir, err := deck.ParseDirection(resetDirection)
	if err != nil {
		return fmt.Errorf("invalid --direction: %w", err)
	}
	d, err := loadDeck(resetDataset, resetDeck)
	if err != nil {
		return err
	}
	scope := d.Scope(resetLevel, dir)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	tracker.New(scope, st.KV(), tracker.WithLog(os.Stderr)).Clear()
	if err := st.DeleteAnswers(context.Background(), scope); err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", scope); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List built-in datasets",
		Args:  cobra.NoArgs,
		RunE:  runDatasetsCmd,
	}
}

func runDatasetsCmd(cmd *cobra.Command, _ []string) error {
	for _, name := range deck.Names() {
		d, err := deck.Load(name)
		if err != nil {
			logErrf("skipping %s: %v\n", name, err)
			continue
		}
		line := fmt.Sprintf("%s\t%s → %s\t%d items", name, d.SourceLabel, d.TargetLabel, len(d.Entries))
		if levels := d.Levels(); len(levels) > 0 {
			line += "\t" + strings.Join(levels, ",")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// loadDeck prefers a deck file over a built-in dataset. Relative deck paths
// that do not exist are looked up in the user deck directory.
func loadDeck(dataset, deckPath string) (deck.Deck, error) {
	if deckPath == "" {
		d, err := deck.Load(dataset)
		if err != nil {
			if errors.Is(err, deck.ErrUnknownDataset) {
				logErrln("Run: lingua datasets")
			}
			return deck.Deck{}, fmt.Errorf("failed to load dataset: %w", err)
		}
		return d, nil
	}
	path := resolveDeckPath(deckPath)
	d, err := deck.LoadFile(path)
	if err != nil {
		return deck.Deck{}, fmt.Errorf("failed to load deck %s: %w", path, err)
	}
	return d, nil
}

func resolveDeckPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	candidate := filepath.Join(config.DefaultDeckDir(), p)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return p
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultTermWidth
	}
	return width
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	params := scheduler.DefaultParams()
	return fmt.Sprintf(`# lingua configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# dataset = %q         # Built-in dataset (see: lingua datasets)
# deck = "words.tsv"      # TSV deck file, relative paths also searched in %s
# level = "A1"            # Only practice items of this level
# direction = %q     # forward or reverse
# mode = %q           # choice or write
# options = %d             # Number of choices in choice mode

[scheduler]
# recency-cap = %.0f         # Upper bound of the time-decay multiplier
# min-elapsed = %.0f         # Floor for seconds since an item was last seen
`,
		defaultDataset,
		config.DefaultDeckDir(),
		defaultDirection,
		defaultMode,
		defaultOptions,
		params.RecencyCap,
		params.MinElapsedSeconds,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Dataset == "" && cfg.DeckPath == "" {
		return fmt.Errorf("--dataset must not be empty")
	}
	if _, ok := eval.ParseMode(cfg.Mode); !ok {
		return fmt.Errorf("--mode must be choice or write")
	}
	if cfg.Options < 2 {
		return fmt.Errorf("--options must be >= 2")
	}
	// Negated so NaN is rejected too.
	if !(cfg.RecencyCap >= 1) {
		return fmt.Errorf("recency-cap must be >= 1")
	}
	if !(cfg.MinElapsed > 0) {
		return fmt.Errorf("min-elapsed must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
