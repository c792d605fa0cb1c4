// Package main is the entry point for hostaudit, which reports the network
// facts and security posture of the machine it runs on.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/ancients-collective/hostaudit/internal/audit"
	"github.com/ancients-collective/hostaudit/internal/checks"
	"github.com/ancients-collective/hostaudit/internal/config"
	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/inventory"
	"github.com/ancients-collective/hostaudit/internal/output"
	"github.com/ancients-collective/hostaudit/internal/platform"
	"github.com/ancients-collective/hostaudit/internal/report"
	"github.com/ancients-collective/hostaudit/internal/resolver"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries the state shared by the root command and its run.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	cfgFile    string
	listChecks bool

	code int
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "  ✗ %v\n", err)
		return 1
	}
	return a.code
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostaudit",
		Short: "Report network facts and security posture of this host",
		Long: `hostaudit resolves the default route, DNS and proxy configuration of the
machine it runs on, collects a host inventory, and scores the firewall and
disk-encryption controls. Every fact carries the evidence it was derived from.

Exit codes: 0 = all checks pass, 1 = at least one check failed,
2 = warnings or checks that could not be verified.`,
		Example: `  hostaudit                                Audit this host
  hostaudit --show findings                Only results that need attention
  hostaudit --id firewall                  Run a single check
  hostaudit --list-checks                  List check IDs for this platform
  hostaudit --format json -o audit.json    Write the full report to a file
  hostaudit --format yaml                  YAML report on stdout
  hostaudit -q && echo clean               Scripting with exit code`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.code = a.run(cmd.Context(), cfg)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&a.cfgFile, "config", "", "Config file (default: ./hostaudit.yaml, then $HOME/.hostaudit.yaml)")
	fs.BoolVar(&a.listChecks, "list-checks", false, "List the check IDs available on this platform and exit")
	fs.StringP("format", "f", "text", "Output format: text, json, jsonl, yaml")
	fs.StringP("output", "o", "", "Write the report to a file (default: stdout)")
	fs.StringP("show", "s", output.ShowAll, "Which results to display: all, findings, fail, pass")
	fs.String("id", "", "Run a single check by its ID")
	fs.Bool("no-color", false, "Disable colored output")
	fs.BoolP("quiet", "q", false, "Suppress output, exit code only (0 = pass, 1 = fail, 2 = unverified)")
	fs.Duration("timeout", config.DefaultTimeout, "Timeout for each probe command")
	fs.Bool("debug", false, "Enable debug logging and show probe commands")
	fs.String("log-format", "text", "Log format on stderr: text, json")

	for key, flag := range map[string]string{
		config.KeyFormat:    "format",
		config.KeyOutput:    "output",
		config.KeyShow:      "show",
		config.KeyID:        "id",
		config.KeyNoColor:   "no-color",
		config.KeyQuiet:     "quiet",
		config.KeyTimeout:   "timeout",
		config.KeyDebug:     "debug",
		config.KeyLogFormat: "log-format",
	} {
		_ = a.v.BindPFlag(key, fs.Lookup(flag))
	}

	return cmd
}

// run executes the audit with the given configuration and returns an exit code.
func (a *app) run(ctx context.Context, cfg config.Config) int {
	started := time.Now()

	log := newLogger(cfg, a.stderr)
	if cfg.File != "" {
		log.WithField("file", cfg.File).Debug("config loaded")
	}
	isDumb := setupOutputOptions(cfg)

	if cfg.Output != "" {
		if err := report.ValidateOutputPath(cfg.Output); err != nil {
			a.errorf("Unsafe output path: %v", err)
			return 1
		}
	}

	files := engine.OSFileReader{}
	sc, warnings, err := platform.Detect(platform.NewDetector(files, log), log)
	if err != nil {
		a.errorf("Failed to detect system context: %v", err)
		return 1
	}
	goos := sc.OS.Name

	runner := engine.NewAllowlistRunner(engine.WithTimeout(cfg.Timeout), engine.WithLogger(log))
	registry := checks.New(goos, runner, cfg.Scoring.Checks())

	if a.listChecks {
		printCheckList(a.stdout, registry, cfg.Scoring.Checks(), goos)
		return 0
	}

	resolvers := resolver.New(goos, resolver.Deps{
		Runner: runner,
		Files:  files,
		Env:    engine.SnapshotEnv(),
		Log:    log,
	})
	auditor := audit.New(resolvers, inventory.New(inventory.System(), log), registry, log)

	showProgress := cfg.Format == "text" && !cfg.Quiet && cfg.Output == ""
	if showProgress {
		fmt.Fprintf(a.stderr, "\n")
		auditor.Progress = func(done, total int) {
			fmt.Fprintf(a.stderr, "\r  Auditing... %d/%d", done, total)
		}
	}

	res, err := auditor.Run(ctx, cfg.ID)
	if err != nil {
		var unknown *audit.UnknownCheckError
		if errors.As(err, &unknown) {
			a.reportUnknownCheck(unknown)
			return 1
		}
		a.errorf("Audit failed: %v", err)
		return 1
	}
	if showProgress {
		fmt.Fprintf(a.stderr, "\r  Auditing... done    \n")
	}

	if cfg.ID != "" {
		cfg.Show = output.ShowAll
	}

	rep := report.Build(report.Input{
		Version:   version,
		StartedAt: started,
		Duration:  time.Since(started),
		IsRoot:    platform.IsPrivileged(),
		CheckID:   cfg.ID,
		Warnings:  warnings,
		Host:      sc.Identity(),
		Facts:     res.Facts,
		Checks:    res.Checks,
	})

	if cfg.Quiet {
		return exitCode(rep.Summary)
	}
	return a.writeReport(cfg, rep, isDumb)
}

// newLogger configures the diagnostic logger. Logs always go to stderr so
// they never mix with a report on stdout.
func newLogger(cfg config.Config, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Quiet && !cfg.Debug {
		level = logrus.ErrorLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors:    cfg.NoColor,
			DisableTimestamp: !cfg.Debug,
		})
	}
	return log
}

// setupOutputOptions configures color and reports whether the terminal is dumb.
func setupOutputOptions(cfg config.Config) bool {
	isDumb := output.IsDumbTerm()
	if cfg.NoColor || cfg.Format != "text" || cfg.Output != "" || isDumb {
		color.NoColor = true
	}
	return isDumb
}

// reportUnknownCheck explains a --id that matched nothing.
func (a *app) reportUnknownCheck(err *audit.UnknownCheckError) {
	fmt.Fprintf(a.stderr, "  ✗ No check found with ID %q\n", err.ID)
	if suggestions := suggestIDs(err.ID, err.Known); len(suggestions) > 0 {
		fmt.Fprintf(a.stderr, "\n  Did you mean:\n")
		for _, s := range suggestions {
			fmt.Fprintf(a.stderr, "    • %s\n", s)
		}
	}
	fmt.Fprintf(a.stderr, "\n  Use --list-checks to see all available check IDs.\n")
}

// writeReport formats and writes the report to stdout or a file.
func (a *app) writeReport(cfg config.Config, rep *types.AuditReport, isDumb bool) int {
	formatter, err := output.New(cfg.Format, output.TextFormatter{
		Show:     cfg.Show,
		Width:    a.termWidth(cfg),
		Dumb:     isDumb,
		Evidence: cfg.Debug,
	})
	if err != nil {
		a.errorf("%v", err)
		return 1
	}

	if cfg.Output == "" {
		if err := formatter.Write(a.stdout, rep); err != nil {
			a.errorf("Failed to write output: %v", err)
			return 1
		}
		return exitCode(rep.Summary)
	}

	err = report.WriteFile(cfg.Output, func(w io.Writer) error {
		return formatter.Write(w, rep)
	})
	if err != nil {
		a.errorf("Failed to write %s: %v", cfg.Output, err)
		return 1
	}

	s := rep.Summary
	fmt.Fprintf(a.stderr, "  ✓ Audit complete: %d passed · %d warned · %d failed · score %d/100, written to %s\n",
		s.Passed, s.Warned, s.Failed, rep.Score, cfg.Output)
	return exitCode(s)
}

// termWidth returns the width of stdout when it is a terminal and the
// text report goes there, 0 otherwise.
func (a *app) termWidth(cfg config.Config) int {
	if cfg.Output != "" || cfg.Format != "text" {
		return 0
	}
	f, ok := a.stdout.(*os.File)
	if !ok {
		return 0
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return 0
}

func (a *app) errorf(format string, args ...any) {
	fmt.Fprintf(a.stderr, "  ✗ "+format+"\n", args...)
}

// exitCode returns the hostaudit exit code: 0 = all PASS or INFO, 1 = any
// FAIL, 2 = only WARN or NOT_CHECKED beyond that.
func exitCode(s types.ReportSummary) int {
	if s.Failed > 0 {
		return 1
	}
	if s.Warned > 0 || s.NotChecked > 0 {
		return 2
	}
	return 0
}

// printCheckList prints a table of the checks available on goos.
func printCheckList(w io.Writer, registry *checks.Registry, scoring checks.Scoring, goos string) {
	list := registry.Checks()

	maxID := 0
	for _, c := range list {
		maxID = max(maxID, len(c.ID))
	}

	fmt.Fprintf(w, "\n  Available checks on %s (%d):\n\n", goos, len(list))
	for _, c := range list {
		fmt.Fprintf(w, "    %-*s  weight %-3d  %s\n", maxID, c.ID, scoring.Weight(c.ID), c.Name)
	}
	fmt.Fprintln(w)
}
