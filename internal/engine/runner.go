package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Synthetic exit codes reported when a command never produced one of its own.
// They follow the shell conventions for the same conditions.
const (
	// ExitReadError is reported for file reads that failed.
	ExitReadError = 1

	// ExitTimeout is reported when the command was killed at its deadline
	// or its context was cancelled.
	ExitTimeout = 124

	// ExitNotPermitted is reported when the command is not allowlisted,
	// its arguments were rejected, or the binary could not be executed.
	ExitNotPermitted = 126

	// ExitNotFound is reported when the binary does not exist.
	ExitNotFound = 127
)

// DefaultTimeout bounds each command when neither the CommandSpec nor the
// runner options set one.
const DefaultTimeout = 10 * time.Second

// waitDelay bounds how long Run waits for output pipes after the process
// is killed, in case a grandchild still holds them open.
const waitDelay = time.Second

// Result is the outcome of one command invocation.
type Result struct {
	RC     int
	Stdout string
	Stderr string
}

// Runner executes an argument vector and always returns a Result.
// Implementations must never panic or return an error: every failure is
// expressed as a non-zero RC with an explanatory Stderr.
type Runner interface {
	Run(ctx context.Context, argv []string) Result
}

// CommandSpec defines the constraints for an allowlisted command.
type CommandSpec struct {
	// Path is the resolved absolute path to the command binary.
	// Resolved at construction time via exec.LookPath, with a hardcoded fallback.
	Path string

	// FallbackPath is the hardcoded path used when LookPath fails.
	FallbackPath string

	// AllowedFlags are the flags that can be passed. Anything starting with
	// "-" that is not listed here is rejected.
	AllowedFlags []string

	// MaxArgs is the maximum number of positional (non-flag) arguments allowed.
	MaxArgs int

	// Timeout overrides the runner timeout for this command when non-zero.
	Timeout time.Duration
}

// AllowlistRunner executes only pre-approved commands with validated arguments.
// Commands are never passed through a shell.
type AllowlistRunner struct {
	allowlist map[string]CommandSpec
	timeout   time.Duration
	log       logrus.FieldLogger
}

// RunnerOption configures an AllowlistRunner.
type RunnerOption func(*AllowlistRunner)

// WithTimeout sets the default per-command timeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *AllowlistRunner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger used for per-probe debug records.
func WithLogger(log logrus.FieldLogger) RunnerOption {
	return func(r *AllowlistRunner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithCommand adds or replaces an allowlist entry. The entry Path is used
// as is; it is not resolved through PATH.
func WithCommand(name string, spec CommandSpec) RunnerOption {
	return func(r *AllowlistRunner) {
		if spec.Path == "" {
			spec.Path = spec.FallbackPath
		}
		r.allowlist[name] = spec
	}
}

// resolveCommandPath attempts to find the command using exec.LookPath.
// Falls back to the provided default path if LookPath fails.
func resolveCommandPath(name, fallbackPath string) string {
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return fallbackPath
}

// NewAllowlistRunner creates a runner with the allowlist covering every probe
// the resolvers and checks issue on linux, darwin and windows.
func NewAllowlistRunner(opts ...RunnerOption) *AllowlistRunner {
	type entry struct {
		name         string
		fallbackPath string
		allowedFlags []string
		maxArgs      int
	}

	entries := []entry{
		// linux
		{"ip", "/usr/sbin/ip", nil, 3},
		{"route", "/sbin/route", []string{"-n", "-4"}, 2},
		{"netstat", "/usr/bin/netstat", []string{"-rn"}, 0},
		{"resolvectl", "/usr/bin/resolvectl", nil, 1},
		{"ufw", "/usr/sbin/ufw", nil, 2},
		{"firewall-cmd", "/usr/bin/firewall-cmd", []string{"--state"}, 0},
		{"lsblk", "/usr/bin/lsblk", []string{"-rno"}, 1},
		// darwin
		{"scutil", "/usr/sbin/scutil", []string{"--dns", "--proxy"}, 0},
		{"socketfilterfw", "/usr/libexec/ApplicationFirewall/socketfilterfw",
			[]string{"--getglobalstate", "--getstealthmode", "--getblockall"}, 0},
		{"fdesetup", "/usr/bin/fdesetup", nil, 1},
		// windows
		{"ipconfig", `C:\Windows\System32\ipconfig.exe`, nil, 1},
		{"netsh", `C:\Windows\System32\netsh.exe`, nil, 4},
		{"manage-bde", `C:\Windows\System32\manage-bde.exe`, []string{"-status"}, 1},
	}

	r := &AllowlistRunner{
		allowlist: make(map[string]CommandSpec, len(entries)),
		timeout:   DefaultTimeout,
		log:       logrus.StandardLogger(),
	}
	for _, e := range entries {
		r.allowlist[e.name] = CommandSpec{
			Path:         resolveCommandPath(e.name, e.fallbackPath),
			FallbackPath: e.fallbackPath,
			AllowedFlags: e.allowedFlags,
			MaxArgs:      e.maxArgs,
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsAllowed checks whether a command is in the allowlist.
func (r *AllowlistRunner) IsAllowed(cmd string) bool {
	_, ok := r.allowlist[cmd]
	return ok
}

// Run executes argv[0] with argv[1:] if the allowlist permits it.
// Output streams are trimmed of surrounding whitespace.
func (r *AllowlistRunner) Run(ctx context.Context, argv []string) Result {
	if len(argv) == 0 {
		return Result{RC: ExitNotPermitted, Stderr: "empty command"}
	}
	name, args := argv[0], argv[1:]

	spec, ok := r.allowlist[name]
	if !ok {
		return r.done(argv, Result{RC: ExitNotPermitted, Stderr: fmt.Sprintf("command %q not in allowlist", name)}, 0)
	}
	if err := ValidateArgs(spec, args); err != nil {
		return r.done(argv, Result{RC: ExitNotPermitted, Stderr: err.Error()}, 0)
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, spec.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.RC = ExitTimeout
		res.Stderr = fmt.Sprintf("timed out after %v", timeout)
	case errors.Is(ctx.Err(), context.Canceled):
		res.RC = ExitTimeout
		res.Stderr = "cancelled"
	case err == nil:
		res.RC = 0
	default:
		res.RC = exitCode(err)
		if res.Stderr == "" {
			res.Stderr = err.Error()
		}
	}

	return r.done(argv, res, elapsed)
}

func (r *AllowlistRunner) done(argv []string, res Result, elapsed time.Duration) Result {
	r.log.WithFields(logrus.Fields{
		"cmd":      strings.Join(argv, " "),
		"rc":       res.RC,
		"duration": elapsed,
	}).Debug("probe finished")
	return res
}

// exitCode maps an exec error onto a process exit code.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
		return 1
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return ExitNotFound
	}
	return ExitNotPermitted
}

// ValidateArgs checks that all arguments comply with the CommandSpec constraints.
func ValidateArgs(spec CommandSpec, args []string) error {
	positionalCount := 0

	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			if !slices.Contains(spec.AllowedFlags, arg) {
				return fmt.Errorf("flag %q not allowed for this command (allowed: %s)",
					arg, strings.Join(spec.AllowedFlags, ", "))
			}
		} else {
			positionalCount++
		}
	}

	if positionalCount > spec.MaxArgs {
		return fmt.Errorf("too many positional arguments: got %d, max %d",
			positionalCount, spec.MaxArgs)
	}

	return nil
}
