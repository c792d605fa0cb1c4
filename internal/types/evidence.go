package types

import "fmt"

// Evidence is the immutable record of a single probe attempt: the argument
// vector that was run (or a pseudo-command for file reads and environment
// lookups), its exit code and the raw, trimmed output streams.
type Evidence struct {
	// Cmd is the argument vector, e.g. ["ip", "route", "show", "default"].
	Cmd []string `json:"cmd" yaml:"cmd"`

	// RC is the exit code. Synthetic codes are used for timeouts and
	// missing binaries (see engine.ExitTimeout and friends).
	RC int `json:"rc" yaml:"rc"`

	// Stdout is the captured standard output, trimmed of surrounding whitespace.
	Stdout string `json:"stdout" yaml:"stdout"`

	// Stderr is the captured standard error, trimmed of surrounding whitespace.
	Stderr string `json:"stderr" yaml:"stderr"`
}

// OK reports whether the probe exited zero with non-blank output.
func (e Evidence) OK() bool {
	return e.RC == 0 && e.Stdout != ""
}

// ErrorKind classifies why a probe or resolver could not produce a value.
type ErrorKind string

const (
	// ErrProbeUnavailable means the source could not be invoked at all:
	// binary missing, permission denied, not allowlisted or timed out.
	ErrProbeUnavailable ErrorKind = "probe_unavailable"
	// ErrProbeFailed means the source ran but exited non-zero or printed nothing.
	ErrProbeFailed ErrorKind = "probe_failed"
	// ErrParseInconclusive means the source succeeded but its output matched no known pattern.
	ErrParseInconclusive ErrorKind = "parse_inconclusive"
	// ErrResourceReadError means a file could not be opened or read.
	ErrResourceReadError ErrorKind = "resource_read_error"
)

// ProbeError carries an ErrorKind together with the source that produced it.
// It is used to aggregate attempt failures into a single fact error.
type ProbeError struct {
	Kind    ErrorKind
	Source  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Source, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Source, e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *ProbeError) Unwrap() error {
	return e.Cause
}
