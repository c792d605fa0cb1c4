package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// Record turns one command invocation into an Evidence value.
// It never fails and copies argv so later mutation by the caller cannot
// alter the record.
func Record(argv []string, res Result) types.Evidence {
	return types.Evidence{
		Cmd:    slices.Clone(argv),
		RC:     res.RC,
		Stdout: res.Stdout,
		Stderr: res.Stderr,
	}
}

// RecordRead turns a file read into an Evidence value shaped like a command
// probe: Cmd is ["read", path], Stdout the trimmed content, and a failed
// read carries ExitReadError with the error text on Stderr.
func RecordRead(path string, data []byte, err error) types.Evidence {
	ev := types.Evidence{Cmd: []string{"read", path}}
	if err != nil {
		ev.RC = ExitReadError
		ev.Stderr = err.Error()
		return ev
	}
	ev.Stdout = strings.TrimSpace(string(data))
	return ev
}

// RecordEnv records which of keys are present in env. Values are never
// captured: proxy URLs routinely embed credentials.
func RecordEnv(env Env, keys ...string) types.Evidence {
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		state := "unset"
		if _, ok := env.Lookup(k); ok {
			state = "set"
		}
		lines = append(lines, fmt.Sprintf("%s=%s", k, state))
	}
	return types.Evidence{
		Cmd:    append([]string{"env"}, keys...),
		RC:     0,
		Stdout: strings.Join(lines, "\n"),
	}
}

// RecordCall turns a library call into an Evidence value: Cmd is
// ["call", name] and Stdout a short summary of what it returned. A
// permission error carries ExitNotPermitted, any other error ExitReadError.
func RecordCall(name, summary string, err error) types.Evidence {
	ev := types.Evidence{Cmd: []string{"call", name}}
	if err != nil {
		ev.RC = ExitReadError
		if IsPermission(err) {
			ev.RC = ExitNotPermitted
		}
		ev.Stderr = strings.TrimSpace(err.Error())
		return ev
	}
	ev.Stdout = strings.TrimSpace(summary)
	return ev
}

// IsPermission reports whether err stems from missing privileges.
func IsPermission(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range []string{"permission denied", "operation not permitted", "access is denied", "access denied"} {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Classify reports why an evidence record is not usable as parser input.
// It returns an empty kind when the probe succeeded with output.
func Classify(ev types.Evidence) (types.ErrorKind, string) {
	switch {
	case ev.OK():
		return "", ""
	case len(ev.Cmd) > 0 && ev.Cmd[0] == "read" && ev.RC != 0:
		return types.ErrResourceReadError, ev.Stderr
	case len(ev.Cmd) > 0 && ev.Cmd[0] == "call" && ev.RC == ExitReadError:
		return types.ErrProbeFailed, ev.Stderr
	case ev.RC == ExitTimeout, ev.RC == ExitNotPermitted, ev.RC == ExitNotFound:
		return types.ErrProbeUnavailable, ev.Stderr
	case ev.RC != 0:
		msg := fmt.Sprintf("exited with status %d", ev.RC)
		if ev.Stderr != "" {
			msg += ": " + ev.Stderr
		}
		return types.ErrProbeFailed, msg
	default:
		return types.ErrProbeFailed, "produced no output"
	}
}
