package engine

import (
	"maps"
	"os"
	"strings"
)

// Env is a read-only snapshot of environment variables. Resolvers receive
// one explicitly instead of reading the process environment.
type Env struct {
	vars map[string]string
}

// SnapshotEnv captures the current process environment.
func SnapshotEnv() Env {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return Env{vars: vars}
}

// NewEnv builds a snapshot from a map. The map is copied.
func NewEnv(vars map[string]string) Env {
	return Env{vars: maps.Clone(vars)}
}

// Lookup returns the trimmed value of key. Keys holding only whitespace are
// reported as absent.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// First returns the value of the first key in keys that is present.
// Keys are matched case-sensitively in the order given.
func (e Env) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := e.Lookup(k); ok {
			return v, true
		}
	}
	return "", false
}
