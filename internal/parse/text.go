// Package parse converts the loosely structured text printed by platform
// tools into normalized fact values. Every parser is total: malformed input
// yields an empty value, never a panic.
package parse

import (
	"net"
	"slices"
	"strconv"
	"strings"
)

// appendUnique appends the non-empty values missing from list, preserving
// first-seen order.
func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v == "" || slices.Contains(list, v) {
			continue
		}
		list = append(list, v)
	}
	return list
}

// field returns tokens[i] or "" when i is out of range.
func field(tokens []string, i int) string {
	if i < 0 || i >= len(tokens) {
		return ""
	}
	return tokens[i]
}

// after returns the token following the first exact occurrence of keyword.
func after(tokens []string, keyword string) string {
	i := slices.Index(tokens, keyword)
	if i < 0 {
		return ""
	}
	return field(tokens, i+1)
}

// cutLabel splits "Label: value" at the first colon. ok is false when the
// line has no colon or the label is empty.
func cutLabel(line, sep string) (label, value string, ok bool) {
	label, value, ok = strings.Cut(line, sep)
	label = strings.TrimSpace(label)
	if !ok || label == "" {
		return "", "", false
	}
	return label, strings.TrimSpace(value), true
}

// continuation reports whether line can continue a multi-line list: a
// single token that is not itself a "Label:" line. IPv6 values qualify
// because their colons are never followed by a space.
func continuation(line string) bool {
	if strings.Contains(line, ": ") || strings.HasSuffix(line, ":") {
		return false
	}
	return len(strings.Fields(line)) == 1
}

// splitHostPort splits "host:port" into host and an optional port. A value
// without a port is returned whole as the host.
func splitHostPort(value string) (string, *int) {
	value = strings.TrimSpace(value)
	if i := strings.Index(value, "://"); i >= 0 {
		value = value[i+3:]
	}
	value = strings.TrimSuffix(value, "/")
	host, portStr, err := net.SplitHostPort(value)
	if err != nil {
		return value, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, nil
	}
	return host, &port
}

// lines returns the trimmed, non-empty lines of text.
func lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
