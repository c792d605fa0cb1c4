package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ancients-collective/hostaudit/internal/types"
)

func TestJSONFormatter_RoundTrip(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer

	require.NoError(t, (&JSONFormatter{}).Write(&buf, report))

	var decoded types.AuditReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Empty(t, cmp.Diff(*report, decoded, cmpopts.EquateEmpty()))
}

func TestJSONFormatter_NoHTMLEscaping(t *testing.T) {
	report := newTestReport()
	report.Checks[0].Findings[0].Remediation = "run `a && b` <as root>"
	var buf bytes.Buffer

	require.NoError(t, (&JSONFormatter{}).Write(&buf, report))
	assert.Contains(t, buf.String(), "run `a && b` <as root>")
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"meta\""), "pretty-printed")
}

func TestJSONFormatter_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Write(&buf, newEmptyReport()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []any{}, doc["checks"])
	assert.EqualValues(t, 0, doc["score"])
}

func jsonlLines(t *testing.T, f *JSONLFormatter, report *types.AuditReport) []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf, report))

	var lines []map[string]any
	scanner := bufio.NewScanner(&buf)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line), scanner.Text())
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestJSONLFormatter_Lines(t *testing.T) {
	report := newTestReport()
	lines := jsonlLines(t, &JSONLFormatter{}, report)

	// 1 header + 1 facts + N results
	require.Len(t, lines, 2+len(report.Checks))
	assert.Equal(t, "header", lines[0]["type"])
	assert.Equal(t, "facts", lines[1]["type"])
	for _, l := range lines[2:] {
		assert.Equal(t, "result", l["type"])
	}
}

func TestJSONLFormatter_HeaderLine(t *testing.T) {
	lines := jsonlLines(t, &JSONLFormatter{}, newTestReport())

	header := lines[0]
	assert.Equal(t, "hostaudit", header["tool"])
	assert.Equal(t, "1.0.0", header["version"])
	assert.Equal(t, "2026-01-15T10:30:00Z", header["timestamp"])
	assert.EqualValues(t, 67, header["score"])
	assert.Equal(t, "test-host", header["host"].(map[string]any)["hostname"])
	assert.EqualValues(t, 1, header["summary"].(map[string]any)["failed"])
}

func TestJSONLFormatter_ShowFilter(t *testing.T) {
	lines := jsonlLines(t, &JSONLFormatter{Show: ShowFail}, newTestReport())

	require.Len(t, lines, 3)
	result := lines[2]["result"].(map[string]any)
	assert.Equal(t, "firewall", result["id"])
	assert.EqualValues(t, 1, lines[0]["summary"].(map[string]any)["passed"], "summary is never filtered")
}

func TestYAMLFormatter_Write(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Write(&buf, newTestReport()))

	out := buf.String()
	assert.Contains(t, out, "meta:\n  tool: hostaudit")
	assert.Contains(t, out, "gateway: 192.168.1.1")
	assert.Contains(t, out, "not_checked: true")
	assert.Contains(t, out, "error_kind: resource_read_error")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	facts := doc["facts"].(map[string]any)
	route := facts["default_route"].(map[string]any)
	assert.Equal(t, "ip_route", route["source"], "status fields are inlined")
	assert.Equal(t, 67, doc["score"])
}
