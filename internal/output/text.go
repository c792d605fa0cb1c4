package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// ─── Layout constants ────────────────────────────────────────────────
//
// Every result line follows a strict column grid:
//
//     col 0    4   6       14      16                          maxLine
//     │margin│ I │ BADGE   │2sp│ CHECK NAME ...           DURATION │
//              ↑   ↑              ↑                              ↑
//           colIcon colBadge    colName                    right-aligned
//
// Detail blocks start at colDetail and use labelWidth-padded labels
// so every value begins at colValue.
//
const (
	colMargin  = 4   // left margin (spaces) for result/detail lines
	colBadge   = 6   // column where the severity badge starts
	badgeWidth = 8   // visible width of a padded badge, e.g. "[CRIT]  "
	colDetail  = 16  // column where detail-block lines start
	labelWidth = 9   // fixed label field: "Result: " / "Fix:     " / etc.
	colValue   = 25  // column where label values start (colDetail + labelWidth)
	factLabel  = 11  // label width of the fact lines, e.g. "Gateway:   "
	maxLine    = 110 // hard wrap cap, even on ultra-wide terminals
	ruleWidth  = 64  // width of horizontal divider rules
)

// TextFormatter writes a colored, human-readable audit report.
type TextFormatter struct {
	Show     string // "all" (default), "findings", "fail", "pass"
	Width    int    // terminal width for text wrapping; 0 = unknown
	Dumb     bool   // TERM=dumb, use single-char ASCII fallback icons
	Evidence bool   // print the raw probe commands under each result
}

// Color helpers, each returns a sprint function.
var (
	cBold   = color.New(color.Bold).SprintFunc()
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cRed    = color.New(color.FgRed).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cCyan   = color.New(color.FgCyan).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()

	cRedBold    = color.New(color.FgRed, color.Bold).SprintFunc()
	cYellowBold = color.New(color.FgYellow, color.Bold).SprintFunc()
	cGreenBold  = color.New(color.FgGreen, color.Bold).SprintFunc()
)

// IsDumbTerm returns true when the terminal doesn't support Unicode.
func IsDumbTerm() bool {
	t := os.Getenv("TERM")
	return t == "dumb" || t == ""
}

// wrapWidth returns the effective line width: min(terminal, maxLine).
func (f *TextFormatter) wrapWidth() int {
	if f.Width > 0 && f.Width < maxLine {
		return f.Width
	}
	return maxLine
}

func (f *TextFormatter) show() string {
	if f.Show == "" {
		return ShowAll
	}
	return f.Show
}

// ─── Public entry point ──────────────────────────────────────────────

// Write renders the full text report.
func (f *TextFormatter) Write(w io.Writer, report *types.AuditReport) error {
	f.writeHeader(w, report)
	f.writeSystem(w, report)
	f.writeNetwork(w, report)
	f.writeInventory(w, report)
	f.writeResults(w, report)
	f.writeSummary(w, report)
	f.writeHints(w, report)
	fmt.Fprintln(w)
	return nil
}

// ─── Header ──────────────────────────────────────────────────────────

func (f *TextFormatter) writeHeader(w io.Writer, r *types.AuditReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", cBold("hostaudit"), cDim("v"+r.Meta.Version))
	fmt.Fprintf(w, "  %s %s\n", cDim("Audit started:"), r.Meta.StartedAt.Format("2006-01-02T15:04:05Z07:00"))
	if r.Meta.RunID != "" {
		fmt.Fprintf(w, "  %s %s\n", cDim("Run ID:       "), r.Meta.RunID)
	}
	fmt.Fprintln(w)
}

// ─── System context ──────────────────────────────────────────────────

func (f *TextFormatter) writeSystem(w io.Writer, r *types.AuditReport) {
	h := r.Host
	fmt.Fprintf(w, "  %s\n", cBold(f.icon("section")+" System"))
	if h.Hostname != "" {
		fmt.Fprintf(w, "    Host:    %s\n", h.Hostname)
	}
	fmt.Fprintf(w, "    OS:      %s %s (%s)\n", h.OS, h.OSVersion, h.Arch)
	if h.DistroID != "" {
		fmt.Fprintf(w, "    Distro:  %s %s (%s)\n", h.DistroID, h.DistroVersion, h.DistroFamily)
	}
	envStr := h.EnvType
	if h.EnvRuntime != "" {
		envStr += fmt.Sprintf(" (%s)", h.EnvRuntime)
	}
	fmt.Fprintf(w, "    Env:     %s\n", envStr)
	fmt.Fprintln(w)
	if !r.Meta.IsRoot {
		fmt.Fprintf(w, "  %s %s\n", cYellow(f.icon("warn")),
			f.wrap("Running as non-root: some facts and checks may be incomplete", 4, 4))
		fmt.Fprintln(w)
	}
	for _, warn := range r.Meta.Warnings {
		fmt.Fprintf(w, "  %s %s\n", cYellow(f.icon("warn")), f.wrap(warn, 4, 4))
	}
	if len(r.Meta.Warnings) > 0 {
		fmt.Fprintln(w)
	}
}

// ─── Network facts ───────────────────────────────────────────────────

func (f *TextFormatter) writeNetwork(w io.Writer, r *types.AuditReport) {
	facts := r.Facts
	fmt.Fprintf(w, "  %s\n", cBold(f.icon("section")+" Network"))

	route := facts.DefaultRoute
	if !f.writeNotChecked(w, "Route:", route.FactStatus) {
		f.writeFact(w, "Gateway:", deref(route.Gateway), route.Source)
		if route.Interface != nil {
			f.writeFact(w, "Interface:", *route.Interface, nil)
		}
	}

	dns := facts.DNS
	if !f.writeNotChecked(w, "DNS:", dns.FactStatus) {
		f.writeFact(w, "DNS:", strings.Join(dns.Nameservers, ", "), dns.Source)
		if len(dns.SearchDomains) > 0 {
			f.writeFact(w, "Search:", strings.Join(dns.SearchDomains, ", "), nil)
		}
	}

	proxy := facts.Proxy
	if !f.writeNotChecked(w, "Proxy:", proxy.FactStatus) {
		if !proxy.HasValue() {
			f.writeFact(w, "Proxy:", "none configured", nil)
		} else {
			src := strings.Join(proxy.Sources, ", ")
			f.writeFact(w, "HTTP:", deref(proxy.HTTPProxy), &src)
			f.writeFact(w, "HTTPS:", deref(proxy.HTTPSProxy), nil)
			if proxy.NoProxy != nil {
				f.writeFact(w, "No proxy:", *proxy.NoProxy, nil)
			}
		}
	}
	fmt.Fprintln(w)
}

// ─── Inventory ───────────────────────────────────────────────────────

func (f *TextFormatter) writeInventory(w io.Writer, r *types.AuditReport) {
	facts := r.Facts
	if !collected(facts.Host.FactStatus) && !collected(facts.CPU.FactStatus) &&
		!collected(facts.Memory.FactStatus) && !collected(facts.ListeningPorts.FactStatus) {
		return
	}
	fmt.Fprintf(w, "  %s\n", cBold(f.icon("section")+" Inventory"))

	if cpu := facts.CPU; !f.writeNotChecked(w, "CPU:", cpu.FactStatus) && collected(cpu.FactStatus) {
		f.writeFact(w, "CPU:", fmt.Sprintf("%s (%d cores, %d threads)",
			deref(cpu.ModelName), derefInt(cpu.PhysicalCores), derefInt(cpu.LogicalCores)), nil)
	}
	if mem := facts.Memory; !f.writeNotChecked(w, "Memory:", mem.FactStatus) && collected(mem.FactStatus) && mem.TotalBytes != nil {
		f.writeFact(w, "Memory:", humanBytes(*mem.TotalBytes), nil)
	}
	if d := facts.Disks; !f.writeNotChecked(w, "Disks:", d.FactStatus) && collected(d.FactStatus) {
		f.writeFact(w, "Disks:", fmt.Sprintf("%d mounted", len(d.Partitions)), nil)
	}
	if u := facts.Users; !f.writeNotChecked(w, "Sessions:", u.FactStatus) && collected(u.FactStatus) {
		f.writeFact(w, "Sessions:", fmt.Sprint(len(u.Sessions)), nil)
	}
	if i := facts.Interfaces; !f.writeNotChecked(w, "Interfaces:", i.FactStatus) && collected(i.FactStatus) {
		up := 0
		for _, iface := range i.Interfaces {
			if iface.IsUp {
				up++
			}
		}
		f.writeFact(w, "Interfaces:", fmt.Sprintf("%d (%d up)", len(i.Interfaces), up), nil)
	}
	if p := facts.ListeningPorts; !f.writeNotChecked(w, "Listening:", p.FactStatus) && collected(p.FactStatus) {
		f.writeFact(w, "Listening:", fmt.Sprintf("%d TCP, %d UDP", len(p.TCP), len(p.UDP)), nil)
	}
	fmt.Fprintln(w)
}

// collected reports whether a fact was attempted at all.
func collected(s types.FactStatus) bool {
	return s.NotChecked || s.Source != nil
}

// writeFact emits one fact line with an optional dimmed source suffix.
func (f *TextFormatter) writeFact(w io.Writer, label, value string, source *string) {
	if value == "" {
		value = cDim("(none)")
	}
	line := fmt.Sprintf("%s%-*s%s", colPad(colMargin), factLabel, label, value)
	if source != nil && *source != "" {
		line += "  " + cDim("["+*source+"]")
	}
	fmt.Fprintln(w, line)
}

// writeNotChecked renders a not-checked fact and reports whether it did.
func (f *TextFormatter) writeNotChecked(w io.Writer, label string, s types.FactStatus) bool {
	if !s.NotChecked {
		return false
	}
	fmt.Fprintf(w, "%s%-*s%s %s\n", colPad(colMargin), factLabel, label,
		cYellow(f.icon("warn")), cYellow("not checked: "+deref(s.Error)))
	if s.Remediation != nil && *s.Remediation != "" {
		fmt.Fprintf(w, "%s%s\n", colPad(colMargin+factLabel), cDim(f.wrap(*s.Remediation, colMargin+factLabel, colMargin+factLabel)))
	}
	return true
}

// ─── Results ─────────────────────────────────────────────────────────

func (f *TextFormatter) writeResults(w io.Writer, r *types.AuditReport) {
	title := "Checks"
	if r.Meta.CheckID != "" {
		title += " (" + r.Meta.CheckID + ")"
	}
	if show := f.show(); show != ShowAll {
		title += " · show=" + show
	}
	fmt.Fprintf(w, "  %s\n", cBold(f.icon("section")+" "+title))
	fmt.Fprintln(w)

	results := Filter(r.Checks, f.show())
	if len(results) == 0 {
		fmt.Fprintf(w, "%s(no results match the current filters)\n", colPad(colMargin))
		fmt.Fprintln(w)
		return
	}

	for _, res := range f.sortResults(results) {
		f.writeResultLine(w, res)
		f.writeDetailBlock(w, res)
		fmt.Fprintln(w)
	}
}

// ─── Summary ─────────────────────────────────────────────────────────

func (f *TextFormatter) writeSummary(w io.Writer, r *types.AuditReport) {
	rule := cDim(strings.Repeat("─", ruleWidth))
	fmt.Fprintf(w, "  %s\n", rule)

	f.writeVerdict(w, r)

	s := r.Summary
	parts := []string{
		cGreenBold(fmt.Sprintf("%d passed", s.Passed)),
		cYellowBold(fmt.Sprintf("%d warned", s.Warned)),
		cRedBold(fmt.Sprintf("%d failed", s.Failed)),
		cDim(fmt.Sprintf("%d not checked", s.NotChecked)),
	}
	if s.Info > 0 {
		parts = append(parts, cCyan(fmt.Sprintf("%d info", s.Info)))
	}
	fmt.Fprintf(w, "  %s  %s\n", cBold("Summary:"), strings.Join(parts, " · "))
	fmt.Fprintf(w, "  %s  %s\n", cBold("Score:  "), f.scoreTag(r.Score))
	if s.FactsNotChecked > 0 {
		fmt.Fprintf(w, "  %s  %s\n", cBold("Facts:  "), cYellow(fmt.Sprintf("%d not checked", s.FactsNotChecked)))
	}

	dur := fmt.Sprintf("%.1fs", float64(r.Meta.DurationMS)/1000.0)
	fmt.Fprintf(w, "  %s  %s\n", cDim("Completed in"), cBold(dur))
	fmt.Fprintf(w, "  %s\n", rule)
}

func (f *TextFormatter) scoreTag(score int) string {
	s := fmt.Sprintf("%d/100", score)
	switch {
	case score >= 90:
		return cGreenBold(s)
	case score >= 60:
		return cYellowBold(s)
	default:
		return cRedBold(s)
	}
}

func (f *TextFormatter) writeVerdict(w io.Writer, r *types.AuditReport) {
	counts := map[types.Severity]int{}
	total := 0
	for _, res := range r.Checks {
		for _, fi := range res.Findings {
			counts[fi.Severity]++
			total++
		}
	}
	if total == 0 {
		fmt.Fprintf(w, "  %s %s\n", cGreenBold(f.icon("pass")), cGreenBold("Clean: no findings"))
		return
	}

	var parts []string
	for _, sev := range []types.Severity{types.SeverityCritical, types.SeverityHigh, types.SeverityMedium, types.SeverityLow} {
		if c := counts[sev]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, strings.ToLower(string(sev))))
		}
	}

	fmt.Fprintf(w, "  %s %s\n", cRedBold(f.icon("shield")),
		cRedBold(fmt.Sprintf("%d finding(s) require attention (%s)", total, strings.Join(parts, ", "))))
}

// ─── Hints ───────────────────────────────────────────────────────────

func (f *TextFormatter) writeHints(w io.Writer, r *types.AuditReport) {
	var hints []string
	s := r.Summary

	if s.NotChecked > 0 || s.FactsNotChecked > 0 {
		if !r.Meta.IsRoot {
			hints = append(hints, "Re-run as root (sudo) to fill in NOT_CHECKED results")
		}
	}
	if f.show() != ShowAll && len(Filter(r.Checks, f.show())) < len(r.Checks) {
		hints = append(hints, "Use --show all to see every check result")
	}
	if !f.Evidence && s.TotalChecks > 0 {
		hints = append(hints, "Use --format json for the full evidence trail")
	}

	if len(hints) == 0 {
		return
	}

	fmt.Fprintln(w)
	for _, h := range hints {
		fmt.Fprintf(w, "  %s %s\n", cDim("›"), cDim(h))
	}
}

// ─── Result line (single shared renderer) ────────────────────────────

func (f *TextFormatter) writeResultLine(w io.Writer, res types.AuditResult) {
	icon := f.statusIcon(res.Status)
	badge := f.coloredBadge(TopSeverity(res))
	dur := cDim(durationRaw(res))
	durRaw := durationRaw(res)
	ww := f.wrapWidth()

	// Layout: margin icon badge  Check:   name ... duration
	checkLabel := cBold(fmt.Sprintf("%-*s", labelWidth, "Check:"))
	name := res.Name
	nameAvail := ww - colValue - 2 - len(durRaw)
	namePad := nameAvail - len(name)
	if namePad < 2 {
		namePad = 2
	}
	fmt.Fprintf(w, "%s%s %s  %s%s%s%s\n",
		colPad(colMargin),
		icon,
		badge,
		checkLabel,
		name,
		strings.Repeat(" ", namePad),
		dur,
	)
}

// ─── Detail block (single shared renderer) ───────────────────────────

func (f *TextFormatter) writeDetailBlock(w io.Writer, res types.AuditResult) {
	p := colPad(colDetail)

	f.writeLabel(w, p, "Status:", statusColor(res.Status),
		fmt.Sprintf("%s (score %.2f × weight %d)", res.Status, res.ScoreFactor, res.Weight))
	if res.Evidence.Tool != "" {
		f.writeLabel(w, p, "Tool:", cDim, res.Evidence.Tool)
	}

	for _, fi := range res.Findings {
		colorFn := cRed
		if fi.Severity == types.SeverityLow || fi.Severity == types.SeverityMedium {
			colorFn = cYellow
		}
		msg := fi.Title
		if fi.Detail != "" {
			msg += ". " + fi.Detail
		}
		f.writeLabel(w, p, "Result:", colorFn, msg)
		if fi.Remediation != "" {
			f.writeLabel(w, p, "Fix:", cGreen, fi.Remediation)
		}
	}

	if f.Evidence {
		for _, ev := range res.Evidence.Probes {
			f.writeLabel(w, p, "Probe:", cDim, fmt.Sprintf("%s (rc=%d)", strings.Join(ev.Cmd, " "), ev.RC))
		}
	}
}

// writeLabel emits one detail line: prefix + colored label (padded to labelWidth) + wrapped value.
func (f *TextFormatter) writeLabel(w io.Writer, prefix, label string, colorFn func(a ...interface{}) string, value string) {
	colored := colorFn(fmt.Sprintf("%-*s", labelWidth, label))
	wrapped := f.wrap(value, colValue, colValue)
	fmt.Fprintf(w, "%s%s%s\n", prefix, colored, wrapped)
}

// ─── Sorting ─────────────────────────────────────────────────────────

// sortResults orders by status (FAIL, WARN, NOT_CHECKED, PASS, INFO), then by
// top finding severity, then by name.
func (f *TextFormatter) sortResults(results []types.AuditResult) []types.AuditResult {
	sorted := make([]types.AuditResult, len(results))
	copy(sorted, results)
	statusOrder := map[types.Status]int{
		types.StatusFail:       0,
		types.StatusWarn:       1,
		types.StatusNotChecked: 2,
		types.StatusPass:       3,
		types.StatusInfo:       4,
	}
	sevRank := func(r types.AuditResult) int {
		top := TopSeverity(r)
		if top == "" {
			return len(types.SeverityRank)
		}
		return types.SeverityRank[top]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := statusOrder[sorted[i].Status], statusOrder[sorted[j].Status]
		if si != sj {
			return si < sj
		}
		if ri, rj := sevRank(sorted[i]), sevRank(sorted[j]); ri != rj {
			return ri < rj
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// ─── Text wrapping ───────────────────────────────────────────────────

func (f *TextFormatter) wrap(text string, startCol, wrapCol int) string {
	w := f.wrapWidth()
	if startCol+len(text) <= w {
		return text
	}

	avail := w - startCol
	if avail < 20 {
		return text
	}

	wrapPad := strings.Repeat(" ", wrapCol)
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var b strings.Builder
	lineLen := 0

	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > avail {
			b.WriteByte('\n')
			b.WriteString(wrapPad)
			b.WriteString(word)
			lineLen = len(word)
			avail = w - wrapCol
		} else {
			b.WriteByte(' ')
			b.WriteString(word)
			lineLen += 1 + len(word)
		}
	}

	return b.String()
}

// ─── Icons ───────────────────────────────────────────────────────────

func (f *TextFormatter) icon(name string) string {
	if f.Dumb {
		switch name {
		case "pass":
			return "+"
		case "fail":
			return "x"
		case "warn":
			return "!"
		case "unknown":
			return "?"
		case "info":
			return "i"
		case "shield":
			return "!"
		case "section":
			return ">"
		default:
			return "?"
		}
	}
	switch name {
	case "pass":
		return "✓"
	case "fail":
		return "✗"
	case "warn":
		return "⚠"
	case "unknown":
		return "○"
	case "info":
		return "ℹ"
	case "shield":
		return "🛡"
	case "section":
		return "▸"
	default:
		return "?"
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────

func (f *TextFormatter) statusIcon(s types.Status) string {
	switch s {
	case types.StatusPass:
		return cGreen(f.icon("pass"))
	case types.StatusFail:
		return cRed(f.icon("fail"))
	case types.StatusWarn:
		return cYellow(f.icon("warn"))
	case types.StatusNotChecked:
		return cDim(f.icon("unknown"))
	case types.StatusInfo:
		return cCyan(f.icon("info"))
	default:
		return "?"
	}
}

func statusColor(s types.Status) func(a ...interface{}) string {
	switch s {
	case types.StatusPass:
		return cGreen
	case types.StatusFail:
		return cRed
	case types.StatusWarn:
		return cYellow
	default:
		return cDim
	}
}

func (f *TextFormatter) coloredBadge(sev types.Severity) string {
	raw := severityBadgeRaw(sev)
	padded := fmt.Sprintf("%-*s", badgeWidth, raw)
	switch sev {
	case types.SeverityCritical:
		return cRedBold(padded)
	case types.SeverityHigh:
		return cRed(padded)
	case types.SeverityMedium:
		return cYellow(padded)
	case types.SeverityLow:
		return cGreen(padded)
	default:
		return cDim(padded)
	}
}

func durationRaw(r types.AuditResult) string {
	ms := r.DurationMS
	if ms <= 0 {
		ms = r.Duration.Milliseconds()
	}
	if ms < 1 {
		return "(<1ms)"
	}
	return fmt.Sprintf("(%dms)", ms)
}

func colPad(n int) string {
	return strings.Repeat(" ", n)
}

func severityBadgeRaw(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical:
		return "[CRIT]"
	case types.SeverityHigh:
		return "[HIGH]"
	case types.SeverityMedium:
		return "[MED]"
	case types.SeverityLow:
		return "[LOW]"
	default:
		return "[----]"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// humanBytes renders n in binary units, e.g. "7.8 GiB".
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
