package checks

import (
	"context"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/parse"
	"github.com/ancients-collective/hostaudit/internal/types"
)

const socketfilterfwPath = "/usr/libexec/ApplicationFirewall/socketfilterfw"

func darwinChecks() []Check {
	return []Check{
		{ID: IDFirewall, Name: "Firewall status (macOS Application Firewall)", probe: darwinFirewall},
		{ID: IDDiskEncryption, Name: "FileVault disk encryption status", probe: darwinFileVault},
	}
}

var alfControl = control{
	subject:     "Firewall state",
	offSeverity: types.SeverityHigh,
	offTitle:    "Firewall is disabled",
	offDetail:   "macOS Application Firewall reports State = 0 (off).",
	offFix:      "Enable Firewall in System Settings > Network > Firewall.",
}

// darwinFirewall reads the global ALF state. Stealth mode and block-all are
// recorded as secondary signals; stealth mode off downgrades a PASS to WARN.
func darwinFirewall(ctx context.Context, r engine.Runner, b *Builder) types.AuditResult {
	b.Tool(socketfilterfwPath, "Uses macOS Application Firewall (ALF) via socketfilterfw")

	global := run(ctx, r, b, "socketfilterfw", "--getglobalstate")
	if global.RC != 0 {
		return b.ProbeFailed(global, "Could not query firewall state",
			"Run as root and confirm the binary exists at "+socketfilterfwPath+".")
	}
	state, _ := parse.SocketFilterGlobalState.Match(global.Stdout)
	b.ParsedState("global_state", state)

	stealth := toggle(ctx, r, b, "stealth_mode", "--getstealthmode")
	toggle(ctx, r, b, "block_all", "--getblockall")

	if state == parse.StateOn && stealth == parse.StateOff {
		return b.Warn(types.Finding{
			Severity:    types.SeverityLow,
			Title:       "Stealth mode is disabled",
			Detail:      "Firewall is enabled, but stealth mode appears disabled.",
			Remediation: "Consider enabling Stealth Mode if appropriate for the environment.",
		})
	}
	return alfControl.verdict(b, global.Stdout, state)
}

// toggle probes one optional socketfilterfw setting. A failed probe leaves
// the setting unknown.
func toggle(ctx context.Context, r engine.Runner, b *Builder, key, flag string) parse.State {
	ev := run(ctx, r, b, "socketfilterfw", flag)
	state := parse.StateUnknown
	if usable(ev) {
		state, _ = parse.SocketFilterToggle.Match(ev.Stdout)
	}
	b.ParsedState(key, state)
	return state
}

var fileVaultControl = control{
	subject:     "FileVault status",
	offSeverity: types.SeverityCritical,
	offTitle:    "FileVault is disabled",
	offDetail:   "FileVault disk encryption is reported as off.",
	offFix:      "Enable FileVault in System Settings > Privacy & Security > FileVault.",
}

func darwinFileVault(ctx context.Context, r engine.Runner, b *Builder) types.AuditResult {
	b.Tool("fdesetup", "")

	ev := run(ctx, r, b, "fdesetup", "status")
	if ev.RC != 0 {
		return b.ProbeFailed(ev, "Could not query FileVault status", "Confirm the fdesetup command is available.")
	}
	state, _ := parse.FileVault.Match(ev.Stdout)
	b.ParsedState("filevault", state)
	return fileVaultControl.verdict(b, ev.Stdout, state)
}
