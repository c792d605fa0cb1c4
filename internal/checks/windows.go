package checks

import (
	"context"
	"strings"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/parse"
	"github.com/ancients-collective/hostaudit/internal/types"
)

func windowsChecks() []Check {
	return []Check{
		{ID: IDFirewall, Name: "Firewall status (Windows Defender Firewall)", probe: windowsFirewall},
		{ID: IDDiskEncryption, Name: "BitLocker disk encryption status", probe: windowsBitLocker},
	}
}

var advFirewallControl = control{
	subject:     "Firewall profile state",
	offSeverity: types.SeverityHigh,
	offTitle:    "Firewall is disabled for at least one profile",
	offDetail:   "netsh reports State OFF for a firewall profile.",
	offFix:      "Turn on Windows Defender Firewall for every profile: `netsh advfirewall set allprofiles state on`.",
}

func windowsFirewall(ctx context.Context, r engine.Runner, b *Builder) types.AuditResult {
	b.Tool("netsh", "Every profile (Domain, Private, Public) must report State ON")

	ev := run(ctx, r, b, "netsh", "advfirewall", "show", "allprofiles", "state")
	if !usable(ev) {
		return b.ProbeFailed(ev, "Could not query firewall state", "Run from an elevated prompt and confirm netsh.exe is available.")
	}
	profiles, states := parse.AdvFirewallProfiles(ev.Stdout)
	for i, p := range profiles {
		b.ParsedState("profile_"+strings.ToLower(p), states[i])
	}
	state, _ := parse.AdvFirewall(ev.Stdout)
	return advFirewallControl.verdict(b, ev.Stdout, state)
}

var bitLockerControl = control{
	subject:     "BitLocker status",
	offSeverity: types.SeverityCritical,
	offTitle:    "BitLocker is disabled",
	offDetail:   "manage-bde reports Protection Off for the system drive.",
	offFix:      "Enable BitLocker for the system drive: `manage-bde -on C:`.",
}

func windowsBitLocker(ctx context.Context, r engine.Runner, b *Builder) types.AuditResult {
	b.Tool("manage-bde", "")

	ev := run(ctx, r, b, "manage-bde", "-status", "C:")
	if !usable(ev) {
		return b.ProbeFailed(ev, "Could not query BitLocker status", "Run from an elevated prompt; manage-bde requires administrator rights.")
	}
	state, _ := parse.BitLocker.Match(ev.Stdout)
	b.ParsedState("protection", state)
	return bitLockerControl.verdict(b, ev.Stdout, state)
}
