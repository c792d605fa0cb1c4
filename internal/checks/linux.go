package checks

import (
	"context"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/parse"
	"github.com/ancients-collective/hostaudit/internal/types"
)

func linuxChecks() []Check {
	return []Check{
		{ID: IDFirewall, Name: "Firewall status (ufw / firewalld)", probe: linuxFirewall},
		{ID: IDDiskEncryption, Name: "Disk encryption status (dm-crypt)", probe: linuxDiskEncryption},
	}
}

var ufwControl = control{
	subject:     "ufw status",
	offSeverity: types.SeverityHigh,
	offTitle:    "Firewall is disabled",
	offDetail:   "ufw reports Status: inactive.",
	offFix:      "Enable the firewall with `ufw enable` after allowing required services.",
}

var firewalldControl = control{
	subject:     "firewalld state",
	offSeverity: types.SeverityHigh,
	offTitle:    "Firewall is disabled",
	offDetail:   "firewalld reports it is not running.",
	offFix:      "Start and enable firewalld with `systemctl enable --now firewalld`.",
}

// linuxFirewall asks ufw first and firewalld second. firewalld is only
// consulted when ufw could not be queried at all.
func linuxFirewall(ctx context.Context, r engine.Runner, b *Builder) types.AuditResult {
	ufw := run(ctx, r, b, "ufw", "status", "verbose")
	if usable(ufw) {
		b.Tool("ufw", "")
		state, _ := parse.UFWStatus.Match(ufw.Stdout)
		b.ParsedState("ufw_status", state)
		if state == parse.StateOn {
			incoming, _ := parse.UFWDefaultIncoming.Match(ufw.Stdout)
			b.ParsedState("default_incoming_restricted", incoming)
			if incoming == parse.StateOff {
				return b.Warn(types.Finding{
					Severity:    types.SeverityLow,
					Title:       "Default incoming policy allows traffic",
					Detail:      "ufw is active, but the default incoming policy is allow.",
					Remediation: "Set a restrictive default with `ufw default deny incoming`.",
				})
			}
		}
		return ufwControl.verdict(b, ufw.Stdout, state)
	}

	fw := run(ctx, r, b, "firewall-cmd", "--state")
	// firewall-cmd exits non-zero when the daemon is not running.
	text := fw.Stdout
	if text == "" {
		text = fw.Stderr
	}
	if unavailable(fw) || text == "" {
		return b.ProbeFailed(fw, "Could not query firewall state",
			"Install ufw or firewalld and run as root so the firewall state can be read.")
	}
	b.Tool("firewall-cmd", "")
	state, _ := parse.FirewalldState.Match(text)
	b.ParsedState("firewalld_state", state)
	if state == parse.StateUnknown && fw.RC != 0 {
		return b.ProbeFailed(fw, "Could not query firewall state",
			"Run as root so the firewall state can be read.")
	}
	return firewalldControl.verdict(b, text, state)
}

// unavailable reports a probe that never ran: missing binary, rejected or
// timed out.
func unavailable(ev types.Evidence) bool {
	switch ev.RC {
	case engine.ExitTimeout, engine.ExitNotPermitted, engine.ExitNotFound:
		return true
	}
	return false
}

var luksControl = control{
	subject:     "Block device list",
	offSeverity: types.SeverityCritical,
	offTitle:    "No encrypted block devices",
	offDetail:   "lsblk lists no dm-crypt device; disks are not encrypted at rest.",
	offFix:      "Encrypt the system disk with LUKS (cryptsetup) at the next reinstall or migration.",
}

func linuxDiskEncryption(ctx context.Context, r engine.Runner, b *Builder) types.AuditResult {
	b.Tool("lsblk", "A crypt device in the block device tree means dm-crypt/LUKS is in use")

	ev := run(ctx, r, b, "lsblk", "-rno", "TYPE")
	if !usable(ev) {
		return b.ProbeFailed(ev, "Could not list block devices", "Confirm lsblk (util-linux) is installed.")
	}
	state, _ := parse.LsblkCrypt(ev.Stdout)
	b.ParsedState("crypt_device", state)
	return luksControl.verdict(b, ev.Stdout, state)
}
