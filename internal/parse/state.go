package parse

import (
	"strings"
)

// State is the classified on/off state of a security control.
type State string

const (
	// StateUnknown means no phrase matched.
	StateUnknown State = ""
	StateOn      State = "on"
	StateOff     State = "off"
	// StateOther means a recognised phrase reported neither on nor off.
	StateOther State = "other"
)

// Phrase is one named, documented text pattern. Phrases match as
// substrings; unless CaseSensitive is set both sides are lower-cased.
type Phrase struct {
	Name          string
	Text          string
	CaseSensitive bool
	State         State
}

// Matches reports whether text contains the phrase.
func (p Phrase) Matches(text string) bool {
	if p.CaseSensitive {
		return strings.Contains(text, p.Text)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(p.Text))
}

// Matcher is an ordered phrase list. The first matching phrase wins.
type Matcher []Phrase

// Match classifies text and returns the name of the phrase that decided it.
func (m Matcher) Match(text string) (State, string) {
	for _, p := range m {
		if p.Matches(text) {
			return p.State, p.Name
		}
	}
	return StateUnknown, ""
}

// SocketFilterGlobalState classifies `socketfilterfw --getglobalstate`,
// e.g. "Firewall is enabled. (State = 1)".
var SocketFilterGlobalState = Matcher{
	{Name: "state_1", Text: "State = 1", CaseSensitive: true, State: StateOn},
	{Name: "state_0", Text: "State = 0", CaseSensitive: true, State: StateOff},
	{Name: "state_2", Text: "State = 2", CaseSensitive: true, State: StateOther},
}

// SocketFilterToggle classifies `socketfilterfw --getstealthmode` and
// `--getblockall`, e.g. "Stealth mode enabled" or, on newer releases,
// "Firewall stealth mode is on".
var SocketFilterToggle = Matcher{
	{Name: "disabled", Text: "disabled", State: StateOff},
	{Name: "enabled", Text: "enabled", State: StateOn},
	{Name: "is_off", Text: "is off", State: StateOff},
	{Name: "is_on", Text: "is on", State: StateOn},
}

// FileVault classifies `fdesetup status`: "FileVault is On." / "FileVault is Off.".
var FileVault = Matcher{
	{Name: "filevault_on", Text: "filevault is on", State: StateOn},
	{Name: "filevault_off", Text: "filevault is off", State: StateOff},
}

// UFWStatus classifies `ufw status verbose`: "Status: active" / "Status: inactive".
var UFWStatus = Matcher{
	{Name: "ufw_inactive", Text: "status: inactive", State: StateOff},
	{Name: "ufw_active", Text: "status: active", State: StateOn},
}

// UFWDefaultIncoming classifies the default incoming policy line of
// `ufw status verbose`, e.g. "Default: deny (incoming), allow (outgoing)".
var UFWDefaultIncoming = Matcher{
	{Name: "deny_incoming", Text: "deny (incoming)", State: StateOn},
	{Name: "reject_incoming", Text: "reject (incoming)", State: StateOn},
	{Name: "allow_incoming", Text: "allow (incoming)", State: StateOff},
}

// FirewalldState classifies `firewall-cmd --state`: "running" / "not running".
var FirewalldState = Matcher{
	{Name: "not_running", Text: "not running", State: StateOff},
	{Name: "running", Text: "running", State: StateOn},
}

// BitLocker classifies `manage-bde -status C:`:
// "Protection Status:    Protection On" / "Protection Off".
var BitLocker = Matcher{
	{Name: "protection_off", Text: "protection off", State: StateOff},
	{Name: "protection_on", Text: "protection on", State: StateOn},
}

// LsblkCrypt classifies `lsblk -rno TYPE`: any "crypt" device means
// encryption is in use, a non-empty list without one means it is not.
func LsblkCrypt(text string) (State, string) {
	devices := lines(text)
	if len(devices) == 0 {
		return StateUnknown, ""
	}
	for _, d := range devices {
		if d == "crypt" {
			return StateOn, "crypt_device"
		}
	}
	return StateOff, "no_crypt_device"
}

// AdvFirewallProfiles parses `netsh advfirewall show allprofiles state`:
//
//	Domain Profile Settings:
//	----------------------------------------------------------------------
//	State                                 ON
//
// It returns the state of each profile in output order.
func AdvFirewallProfiles(text string) (profiles []string, states []State) {
	current := ""
	for _, line := range lines(text) {
		if name, ok := strings.CutSuffix(line, " Profile Settings:"); ok {
			current = name
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 || parts[0] != "State" {
			continue
		}
		state := StateOther
		switch strings.ToUpper(parts[1]) {
		case "ON":
			state = StateOn
		case "OFF":
			state = StateOff
		}
		name := current
		if name == "" {
			name = "Profile"
		}
		profiles = append(profiles, name)
		states = append(states, state)
	}
	return profiles, states
}

// AdvFirewall folds the per-profile states: any profile off means off,
// all profiles on means on.
func AdvFirewall(text string) (State, string) {
	_, states := AdvFirewallProfiles(text)
	if len(states) == 0 {
		return StateUnknown, ""
	}
	all := StateOn
	for _, s := range states {
		if s == StateOff {
			return StateOff, "profile_off"
		}
		if s != StateOn {
			all = StateOther
		}
	}
	if all == StateOn {
		return StateOn, "all_profiles_on"
	}
	return StateOther, "profile_state_other"
}
