package parse

import (
	"strings"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// Line prefixes recognised in `resolvectl status` output.
const (
	resolvectlServers       = "DNS Servers:"
	resolvectlDomain        = "DNS Domain:"
	resolvectlDomains       = "Domains:"
	resolvectlSearchDomains = "Search Domains:"
)

// Resolvectl parses `resolvectl status`. Every link section is scanned;
// values on indented continuation lines belong to the preceding label.
func Resolvectl(text string) types.DNSConfig {
	var d types.DNSConfig
	var target *[]string

	for _, line := range lines(text) {
		switch {
		case strings.HasPrefix(line, resolvectlServers):
			target = &d.Nameservers
			line = strings.TrimPrefix(line, resolvectlServers)
		case strings.HasPrefix(line, resolvectlDomain):
			target = &d.SearchDomains
			line = strings.TrimPrefix(line, resolvectlDomain)
		case strings.HasPrefix(line, resolvectlDomains):
			target = &d.SearchDomains
			line = strings.TrimPrefix(line, resolvectlDomains)
		case strings.HasPrefix(line, resolvectlSearchDomains):
			target = &d.SearchDomains
			line = strings.TrimPrefix(line, resolvectlSearchDomains)
		default:
			if !continuation(line) {
				target = nil
			}
		}
		if target == nil {
			continue
		}
		*target = appendUnique(*target, strings.Fields(line)...)
	}
	return d
}

// ResolvConf parses /etc/resolv.conf: `nameserver <ip>`, `search <dom>...`
// and `domain <dom>`. Comment lines starting with # or ; are ignored.
func ResolvConf(text string) types.DNSConfig {
	var d types.DNSConfig
	for _, line := range lines(text) {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		parts := strings.Fields(line)
		switch parts[0] {
		case "nameserver":
			d.Nameservers = appendUnique(d.Nameservers, field(parts, 1))
		case "search":
			d.SearchDomains = appendUnique(d.SearchDomains, parts[1:]...)
		case "domain":
			d.SearchDomains = appendUnique(d.SearchDomains, field(parts, 1))
		}
	}
	return d
}

// ScutilDNS parses `scutil --dns` on macOS, collecting
// `nameserver[N] : <ip>` and `search domain[N] : <domain>` across every
// resolver block.
func ScutilDNS(text string) types.DNSConfig {
	var d types.DNSConfig
	for _, line := range lines(text) {
		label, value, ok := cutLabel(line, ":")
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(label, "nameserver["):
			d.Nameservers = appendUnique(d.Nameservers, value)
		case strings.HasPrefix(label, "search domain["):
			d.SearchDomains = appendUnique(d.SearchDomains, value)
		}
	}
	return d
}

// IPConfig parses `ipconfig /all` on Windows. Dotted labels such as
// "DNS Servers . . . . : 10.0.0.2" start a list; following lines without a
// " : " separator continue it.
func IPConfig(text string) types.DNSConfig {
	var d types.DNSConfig
	var target *[]string

	for _, line := range lines(text) {
		label, value, ok := cutLabel(line, " : ")
		if !ok {
			if !continuation(line) {
				// adapter header, e.g. "Ethernet adapter Ethernet0:"
				target = nil
			} else if target != nil {
				*target = appendUnique(*target, line)
			}
			continue
		}

		label = strings.TrimRight(label, ". ")
		switch label {
		case "DNS Servers":
			target = &d.Nameservers
		case "DNS Suffix Search List":
			target = &d.SearchDomains
		default:
			target = nil
			continue
		}
		*target = appendUnique(*target, field(strings.Fields(value), 0))
	}
	return d
}
