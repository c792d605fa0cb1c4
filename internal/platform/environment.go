package platform

import (
	"bytes"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/engine"
)

// containerRuntimes are virtualization systems gopsutil reports for
// containers rather than VMs.
var containerRuntimes = map[string]bool{
	"docker":         true,
	"lxc":            true,
	"podman":         true,
	"systemd-nspawn": true,
}

// cgroupMarkers map substrings of /proc/self/cgroup to a container runtime,
// checked in order.
var cgroupMarkers = []struct{ marker, runtime string }{
	{"docker", "docker"},
	{"kubepods", "kubernetes"},
	{"lxc", "lxc"},
}

// dmiVendors map lower-cased DMI sys_vendor substrings to a hypervisor.
var dmiVendors = []struct{ marker, hypervisor string }{
	{"qemu", "kvm"},
	{"bochs", "kvm"},
	{"innotek gmbh", "virtualbox"},
	{"vmware, inc.", "vmware"},
	{"microsoft corporation", "hyper-v"},
	{"xen", "xen"},
	{"amazon ec2", "aws-nitro"},
	{"google", "gce"},
	{"digitalocean", "digitalocean"},
	{"hetzner", "hetzner"},
}

// dmiProducts map lower-cased DMI product_name substrings to a hypervisor.
var dmiProducts = []struct{ marker, hypervisor string }{
	{"kvm", "kvm"},
	{"virtualbox", "virtualbox"},
	{"vmware", "vmware"},
	{"standard pc", "kvm"},
	{"bhyve", "bhyve"},
	{"virtual machine", "hyper-v"},
}

// envPaths are the files consulted for environment detection.
type envPaths struct {
	dockerenv    string
	containerenv string
	cgroup       string
	sysVendor    string
	productName  string
	cpuinfo      string
	deviceTree   string
}

var linuxEnvPaths = envPaths{
	dockerenv:    "/.dockerenv",
	containerenv: "/run/.containerenv",
	cgroup:       "/proc/self/cgroup",
	sysVendor:    "/sys/class/dmi/id/sys_vendor",
	productName:  "/sys/class/dmi/id/product_name",
	cpuinfo:      "/proc/cpuinfo",
	deviceTree:   "/proc/device-tree/hypervisor/compatible",
}

// envProber classifies the execution environment from gopsutil's
// virtualization report and marker files.
type envProber struct {
	files engine.FileReader
	paths envPaths
	log   logrus.FieldLogger

	// virtualization reports (system, role) like host.Virtualization.
	virtualization func() (string, string, error)
}

func newEnvProber(files engine.FileReader, log logrus.FieldLogger) envProber {
	return envProber{
		files:          files,
		paths:          linuxEnvPaths,
		log:            log,
		virtualization: host.Virtualization,
	}
}

func (p envProber) read(path string) ([]byte, bool) {
	data, err := p.files.ReadFile(path)
	return data, err == nil
}

// guest returns the virtualization system when gopsutil reports a guest role.
func (p envProber) guest() string {
	if p.virtualization == nil {
		return ""
	}
	system, role, err := p.virtualization()
	if err != nil || role != "guest" {
		return ""
	}
	return system
}

// container detects container indicators. Order: gopsutil, marker files,
// cgroup contents.
func (p envProber) container() (bool, string) {
	if system := p.guest(); containerRuntimes[system] {
		return true, system
	}
	if _, ok := p.read(p.paths.dockerenv); ok {
		return true, "docker"
	}
	if _, ok := p.read(p.paths.containerenv); ok {
		return true, "podman"
	}
	if data, ok := p.read(p.paths.cgroup); ok {
		for _, m := range cgroupMarkers {
			if bytes.Contains(data, []byte(m.marker)) {
				return true, m.runtime
			}
		}
	}
	return false, ""
}

// vm detects hypervisors. Order: gopsutil, DMI vendor, DMI product,
// cpuinfo hypervisor flag, device-tree.
func (p envProber) vm() (bool, string) {
	if system := p.guest(); system != "" && !containerRuntimes[system] {
		return true, system
	}

	if data, ok := p.read(p.paths.sysVendor); ok {
		if hv := match(string(data), dmiVendors); hv != "" {
			return true, hv
		}
	}
	if data, ok := p.read(p.paths.productName); ok {
		if hv := match(string(data), dmiProducts); hv != "" {
			return true, hv
		}
	}

	if data, ok := p.read(p.paths.cpuinfo); ok {
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, "flags") && strings.Contains(line, " hypervisor") {
				return true, "unknown"
			}
		}
	}

	if data, ok := p.read(p.paths.deviceTree); ok {
		d := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(data))), "\x00", "")
		switch {
		case strings.Contains(d, "kvm"):
			return true, "kvm"
		case strings.Contains(d, "xen"):
			return true, "xen"
		}
		return true, d
	}

	p.log.Debug("VM detection: no hypervisor indicators found")
	return false, ""
}

func match(value string, table []struct{ marker, hypervisor string }) string {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, m := range table {
		if strings.Contains(v, m.marker) {
			return m.hypervisor
		}
	}
	return ""
}
