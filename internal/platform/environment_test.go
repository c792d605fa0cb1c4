package platform

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/ancients-collective/hostaudit/internal/engine/enginetest"
)

// prober returns an envProber over in-memory files with gopsutil reporting
// the given guest system ("" for none).
func prober(files enginetest.Files, guest string) envProber {
	log, _ := test.NewNullLogger()
	p := newEnvProber(files, log)
	p.virtualization = func() (string, string, error) {
		if guest == "" {
			return "", "", errors.New("not virtualized")
		}
		return guest, "guest", nil
	}
	return p
}

func TestEnvProber_Container(t *testing.T) {
	tests := []struct {
		name    string
		files   enginetest.Files
		guest   string
		want    bool
		runtime string
	}{
		{"gopsutil docker", nil, "docker", true, "docker"},
		{"gopsutil kvm is not a container", nil, "kvm", false, ""},
		{"dockerenv marker", enginetest.Files{"/.dockerenv": ""}, "", true, "docker"},
		{"containerenv marker", enginetest.Files{"/run/.containerenv": ""}, "", true, "podman"},
		{"cgroup docker", enginetest.Files{"/proc/self/cgroup": "12:devices:/docker/abc123\n0::/docker/abc123\n"}, "", true, "docker"},
		{"cgroup kubernetes", enginetest.Files{"/proc/self/cgroup": "11:memory:/kubepods/burstable/podabc/def456\n"}, "", true, "kubernetes"},
		{"cgroup lxc", enginetest.Files{"/proc/self/cgroup": "10:memory:/lxc/my-container\n"}, "", true, "lxc"},
		{"plain cgroup", enginetest.Files{"/proc/self/cgroup": "0::/init.scope\n"}, "", false, ""},
		{"no indicators", nil, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, rt := prober(tt.files, tt.guest).container()
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.runtime, rt)
		})
	}
}

func TestEnvProber_VM(t *testing.T) {
	vendor := "/sys/class/dmi/id/sys_vendor"
	product := "/sys/class/dmi/id/product_name"
	cpuinfo := "/proc/cpuinfo"
	dt := "/proc/device-tree/hypervisor/compatible"

	tests := []struct {
		name  string
		files enginetest.Files
		guest string
		want  bool
		hv    string
	}{
		{"gopsutil kvm", nil, "kvm", true, "kvm"},
		{"gopsutil container is not a vm", nil, "lxc", false, ""},
		{"QEMU vendor", enginetest.Files{vendor: "QEMU\n"}, "", true, "kvm"},
		{"VirtualBox vendor", enginetest.Files{vendor: "innotek GmbH\n"}, "", true, "virtualbox"},
		{"VMware vendor", enginetest.Files{vendor: "VMware, Inc.\n"}, "", true, "vmware"},
		{"AWS vendor", enginetest.Files{vendor: "Amazon EC2\n"}, "", true, "aws-nitro"},
		{"Dell bare-metal", enginetest.Files{vendor: "Dell Inc.\n"}, "", false, ""},
		{"Standard PC product", enginetest.Files{product: "Standard PC (Q35 + ICH9, 2009)\n"}, "", true, "kvm"},
		{"Hyper-V product", enginetest.Files{product: "Virtual Machine\n"}, "", true, "hyper-v"},
		{"PowerEdge product", enginetest.Files{product: "PowerEdge R740\n"}, "", false, ""},
		{"vendor wins over product", enginetest.Files{vendor: "QEMU\n", product: "VirtualBox\n"}, "", true, "kvm"},
		{"cpuinfo hypervisor flag", enginetest.Files{cpuinfo: "processor\t: 0\nflags\t\t: fpu vme hypervisor lahf_lm\n"}, "", true, "unknown"},
		{"cpuinfo without flag", enginetest.Files{cpuinfo: "processor\t: 0\nflags\t\t: fpu vme lahf_lm\n"}, "", false, ""},
		{"device-tree kvm", enginetest.Files{dt: "linux,kvm\x00"}, "", true, "kvm"},
		{"device-tree xen", enginetest.Files{dt: "xen,xen-4.17\x00"}, "", true, "xen"},
		{"device-tree other", enginetest.Files{dt: "custom-hv\x00"}, "", true, "custom-hv"},
		{"nothing", nil, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, hv := prober(tt.files, tt.guest).vm()
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.hv, hv)
		})
	}
}
