//go:build linux

package platform

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

const machineIDPath = "/etc/machine-id"

// LinuxDetector implements Detector for Linux systems using gopsutil.
type LinuxDetector struct {
	files engine.FileReader
	env   envProber
}

// NewDetector returns a LinuxDetector reading files through files, or the
// local filesystem when files is nil.
func NewDetector(files engine.FileReader, log logrus.FieldLogger) Detector {
	if files == nil {
		files = engine.OSFileReader{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LinuxDetector{files: files, env: newEnvProber(files, log)}
}

// DetectOS returns Linux OS information. A gopsutil failure only leaves
// the kernel version empty.
func (d *LinuxDetector) DetectOS() (types.OSInfo, error) {
	info := types.OSInfo{Name: runtime.GOOS, Arch: runtime.GOARCH}
	if v, err := host.KernelVersion(); err == nil {
		info.Version = v
	}
	return info, nil
}

// DetectDistro returns the distribution reported by gopsutil (os-release).
func (d *LinuxDetector) DetectDistro() (types.DistroInfo, error) {
	platform, family, version, err := host.PlatformInformation()
	if err != nil {
		return types.DistroInfo{}, err
	}
	return types.DistroInfo{ID: platform, Version: version, Family: family}, nil
}

// DetectEnvironment classifies container > VM > bare-metal and collects
// hostname and machine-id.
func (d *LinuxDetector) DetectEnvironment() (types.EnvInfo, error) {
	env := types.EnvInfo{Type: types.EnvBareMetal, Hostname: hostname()}

	if data, err := d.files.ReadFile(machineIDPath); err == nil {
		env.MachineID = strings.TrimSpace(string(data))
	}

	if ok, rt := d.env.container(); ok {
		env.Type = types.EnvContainer
		env.Runtime = rt
	} else if ok, hv := d.env.vm(); ok {
		env.Type = types.EnvVM
		env.Runtime = hv
	}
	return env, nil
}
