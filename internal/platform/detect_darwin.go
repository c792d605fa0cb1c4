//go:build darwin

package platform

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// DarwinDetector implements Detector for macOS systems.
type DarwinDetector struct{}

// NewDetector returns a DarwinDetector. macOS detection reads no files.
func NewDetector(_ engine.FileReader, _ logrus.FieldLogger) Detector {
	return &DarwinDetector{}
}

// DetectOS returns macOS OS information.
func (d *DarwinDetector) DetectOS() (types.OSInfo, error) {
	info := types.OSInfo{Name: runtime.GOOS, Arch: runtime.GOARCH}
	if v, err := host.KernelVersion(); err == nil {
		info.Version = v
	}
	return info, nil
}

// DetectDistro returns empty DistroInfo; macOS has no distribution concept.
func (d *DarwinDetector) DetectDistro() (types.DistroInfo, error) {
	return types.DistroInfo{}, nil
}

// DetectEnvironment reports bare-metal unless gopsutil identifies a guest.
func (d *DarwinDetector) DetectEnvironment() (types.EnvInfo, error) {
	env := types.EnvInfo{Type: types.EnvBareMetal, Hostname: hostname()}
	if id, err := host.HostID(); err == nil {
		env.MachineID = id
	}
	if system, role, err := host.Virtualization(); err == nil && role == "guest" && system != "" {
		env.Type = types.EnvVM
		env.Runtime = system
	}
	return env, nil
}
