//go:build !linux && !darwin

package platform

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// GenericDetector implements Detector with gopsutil alone. It serves
// Windows and any platform without a dedicated detector.
type GenericDetector struct{}

// NewDetector returns a GenericDetector.
func NewDetector(_ engine.FileReader, _ logrus.FieldLogger) Detector {
	return &GenericDetector{}
}

// DetectOS returns the OS name and, where gopsutil knows it, the platform version.
func (d *GenericDetector) DetectOS() (types.OSInfo, error) {
	info := types.OSInfo{Name: runtime.GOOS, Arch: runtime.GOARCH}
	if v, err := host.KernelVersion(); err == nil {
		info.Version = v
	}
	return info, nil
}

// DetectDistro returns empty DistroInfo.
func (d *GenericDetector) DetectDistro() (types.DistroInfo, error) {
	return types.DistroInfo{}, nil
}

// DetectEnvironment reports bare-metal unless gopsutil identifies a guest.
func (d *GenericDetector) DetectEnvironment() (types.EnvInfo, error) {
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
