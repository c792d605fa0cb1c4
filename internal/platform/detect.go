// Package platform detects the operating system, distribution and execution
// environment of the audited host. The result selects the resolver and
// check implementations for the run and fills the report's host identity.
package platform

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// Detector abstracts platform-specific system detection.
// Each supported OS provides an implementation via build tags.
type Detector interface {
	// DetectOS returns operating system information.
	DetectOS() (types.OSInfo, error)

	// DetectDistro returns Linux distribution information.
	// Returns empty DistroInfo on non-Linux systems.
	DetectDistro() (types.DistroInfo, error)

	// DetectEnvironment returns execution environment information
	// (container, VM, or bare-metal).
	DetectEnvironment() (types.EnvInfo, error)
}

// Detect runs layered detection:
//   - Layer 1: OS detection (must succeed)
//   - Layer 2: Distro detection (warning on failure, continues)
//   - Layer 3: Environment detection (warning on failure, continues)
//
// Only a Layer 1 failure is returned as an error; the others are collected
// as warnings for the report metadata.
func Detect(d Detector, log logrus.FieldLogger) (types.SystemContext, []string, error) {
	var sc types.SystemContext
	var warnings []string
	if log == nil {
		log = logrus.StandardLogger()
	}

	osInfo, err := d.DetectOS()
	if err != nil {
		return sc, nil, fmt.Errorf("OS detection failed: %w", err)
	}
	sc.OS = osInfo

	if distro, err := d.DetectDistro(); err != nil {
		warnings = append(warnings, fmt.Sprintf("distro detection failed: %v", err))
	} else {
		sc.Distro = distro
	}

	if env, err := d.DetectEnvironment(); err != nil {
		warnings = append(warnings, fmt.Sprintf("environment detection failed: %v", err))
	} else {
		sc.Environment = env
	}

	for _, w := range warnings {
		log.Warn(w)
	}
	log.WithFields(logrus.Fields{
		"os":      sc.OS.Name,
		"distro":  sc.Distro.ID,
		"env":     sc.Environment.Type,
		"runtime": sc.Environment.Runtime,
	}).Debug("system context detected")

	return sc, warnings, nil
}

// IsPrivileged reports whether the process runs as root. Always false on
// Windows, where the effective uid is not defined.
func IsPrivileged() bool {
	return os.Geteuid() == 0
}

// hostname returns os.Hostname, or "" when it cannot be determined.
func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}
