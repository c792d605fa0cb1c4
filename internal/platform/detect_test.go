package platform

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// mockDetector is a configurable Detector for testing the layering logic.
type mockDetector struct {
	osInfo    types.OSInfo
	osErr     error
	distro    types.DistroInfo
	distroErr error
	env       types.EnvInfo
	envErr    error
}

func (m *mockDetector) DetectOS() (types.OSInfo, error)           { return m.osInfo, m.osErr }
func (m *mockDetector) DetectDistro() (types.DistroInfo, error)   { return m.distro, m.distroErr }
func (m *mockDetector) DetectEnvironment() (types.EnvInfo, error) { return m.env, m.envErr }

var linuxOS = types.OSInfo{Name: "linux", Version: "6.1.0", Arch: "amd64"}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		detector *mockDetector
		warnings []string
		want     types.SystemContext
	}{
		{
			name: "all layers succeed",
			detector: &mockDetector{
				osInfo: linuxOS,
				distro: types.DistroInfo{ID: "ubuntu", Version: "22.04", Family: "debian"},
				env:    types.EnvInfo{Type: types.EnvContainer, Runtime: "docker", Hostname: "web-1", MachineID: "abc123"},
			},
			want: types.SystemContext{
				OS:          linuxOS,
				Distro:      types.DistroInfo{ID: "ubuntu", Version: "22.04", Family: "debian"},
				Environment: types.EnvInfo{Type: types.EnvContainer, Runtime: "docker", Hostname: "web-1", MachineID: "abc123"},
			},
		},
		{
			name: "distro failure is a warning",
			detector: &mockDetector{
				osInfo:    linuxOS,
				distroErr: errors.New("os-release unreadable"),
				env:       types.EnvInfo{Type: types.EnvBareMetal},
			},
			warnings: []string{"distro detection failed: os-release unreadable"},
			want: types.SystemContext{
				OS:          linuxOS,
				Environment: types.EnvInfo{Type: types.EnvBareMetal},
			},
		},
		{
			name: "environment failure is a warning",
			detector: &mockDetector{
				osInfo: linuxOS,
				distro: types.DistroInfo{ID: "rhel", Version: "9", Family: "rhel"},
				envErr: errors.New("cgroup unreadable"),
			},
			warnings: []string{"environment detection failed: cgroup unreadable"},
			want: types.SystemContext{
				OS:     linuxOS,
				Distro: types.DistroInfo{ID: "rhel", Version: "9", Family: "rhel"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := test.NewNullLogger()

			got, warnings, err := Detect(tt.detector, log)

			require.NoError(t, err)
			assert.Equal(t, tt.warnings, warnings)
			assert.Equal(t, tt.want, got)

			warned := 0
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel {
					warned++
				}
			}
			assert.Equal(t, len(tt.warnings), warned)
		})
	}
}

func TestDetect_OSFailureIsFatal(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, _, err := Detect(&mockDetector{osErr: errors.New("uname failed")}, log)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OS detection failed")
	assert.Contains(t, err.Error(), "uname failed")
}

func TestDetect_IdentityFlattensContext(t *testing.T) {
	log, _ := test.NewNullLogger()
	sc, _, err := Detect(&mockDetector{
		osInfo: linuxOS,
		distro: types.DistroInfo{ID: "alpine", Version: "3.18", Family: "alpine"},
		env:    types.EnvInfo{Type: types.EnvVM, Runtime: "kvm", Hostname: "test-host"},
	}, log)
	require.NoError(t, err)

	id := sc.Identity()
	assert.Equal(t, "test-host", id.Hostname)
	assert.Equal(t, "linux", id.OS)
	assert.Equal(t, "alpine", id.DistroID)
	assert.Equal(t, types.EnvVM, id.EnvType)
	assert.Equal(t, "kvm", id.EnvRuntime)
}

func TestNewDetector_RunsOnCurrentHost(t *testing.T) {
	log, _ := test.NewNullLogger()
	sc, _, err := Detect(NewDetector(nil, log), log)
	require.NoError(t, err)
	assert.NotEmpty(t, sc.OS.Name)
	assert.NotEmpty(t, sc.OS.Arch)
}
