package types

// Valid environment types.
const (
	EnvContainer = "container"
	EnvVM        = "vm"
	EnvBareMetal = "bare-metal"
)

// Supported platform names, matching runtime.GOOS.
const (
	PlatformLinux   = "linux"
	PlatformDarwin  = "darwin"
	PlatformWindows = "windows"
)

// SystemContext holds information about the system being audited.
// It is populated by the platform detection package and used to select
// the resolver and check implementations for the run.
type SystemContext struct {
	// OS contains operating system information.
	OS OSInfo

	// Distro contains Linux distribution information.
	Distro DistroInfo

	// Environment contains execution environment information.
	Environment EnvInfo
}

// OSInfo holds operating system details.
type OSInfo struct {
	// Name is the OS identifier (e.g., "linux", "darwin", "windows").
	Name string

	// Version is the kernel version string.
	Version string

	// Arch is the CPU architecture (e.g., "amd64", "arm64").
	Arch string
}

// DistroInfo holds Linux distribution details.
// Empty on non-Linux systems.
type DistroInfo struct {
	// ID is the distribution identifier (e.g., "ubuntu", "rhel", "alpine").
	ID string

	// Version is the distribution version (e.g., "22.04", "9", "3.18").
	Version string

	// Family is the distribution family (e.g., "debian", "rhel", "alpine").
	Family string
}

// EnvInfo holds execution environment details.
type EnvInfo struct {
	// Type is the environment category: "container", "vm", or "bare-metal".
	Type string

	// Runtime is the specific runtime (e.g., "docker", "podman", "kvm", "vmware").
	Runtime string

	// Hostname is the system hostname (os.Hostname).
	Hostname string

	// MachineID is the stable machine identifier (from /etc/machine-id on Linux).
	MachineID string
}

// Identity flattens the context into the report's host identity block.
func (c SystemContext) Identity() HostIdentity {
	return HostIdentity{
		Hostname:      c.Environment.Hostname,
		OS:            c.OS.Name,
		OSVersion:     c.OS.Version,
		Arch:          c.OS.Arch,
		DistroID:      c.Distro.ID,
		DistroVersion: c.Distro.Version,
		DistroFamily:  c.Distro.Family,
		EnvType:       c.Environment.Type,
		EnvRuntime:    c.Environment.Runtime,
		MachineID:     c.Environment.MachineID,
	}
}
