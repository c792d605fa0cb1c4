package types

// HostInfo is the host identity as reported by the system-metrics library.
type HostInfo struct {
	Hostname             *string `json:"hostname" yaml:"hostname"`
	OS                   *string `json:"os" yaml:"os"`
	Platform             *string `json:"platform" yaml:"platform"`
	PlatformFamily       *string `json:"platform_family" yaml:"platform_family"`
	PlatformVersion      *string `json:"platform_version" yaml:"platform_version"`
	KernelVersion        *string `json:"kernel_version" yaml:"kernel_version"`
	KernelArch           *string `json:"kernel_arch" yaml:"kernel_arch"`
	VirtualizationSystem *string `json:"virtualization_system" yaml:"virtualization_system"`
	VirtualizationRole   *string `json:"virtualization_role" yaml:"virtualization_role"`
	UptimeSeconds        *uint64 `json:"uptime_seconds" yaml:"uptime_seconds"`

	FactStatus `yaml:",inline"`
}

// CPUInfo summarises the processors.
type CPUInfo struct {
	ModelName     *string  `json:"model_name" yaml:"model_name"`
	Vendor        *string  `json:"vendor" yaml:"vendor"`
	PhysicalCores *int     `json:"physical_cores" yaml:"physical_cores"`
	LogicalCores  *int     `json:"logical_cores" yaml:"logical_cores"`
	MaxMHz        *float64 `json:"max_mhz" yaml:"max_mhz"`

	FactStatus `yaml:",inline"`
}

// MemoryInfo holds physical and swap memory totals.
type MemoryInfo struct {
	TotalBytes     *uint64  `json:"total_bytes" yaml:"total_bytes"`
	AvailableBytes *uint64  `json:"available_bytes" yaml:"available_bytes"`
	UsedPercent    *float64 `json:"used_percent" yaml:"used_percent"`
	SwapTotalBytes *uint64  `json:"swap_total_bytes" yaml:"swap_total_bytes"`

	FactStatus `yaml:",inline"`
}

// Partition is one mounted filesystem.
type Partition struct {
	Device      string   `json:"device" yaml:"device"`
	Mountpoint  string   `json:"mountpoint" yaml:"mountpoint"`
	FSType      string   `json:"fstype" yaml:"fstype"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
	TotalBytes  *uint64  `json:"total_bytes" yaml:"total_bytes"`
	FreeBytes   *uint64  `json:"free_bytes" yaml:"free_bytes"`
	UsedPercent *float64 `json:"used_percent" yaml:"used_percent"`
}

// DiskInventory lists mounted partitions with usage where readable.
type DiskInventory struct {
	Partitions []Partition `json:"partitions" yaml:"partitions"`

	FactStatus `yaml:",inline"`
}

// UserSession is one logged-in user session.
type UserSession struct {
	User     string `json:"user" yaml:"user"`
	Terminal string `json:"terminal,omitempty" yaml:"terminal,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Started  uint64 `json:"started,omitempty" yaml:"started,omitempty"`
}

// UserInventory lists logged-in user sessions.
type UserInventory struct {
	Sessions []UserSession `json:"sessions" yaml:"sessions"`

	FactStatus `yaml:",inline"`
}

// InterfaceAddress is one address bound to an interface.
type InterfaceAddress struct {
	// Family is "IPv4", "IPv6" or "MAC".
	Family  string `json:"family" yaml:"family"`
	Address string `json:"address" yaml:"address"`
}

// NetInterface is one network interface.
type NetInterface struct {
	Name      string             `json:"name" yaml:"name"`
	IsUp      bool               `json:"is_up" yaml:"is_up"`
	MTU       int                `json:"mtu" yaml:"mtu"`
	Flags     []string           `json:"flags,omitempty" yaml:"flags,omitempty"`
	Addresses []InterfaceAddress `json:"addresses" yaml:"addresses"`
}

// InterfaceInventory lists network interfaces and their addresses.
type InterfaceInventory struct {
	Interfaces []NetInterface `json:"interfaces" yaml:"interfaces"`

	FactStatus `yaml:",inline"`
}

// SocketEntry is a listening TCP socket or a bound UDP socket.
type SocketEntry struct {
	IP          string  `json:"ip" yaml:"ip"`
	Port        uint32  `json:"port" yaml:"port"`
	Family      string  `json:"family" yaml:"family"`
	PID         int32   `json:"pid" yaml:"pid"`
	ProcessName *string `json:"process_name" yaml:"process_name"`
}

// ListeningPorts is the local exposure snapshot.
type ListeningPorts struct {
	TCP []SocketEntry `json:"tcp" yaml:"tcp"`
	UDP []SocketEntry `json:"udp" yaml:"udp"`

	FactStatus `yaml:",inline"`
}
