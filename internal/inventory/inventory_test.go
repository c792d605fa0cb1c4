package inventory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

var errDenied = fmt.Errorf("open /proc/net/tcp: %w", fs.ErrPermission)

// fakeSource returns a Source describing a small, healthy host.
func fakeSource() Source {
	return Source{
		HostInfo: func(context.Context) (*host.InfoStat, error) {
			return &host.InfoStat{
				Hostname:        "web-1",
				OS:              "linux",
				Platform:        "ubuntu",
				PlatformFamily:  "debian",
				PlatformVersion: "24.04",
				KernelVersion:   "6.8.0",
				KernelArch:      "x86_64",
				Uptime:          3600,
			}, nil
		},
		CPUInfo: func(context.Context) ([]cpu.InfoStat, error) {
			return []cpu.InfoStat{
				{VendorID: "GenuineIntel", ModelName: "Xeon", Mhz: 2400},
				{VendorID: "GenuineIntel", ModelName: "Xeon", Mhz: 3100},
			}, nil
		},
		CPUCounts: func(_ context.Context, logical bool) (int, error) {
			if logical {
				return 8, nil
			}
			return 4, nil
		},
		VirtualMemory: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 8 << 30, Available: 6 << 30, UsedPercent: 25}, nil
		},
		SwapMemory: func(context.Context) (*mem.SwapMemoryStat, error) {
			return &mem.SwapMemoryStat{Total: 2 << 30}, nil
		},
		Partitions: func(context.Context, bool) ([]disk.PartitionStat, error) {
			return []disk.PartitionStat{
				{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4", Opts: []string{"rw"}},
				{Device: "/dev/sdb1", Mountpoint: "/data", Fstype: "xfs"},
			}, nil
		},
		Usage: func(_ context.Context, path string) (*disk.UsageStat, error) {
			if path == "/data" {
				return nil, errDenied
			}
			return &disk.UsageStat{Total: 100, Free: 40, UsedPercent: 60}, nil
		},
		Users: func(context.Context) ([]host.UserStat, error) {
			return []host.UserStat{{User: "alice", Terminal: "pts/0", Host: "10.0.0.9", Started: 1700000000}}, nil
		},
		Interfaces: func(context.Context) (net.InterfaceStatList, error) {
			return net.InterfaceStatList{
				{
					Name:         "eth0",
					MTU:          1500,
					HardwareAddr: "52:54:00:12:34:56",
					Flags:        []string{"up", "broadcast", "multicast"},
					Addrs: net.InterfaceAddrList{
						{Addr: "192.168.1.10/24"},
						{Addr: "fe80::5054:ff:fe12:3456/64"},
					},
				},
				{Name: "lo", MTU: 65536, Flags: []string{"loopback"}, Addrs: net.InterfaceAddrList{{Addr: "127.0.0.1/8"}}},
			}, nil
		},
		Connections: func(context.Context, string) ([]net.ConnectionStat, error) {
			return []net.ConnectionStat{
				{Family: syscall.AF_INET, Type: syscall.SOCK_STREAM, Status: "LISTEN", Laddr: net.Addr{IP: "0.0.0.0", Port: 22}, Pid: 100},
				{Family: syscall.AF_INET6, Type: syscall.SOCK_STREAM, Status: "LISTEN", Laddr: net.Addr{IP: "::", Port: 22}, Pid: 100},
				{Family: syscall.AF_INET, Type: syscall.SOCK_STREAM, Status: "ESTABLISHED", Laddr: net.Addr{IP: "10.0.0.1", Port: 51000}, Pid: 200},
				{Family: syscall.AF_INET, Type: syscall.SOCK_DGRAM, Status: "NONE", Laddr: net.Addr{IP: "127.0.0.53", Port: 53}, Pid: 300},
				{Family: syscall.AF_INET, Type: syscall.SOCK_DGRAM, Laddr: net.Addr{IP: "0.0.0.0", Port: 0}},
			}, nil
		},
		ProcessName: func(_ context.Context, pid int32) (string, error) {
			if pid == 100 {
				return "sshd", nil
			}
			return "", errors.New("no such process")
		},
	}
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestHost(t *testing.T) {
	got := New(fakeSource(), quietLogger()).Host(context.Background())

	require.False(t, got.NotChecked)
	assert.Equal(t, SourceHost, *got.Source)
	assert.Equal(t, "web-1", *got.Hostname)
	assert.Equal(t, "ubuntu", *got.Platform)
	assert.Equal(t, uint64(3600), *got.UptimeSeconds)
	assert.Nil(t, got.VirtualizationSystem, "empty strings stay nil")
	require.Len(t, got.Evidence, 1)
	assert.Equal(t, []string{"call", "host.Info"}, got.Evidence[0].Cmd)
}

func TestHost_Failure(t *testing.T) {
	src := fakeSource()
	src.HostInfo = func(context.Context) (*host.InfoStat, error) { return nil, errors.New("boom") }

	got := New(src, quietLogger()).Host(context.Background())

	assert.True(t, got.NotChecked)
	assert.Nil(t, got.Source)
	assert.Nil(t, got.Hostname)
	assert.Equal(t, types.ErrProbeFailed, got.ErrorKind)
	assert.Equal(t, "boom", *got.Error)
	assert.NotEmpty(t, *got.Remediation)
}

func TestCPU(t *testing.T) {
	got := New(fakeSource(), quietLogger()).CPU(context.Background())

	require.False(t, got.NotChecked)
	assert.Equal(t, "Xeon", *got.ModelName)
	assert.Equal(t, "GenuineIntel", *got.Vendor)
	assert.Equal(t, 4, *got.PhysicalCores)
	assert.Equal(t, 8, *got.LogicalCores)
	assert.InDelta(t, 3100, *got.MaxMHz, 1e-9)
	assert.Len(t, got.Evidence, 3)
}

func TestCPU_PartialAndTotalFailure(t *testing.T) {
	src := fakeSource()
	src.CPUInfo = func(context.Context) ([]cpu.InfoStat, error) { return nil, errors.New("no cpuinfo") }

	partial := New(src, quietLogger()).CPU(context.Background())
	assert.False(t, partial.NotChecked, "core counts alone are enough")
	assert.Nil(t, partial.ModelName)
	assert.Equal(t, 8, *partial.LogicalCores)

	src.CPUCounts = func(context.Context, bool) (int, error) { return 0, errors.New("no sysconf") }
	failed := New(src, quietLogger()).CPU(context.Background())
	assert.True(t, failed.NotChecked)
	assert.Nil(t, failed.LogicalCores)
	assert.Len(t, failed.Evidence, 3)
}

func TestMemory(t *testing.T) {
	got := New(fakeSource(), quietLogger()).Memory(context.Background())
	require.False(t, got.NotChecked)
	assert.Equal(t, uint64(8<<30), *got.TotalBytes)
	assert.Equal(t, uint64(2<<30), *got.SwapTotalBytes)

	src := fakeSource()
	src.SwapMemory = func(context.Context) (*mem.SwapMemoryStat, error) { return nil, errors.New("no swap info") }
	noSwap := New(src, quietLogger()).Memory(context.Background())
	assert.False(t, noSwap.NotChecked)
	assert.Nil(t, noSwap.SwapTotalBytes)
	require.Len(t, noSwap.Evidence, 2)
	assert.Equal(t, engine.ExitReadError, noSwap.Evidence[1].RC)
}

func TestDisks_UsageFailureKeepsPartition(t *testing.T) {
	got := New(fakeSource(), quietLogger()).Disks(context.Background())

	require.False(t, got.NotChecked)
	require.Len(t, got.Partitions, 2)
	assert.Equal(t, "/", got.Partitions[0].Mountpoint)
	assert.Equal(t, uint64(100), *got.Partitions[0].TotalBytes)
	assert.Equal(t, "/data", got.Partitions[1].Mountpoint)
	assert.Nil(t, got.Partitions[1].TotalBytes)
	assert.Equal(t, "1 mountpoint without usage", got.Evidence[0].Stderr)
}

func TestUsers(t *testing.T) {
	got := New(fakeSource(), quietLogger()).Users(context.Background())
	require.False(t, got.NotChecked)
	assert.Equal(t, []types.UserSession{{User: "alice", Terminal: "pts/0", Host: "10.0.0.9", Started: 1700000000}}, got.Sessions)

	src := fakeSource()
	src.Users = func(context.Context) ([]host.UserStat, error) { return nil, nil }
	empty := New(src, quietLogger()).Users(context.Background())
	assert.False(t, empty.NotChecked, "no sessions is an answer")
	assert.NotNil(t, empty.Sessions)
	assert.Empty(t, empty.Sessions)
}

func TestInterfaces(t *testing.T) {
	got := New(fakeSource(), quietLogger()).Interfaces(context.Background())

	require.False(t, got.NotChecked)
	require.Len(t, got.Interfaces, 2)

	eth := got.Interfaces[0]
	assert.True(t, eth.IsUp)
	assert.Equal(t, []types.InterfaceAddress{
		{Family: FamilyMAC, Address: "52:54:00:12:34:56"},
		{Family: FamilyIPv4, Address: "192.168.1.10/24"},
		{Family: FamilyIPv6, Address: "fe80::5054:ff:fe12:3456/64"},
	}, eth.Addresses)

	lo := got.Interfaces[1]
	assert.False(t, lo.IsUp)
	assert.Equal(t, []types.InterfaceAddress{{Family: FamilyIPv4, Address: "127.0.0.1/8"}}, lo.Addresses)
}

func TestAddrFamily(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"10.1.2.3/8", FamilyIPv4},
		{"10.1.2.3", FamilyIPv4},
		{"::1/128", FamilyIPv6},
		{"fe80::1%eth0/64", FamilyIPv6},
		{"::ffff:10.0.0.1", FamilyIPv4},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, addrFamily(tt.addr))
		})
	}
}

func TestListeningPorts(t *testing.T) {
	got := New(fakeSource(), quietLogger()).ListeningPorts(context.Background())

	require.False(t, got.NotChecked)
	assert.Equal(t, SourceSockets, *got.Source)
	require.Len(t, got.TCP, 2, "established sockets are skipped")
	assert.Equal(t, "0.0.0.0", got.TCP[0].IP)
	assert.Equal(t, uint32(22), got.TCP[0].Port)
	assert.Equal(t, FamilyIPv4, got.TCP[0].Family)
	assert.Equal(t, "sshd", *got.TCP[0].ProcessName)
	assert.Equal(t, FamilyIPv6, got.TCP[1].Family)

	require.Len(t, got.UDP, 1, "unbound UDP sockets are skipped")
	assert.Equal(t, uint32(53), got.UDP[0].Port)
	assert.Nil(t, got.UDP[0].ProcessName, "failed name lookups stay empty")
}

func TestListeningPorts_ProcessNameLookedUpOnce(t *testing.T) {
	src := fakeSource()
	calls := 0
	src.ProcessName = func(context.Context, int32) (string, error) {
		calls++
		return "sshd", nil
	}

	New(src, quietLogger()).ListeningPorts(context.Background())
	assert.Equal(t, 2, calls, "each pid is resolved once")
}

func TestListeningPorts_PermissionDenied(t *testing.T) {
	src := fakeSource()
	src.Connections = func(context.Context, string) ([]net.ConnectionStat, error) { return nil, errDenied }
	log, hook := test.NewNullLogger()

	got := New(src, log).ListeningPorts(context.Background())

	assert.True(t, got.NotChecked)
	assert.Equal(t, types.ErrProbeUnavailable, got.ErrorKind)
	assert.Contains(t, *got.Remediation, "elevated privileges")
	assert.NotNil(t, got.TCP)
	assert.Empty(t, got.TCP)
	require.Len(t, got.Evidence, 1)
	assert.Equal(t, engine.ExitNotPermitted, got.Evidence[0].RC)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}
