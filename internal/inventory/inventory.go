// Package inventory gathers passthrough host facts through gopsutil: host
// identity, processors, memory, mounted filesystems, sessions, network
// interfaces and listening sockets. Nothing here produces a verdict.
//
// Every collector returns its fact with the shared status envelope. A call
// that fails leaves the fact not checked, with a privilege remediation when
// the failure was a permission error.
package inventory

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// Source is the set of system calls the collectors depend on. System
// returns the gopsutil implementation; tests substitute their own.
type Source struct {
	HostInfo      func(ctx context.Context) (*host.InfoStat, error)
	CPUInfo       func(ctx context.Context) ([]cpu.InfoStat, error)
	CPUCounts     func(ctx context.Context, logical bool) (int, error)
	VirtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory    func(ctx context.Context) (*mem.SwapMemoryStat, error)
	Partitions    func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	Usage         func(ctx context.Context, path string) (*disk.UsageStat, error)
	Users         func(ctx context.Context) ([]host.UserStat, error)
	Interfaces    func(ctx context.Context) (net.InterfaceStatList, error)
	Connections   func(ctx context.Context, kind string) ([]net.ConnectionStat, error)
	ProcessName   func(ctx context.Context, pid int32) (string, error)
}

// System returns a Source backed by gopsutil.
func System() Source {
	return Source{
		HostInfo:      host.InfoWithContext,
		CPUInfo:       cpu.InfoWithContext,
		CPUCounts:     cpu.CountsWithContext,
		VirtualMemory: mem.VirtualMemoryWithContext,
		SwapMemory:    mem.SwapMemoryWithContext,
		Partitions:    disk.PartitionsWithContext,
		Usage:         disk.UsageWithContext,
		Users:         host.UsersWithContext,
		Interfaces:    net.InterfacesWithContext,
		Connections:   net.ConnectionsWithContext,
		ProcessName:   processName,
	}
}

func processName(ctx context.Context, pid int32) (string, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

// Collector gathers inventory facts from a Source.
type Collector struct {
	src Source
	log logrus.FieldLogger
}

// New returns a Collector. A nil log uses the standard logger.
func New(src Source, log logrus.FieldLogger) *Collector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Collector{src: src, log: log}
}

// Source names reported in the facts' source field.
const (
	SourceHost       = "gopsutil/host"
	SourceCPU        = "gopsutil/cpu"
	SourceMemory     = "gopsutil/mem"
	SourceDisk       = "gopsutil/disk"
	SourceUsers      = "gopsutil/users"
	SourceInterfaces = "gopsutil/net_if"
	SourceSockets    = "gopsutil/net_connections"
)

// remediation returns the guidance for a failed call. Permission failures
// ask for elevation; anything else points at the platform.
func remediation(ev types.Evidence, what string) string {
	if ev.RC == engine.ExitNotPermitted {
		return fmt.Sprintf("Run the audit with elevated privileges (sudo/root or Administrator) to enumerate %s.", what)
	}
	return fmt.Sprintf("Could not enumerate %s on this platform; re-run as root and confirm /proc (or the platform equivalent) is readable.", what)
}

// failed builds the not-checked envelope for a failed call.
func (c *Collector) failed(fact, what string, evidence []types.Evidence) types.FactStatus {
	last := evidence[len(evidence)-1]
	kind, msg := engine.Classify(last)
	c.log.WithFields(logrus.Fields{"fact": fact, "kind": kind}).Info("inventory call failed")
	return types.NotCheckedStatus(kind, msg, remediation(last, what), evidence)
}

func count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return types.Ptr(s)
}
