package inventory

import (
	"context"
	"fmt"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// Host returns the host identity.
func (c *Collector) Host(ctx context.Context) types.HostInfo {
	info, err := c.src.HostInfo(ctx)
	if err == nil && info == nil {
		err = fmt.Errorf("no host information returned")
	}
	var summary string
	if err == nil {
		summary = fmt.Sprintf("%s %s %s", info.Platform, info.PlatformVersion, info.KernelArch)
	}
	ev := engine.RecordCall("host.Info", summary, err)
	if err != nil {
		return types.HostInfo{FactStatus: c.failed("host", "host information", []types.Evidence{ev})}
	}
	if ev.Stdout == "" {
		ev.Stdout = "host information returned"
	}

	return types.HostInfo{
		Hostname:             nonEmpty(info.Hostname),
		OS:                   nonEmpty(info.OS),
		Platform:             nonEmpty(info.Platform),
		PlatformFamily:       nonEmpty(info.PlatformFamily),
		PlatformVersion:      nonEmpty(info.PlatformVersion),
		KernelVersion:        nonEmpty(info.KernelVersion),
		KernelArch:           nonEmpty(info.KernelArch),
		VirtualizationSystem: nonEmpty(info.VirtualizationSystem),
		VirtualizationRole:   nonEmpty(info.VirtualizationRole),
		UptimeSeconds:        types.Ptr(info.Uptime),
		FactStatus:           types.CheckedStatus(SourceHost, []types.Evidence{ev}),
	}
}

// CPU summarises the processors. The model comes from the first reported
// processor; core counts come from separate calls and survive a failed
// model lookup.
func (c *Collector) CPU(ctx context.Context) types.CPUInfo {
	var out types.CPUInfo
	evidence := make([]types.Evidence, 0, 3)

	infos, err := c.src.CPUInfo(ctx)
	evidence = append(evidence, engine.RecordCall("cpu.Info", count(len(infos), "processor"), err))
	if err == nil && len(infos) > 0 {
		first := infos[0]
		out.ModelName = nonEmpty(first.ModelName)
		out.Vendor = nonEmpty(first.VendorID)
		var maxMHz float64
		for _, i := range infos {
			if i.Mhz > maxMHz {
				maxMHz = i.Mhz
			}
		}
		if maxMHz > 0 {
			out.MaxMHz = types.Ptr(maxMHz)
		}
	}

	physical, err := c.src.CPUCounts(ctx, false)
	evidence = append(evidence, engine.RecordCall("cpu.Counts(physical)", fmt.Sprint(physical), err))
	if err == nil && physical > 0 {
		out.PhysicalCores = types.Ptr(physical)
	}

	logical, err := c.src.CPUCounts(ctx, true)
	evidence = append(evidence, engine.RecordCall("cpu.Counts(logical)", fmt.Sprint(logical), err))
	if err == nil && logical > 0 {
		out.LogicalCores = types.Ptr(logical)
	}

	if out.ModelName == nil && out.PhysicalCores == nil && out.LogicalCores == nil {
		return types.CPUInfo{FactStatus: c.failed("cpu", "processor information", evidence)}
	}
	out.FactStatus = types.CheckedStatus(SourceCPU, evidence)
	return out
}

// Memory returns physical memory totals and the swap size. A failed swap
// lookup only leaves the swap field empty.
func (c *Collector) Memory(ctx context.Context) types.MemoryInfo {
	vm, err := c.src.VirtualMemory(ctx)
	if err == nil && vm == nil {
		err = fmt.Errorf("no memory statistics returned")
	}
	var summary string
	if err == nil {
		summary = fmt.Sprintf("total=%d available=%d", vm.Total, vm.Available)
	}
	evidence := []types.Evidence{engine.RecordCall("mem.VirtualMemory", summary, err)}
	if err != nil {
		return types.MemoryInfo{FactStatus: c.failed("memory", "memory statistics", evidence)}
	}

	out := types.MemoryInfo{
		TotalBytes:     types.Ptr(vm.Total),
		AvailableBytes: types.Ptr(vm.Available),
		UsedPercent:    types.Ptr(vm.UsedPercent),
	}

	swap, err := c.src.SwapMemory(ctx)
	if err == nil && swap == nil {
		err = fmt.Errorf("no swap statistics returned")
	}
	summary = ""
	if err == nil {
		summary = fmt.Sprintf("total=%d", swap.Total)
		out.SwapTotalBytes = types.Ptr(swap.Total)
	}
	evidence = append(evidence, engine.RecordCall("mem.SwapMemory", summary, err))

	out.FactStatus = types.CheckedStatus(SourceMemory, evidence)
	return out
}

// Users lists logged-in sessions. An empty list is a valid answer.
func (c *Collector) Users(ctx context.Context) types.UserInventory {
	users, err := c.src.Users(ctx)
	ev := engine.RecordCall("host.Users", count(len(users), "session"), err)
	if err != nil {
		return types.UserInventory{
			Sessions:   []types.UserSession{},
			FactStatus: c.failed("users", "logged-in users", []types.Evidence{ev}),
		}
	}

	sessions := make([]types.UserSession, 0, len(users))
	for _, u := range users {
		s := types.UserSession{User: u.User, Terminal: u.Terminal, Host: u.Host}
		if u.Started > 0 {
			s.Started = uint64(u.Started)
		}
		sessions = append(sessions, s)
	}
	return types.UserInventory{
		Sessions:   sessions,
		FactStatus: types.CheckedStatus(SourceUsers, []types.Evidence{ev}),
	}
}
