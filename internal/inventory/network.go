package inventory

import (
	"context"
	"net/netip"
	"slices"
	"strings"
	"syscall"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// Address family labels.
const (
	FamilyIPv4 = "IPv4"
	FamilyIPv6 = "IPv6"
	FamilyMAC  = "MAC"
)

// Interfaces lists network interfaces with their hardware and IP addresses.
func (c *Collector) Interfaces(ctx context.Context) types.InterfaceInventory {
	list, err := c.src.Interfaces(ctx)
	ev := engine.RecordCall("net.Interfaces", count(len(list), "interface"), err)
	if err != nil {
		return types.InterfaceInventory{
			Interfaces: []types.NetInterface{},
			FactStatus: c.failed("interfaces", "network interfaces", []types.Evidence{ev}),
		}
	}

	out := make([]types.NetInterface, 0, len(list))
	for _, i := range list {
		iface := types.NetInterface{
			Name:      i.Name,
			IsUp:      slices.Contains(i.Flags, "up"),
			MTU:       i.MTU,
			Flags:     i.Flags,
			Addresses: []types.InterfaceAddress{},
		}
		if i.HardwareAddr != "" {
			iface.Addresses = append(iface.Addresses, types.InterfaceAddress{Family: FamilyMAC, Address: i.HardwareAddr})
		}
		for _, a := range i.Addrs {
			iface.Addresses = append(iface.Addresses, types.InterfaceAddress{Family: addrFamily(a.Addr), Address: a.Addr})
		}
		out = append(out, iface)
	}

	return types.InterfaceInventory{
		Interfaces: out,
		FactStatus: types.CheckedStatus(SourceInterfaces, []types.Evidence{ev}),
	}
}

// addrFamily labels an address as reported by gopsutil, usually in CIDR form.
func addrFamily(addr string) string {
	ip, _, _ := strings.Cut(addr, "/")
	if a, err := netip.ParseAddr(ip); err == nil {
		if a.Is4() || a.Is4In6() {
			return FamilyIPv4
		}
		return FamilyIPv6
	}
	if strings.Contains(ip, ":") {
		return FamilyIPv6
	}
	return FamilyIPv4
}

// familyLabel maps a socket address family number to a label.
func familyLabel(family uint32) string {
	switch family {
	case syscall.AF_INET:
		return FamilyIPv4
	case syscall.AF_INET6:
		return FamilyIPv6
	}
	return "unknown"
}

// ListeningPorts returns TCP sockets in LISTEN state and bound UDP sockets.
// Enumerating other users' sockets usually needs root; a permission error
// leaves the fact not checked.
func (c *Collector) ListeningPorts(ctx context.Context) types.ListeningPorts {
	conns, err := c.src.Connections(ctx, "inet")
	ev := engine.RecordCall("net.Connections(inet)", count(len(conns), "socket"), err)
	if err != nil {
		return types.ListeningPorts{
			TCP:        []types.SocketEntry{},
			UDP:        []types.SocketEntry{},
			FactStatus: c.failed("listening_ports", "system-wide listening sockets", []types.Evidence{ev}),
		}
	}

	out := types.ListeningPorts{TCP: []types.SocketEntry{}, UDP: []types.SocketEntry{}}
	names := make(map[int32]*string)
	for _, conn := range conns {
		if conn.Laddr.Port == 0 {
			continue
		}
		var tcp bool
		switch {
		case conn.Type == syscall.SOCK_STREAM && conn.Status == "LISTEN":
			tcp = true
		case conn.Type == syscall.SOCK_DGRAM:
		default:
			continue
		}

		entry := types.SocketEntry{
			IP:          conn.Laddr.IP,
			Port:        conn.Laddr.Port,
			Family:      familyLabel(conn.Family),
			PID:         conn.Pid,
			ProcessName: c.processName(ctx, names, conn.Pid),
		}
		if tcp {
			out.TCP = append(out.TCP, entry)
		} else {
			out.UDP = append(out.UDP, entry)
		}
	}

	out.FactStatus = types.CheckedStatus(SourceSockets, []types.Evidence{ev})
	return out
}

// processName resolves pid once per run of ListeningPorts. A failed lookup
// leaves the name empty; it never fails the fact.
func (c *Collector) processName(ctx context.Context, seen map[int32]*string, pid int32) *string {
	if pid <= 0 || c.src.ProcessName == nil {
		return nil
	}
	if name, ok := seen[pid]; ok {
		return name
	}
	var name *string
	if n, err := c.src.ProcessName(ctx, pid); err == nil {
		name = nonEmpty(n)
	}
	seen[pid] = name
	return name
}
