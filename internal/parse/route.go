package parse

import (
	"strings"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// IPRoute parses `ip route show default`:
//
//	default via 192.168.1.1 dev eth0 proto dhcp metric 100
//
// The gateway follows the exact token "via" and the interface follows "dev".
// Scanning stops at the first line that yields either.
func IPRoute(text string) types.DefaultRoute {
	var r types.DefaultRoute
	for _, line := range lines(text) {
		tokens := strings.Fields(line)
		if gw := after(tokens, "via"); gw != "" {
			r.Gateway = types.Ptr(gw)
		}
		if dev := after(tokens, "dev"); dev != "" {
			r.Interface = types.Ptr(dev)
		}
		if r.HasValue() {
			break
		}
	}
	return r
}

// RouteTable parses the kernel table printed by `route -n`:
//
//	Destination     Gateway         Genmask         Flags Metric Ref    Use Iface
//	0.0.0.0         192.168.1.1     0.0.0.0         UG    100    0        0 eth0
//
// The default row has destination 0.0.0.0 or the literal "default".
func RouteTable(text string) types.DefaultRoute {
	var r types.DefaultRoute
	for _, line := range lines(text) {
		low := strings.ToLower(line)
		if strings.HasPrefix(low, "destination") || strings.HasPrefix(low, "kernel") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 8 {
			continue
		}
		if parts[0] != "0.0.0.0" && strings.ToLower(parts[0]) != "default" {
			continue
		}
		r.Gateway = types.Ptr(parts[1])
		r.Interface = types.Ptr(parts[len(parts)-1])
		r.Flags = types.Ptr(parts[3])
		break
	}
	return r
}

// NetstatRoutes parses `netstat -rn`, taking the first row whose first
// column is "default" (case-insensitive). The interface is the last column.
func NetstatRoutes(text string) types.DefaultRoute {
	var r types.DefaultRoute
	for _, line := range lines(text) {
		parts := strings.Fields(line)
		if len(parts) < 3 || strings.ToLower(parts[0]) != "default" {
			continue
		}
		r.Gateway = types.Ptr(parts[1])
		r.Interface = types.Ptr(parts[len(parts)-1])
		break
	}
	return r
}

// RouteGet parses the key/value output of `route -n get default` on macOS:
//
//	   route to: default
//	destination: default
//	    gateway: 192.168.1.1
//	  interface: en0
//	      flags: <UP,GATEWAY,DONE,STATIC,PRCLONING,GLOBAL>
//
// Destination is reported as "default" once any field is found.
func RouteGet(text string) types.DefaultRoute {
	var r types.DefaultRoute
	for _, line := range lines(text) {
		label, value, ok := cutLabel(line, ":")
		if !ok || value == "" {
			continue
		}
		switch label {
		case "gateway":
			r.Gateway = types.Ptr(value)
		case "interface":
			r.Interface = types.Ptr(value)
		case "flags":
			r.Flags = types.Ptr(value)
		}
	}
	if r.HasValue() {
		r.Destination = types.Ptr("default")
	}
	return r
}

// RoutePrint parses `route print -4 0.0.0.0` on Windows:
//
//	Network Destination        Netmask          Gateway       Interface  Metric
//	          0.0.0.0          0.0.0.0      192.168.1.1    192.168.1.100     25
//
// The interface is reported as the interface address Windows prints.
func RoutePrint(text string) types.DefaultRoute {
	var r types.DefaultRoute
	for _, line := range lines(text) {
		parts := strings.Fields(line)
		if len(parts) < 5 || parts[0] != "0.0.0.0" || parts[1] != "0.0.0.0" {
			continue
		}
		r.Destination = types.Ptr("0.0.0.0")
		r.Gateway = types.Ptr(parts[2])
		r.Interface = types.Ptr(parts[3])
		break
	}
	return r
}
