package resolver

import (
	"context"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/parse"
	"github.com/ancients-collective/hostaudit/internal/types"
)

type windowsRoute struct{ deps Deps }

// DefaultRoute queries `route print -4 0.0.0.0`.
func (r windowsRoute) DefaultRoute(ctx context.Context) types.DefaultRoute {
	chain := engine.Chain[types.DefaultRoute]{
		Fact:        "default_route",
		Remediation: "Ensure route.exe is available in System32.",
		Strategies: []engine.Strategy[types.DefaultRoute]{
			{Source: "route_print", Probe: engine.CommandProbe(r.deps.Runner, "route", "print", "-4", "0.0.0.0"), Parse: parse.RoutePrint},
		},
	}
	route, status := chain.Resolve(ctx, r.deps.logger())
	route.FactStatus = status
	return route
}

type windowsDNS struct{ deps Deps }

// DNS queries `ipconfig /all`.
func (d windowsDNS) DNS(ctx context.Context) types.DNSConfig {
	chain := engine.Chain[types.DNSConfig]{
		Fact:        "dns",
		Remediation: "Ensure ipconfig.exe is available in System32.",
		Strategies: []engine.Strategy[types.DNSConfig]{
			{Source: "ipconfig", Probe: engine.CommandProbe(d.deps.Runner, "ipconfig", "/all"), Parse: parse.IPConfig},
		},
	}
	dns, status := chain.Resolve(ctx, d.deps.logger())
	dns.FactStatus = status
	return dns
}

type windowsProxy struct{ deps Deps }

// Proxy queries `netsh winhttp show proxy`.
func (p windowsProxy) Proxy(ctx context.Context) types.ProxyConfig {
	chain := engine.Chain[types.ProxyConfig]{
		Fact:        "proxy",
		Remediation: "Ensure netsh.exe is available and run from an elevated prompt if access is denied.",
		Strategies: []engine.Strategy[types.ProxyConfig]{
			{Source: "netsh_winhttp", Probe: engine.CommandProbe(p.deps.Runner, "netsh", "winhttp", "show", "proxy"), Parse: parse.WinHTTPProxy},
		},
	}
	proxy, status := chain.Resolve(ctx, p.deps.logger())
	proxy.FactStatus = status
	proxy.Sources = sourcesOf(status)
	return proxy
}
