package resolver

import (
	"context"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/parse"
	"github.com/ancients-collective/hostaudit/internal/types"
)

const scutilRemediation = "Ensure scutil is available and run with appropriate permissions."

type darwinRoute struct{ deps Deps }

// DefaultRoute queries `route -n get default`.
func (r darwinRoute) DefaultRoute(ctx context.Context) types.DefaultRoute {
	chain := engine.Chain[types.DefaultRoute]{
		Fact:        "default_route",
		Remediation: "Run with appropriate permissions and ensure the route command is available.",
		Strategies: []engine.Strategy[types.DefaultRoute]{
			{Source: "route_get", Probe: engine.CommandProbe(r.deps.Runner, "route", "-n", "get", "default"), Parse: parse.RouteGet},
		},
	}
	route, status := chain.Resolve(ctx, r.deps.logger())
	route.FactStatus = status
	return route
}

type darwinDNS struct{ deps Deps }

// DNS queries `scutil --dns`.
func (d darwinDNS) DNS(ctx context.Context) types.DNSConfig {
	chain := engine.Chain[types.DNSConfig]{
		Fact:        "dns",
		Remediation: scutilRemediation,
		Strategies: []engine.Strategy[types.DNSConfig]{
			{Source: "scutil_dns", Probe: engine.CommandProbe(d.deps.Runner, "scutil", "--dns"), Parse: parse.ScutilDNS},
		},
	}
	dns, status := chain.Resolve(ctx, d.deps.logger())
	dns.FactStatus = status
	return dns
}

type darwinProxy struct{ deps Deps }

// Proxy queries `scutil --proxy`.
func (p darwinProxy) Proxy(ctx context.Context) types.ProxyConfig {
	chain := engine.Chain[types.ProxyConfig]{
		Fact:        "proxy",
		Remediation: scutilRemediation,
		Strategies: []engine.Strategy[types.ProxyConfig]{
			{Source: "scutil_proxy", Probe: engine.CommandProbe(p.deps.Runner, "scutil", "--proxy"), Parse: parse.ScutilProxy},
		},
	}
	proxy, status := chain.Resolve(ctx, p.deps.logger())
	proxy.FactStatus = status
	proxy.Sources = sourcesOf(status)
	return proxy
}

// sourcesOf lists the single winning source of a one-strategy proxy chain.
func sourcesOf(status types.FactStatus) []string {
	if status.Source == nil {
		return []string{}
	}
	return []string{*status.Source}
}
