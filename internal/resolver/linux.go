package resolver

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/parse"
	"github.com/ancients-collective/hostaudit/internal/types"
)

const (
	resolvConfPath     = "/etc/resolv.conf"
	etcEnvironmentPath = "/etc/environment"
)

// Proxy sources reported in ProxyConfig.Sources on linux.
const (
	SourceEnv            = "env"
	SourceEtcEnvironment = "etc_environment"
)

var (
	httpProxyKeys  = []string{"HTTP_PROXY", "http_proxy"}
	httpsProxyKeys = []string{"HTTPS_PROXY", "https_proxy"}
	noProxyKeys    = []string{"NO_PROXY", "no_proxy"}
)

type linuxRoute struct{ deps Deps }

// DefaultRoute tries `ip route show default`, then `route -n`, then `netstat -rn`.
func (r linuxRoute) DefaultRoute(ctx context.Context) types.DefaultRoute {
	chain := engine.Chain[types.DefaultRoute]{
		Fact:        "default_route",
		Remediation: "Ensure iproute2 is installed (ip command) or provide route/netstat; run with appropriate permissions.",
		Strategies: []engine.Strategy[types.DefaultRoute]{
			{Source: "ip_route", Probe: engine.CommandProbe(r.deps.Runner, "ip", "route", "show", "default"), Parse: parse.IPRoute},
			{Source: "route", Probe: engine.CommandProbe(r.deps.Runner, "route", "-n"), Parse: parse.RouteTable},
			{Source: "netstat", Probe: engine.CommandProbe(r.deps.Runner, "netstat", "-rn"), Parse: parse.NetstatRoutes},
		},
	}
	route, status := chain.Resolve(ctx, r.deps.logger())
	route.FactStatus = status
	return route
}

type linuxDNS struct{ deps Deps }

// DNS tries `resolvectl status`, then /etc/resolv.conf.
func (d linuxDNS) DNS(ctx context.Context) types.DNSConfig {
	chain := engine.Chain[types.DNSConfig]{
		Fact:        "dns",
		Remediation: "Could not query systemd-resolved or read /etc/resolv.conf; run with appropriate permissions or check file existence.",
		Strategies: []engine.Strategy[types.DNSConfig]{
			{Source: "resolvectl", Probe: engine.CommandProbe(d.deps.Runner, "resolvectl", "status"), Parse: parse.Resolvectl},
			{Source: "resolv.conf", Probe: engine.FileProbe(d.deps.Files, resolvConfPath), Parse: parse.ResolvConf},
		},
	}
	dns, status := chain.Resolve(ctx, d.deps.logger())
	dns.FactStatus = status
	return dns
}

type linuxProxy struct{ deps Deps }

// Proxy reads the environment snapshot first, uppercase keys before
// lowercase, then fills still-missing values from /etc/environment. Values
// found in the environment are never overwritten. Environment lookups
// cannot fail, so the fact is always checked; an unreadable
// /etc/environment is only recorded in evidence.
func (p linuxProxy) Proxy(_ context.Context) types.ProxyConfig {
	var out types.ProxyConfig
	sources := []string{}
	log := p.deps.logger().WithField("fact", "proxy")

	envKeys := append(append(append([]string{}, httpProxyKeys...), httpsProxyKeys...), noProxyKeys...)
	evidence := []types.Evidence{engine.RecordEnv(p.deps.Env, envKeys...)}

	fromEnv := false
	for _, f := range p.fields(&out) {
		if v, ok := p.deps.Env.First(f.keys...); ok {
			*f.dst = types.Ptr(v)
			fromEnv = true
		}
	}
	if fromEnv {
		sources = append(sources, SourceEnv)
	}

	data, err := p.deps.Files.ReadFile(etcEnvironmentPath)
	evidence = append(evidence, engine.RecordRead(etcEnvironmentPath, data, err))
	if err != nil {
		log.WithError(err).Debug("environment file unreadable")
	} else {
		assignments := parse.EnvironmentFile(string(data))
		fromFile := false
		for _, f := range p.fields(&out) {
			if *f.dst != nil {
				continue
			}
			if v, ok := parse.FirstAssignment(assignments, f.keys...); ok {
				*f.dst = types.Ptr(v)
				fromFile = true
			}
		}
		if fromFile {
			sources = append(sources, SourceEtcEnvironment)
		}
	}

	out.Sources = sources
	out.FactStatus = types.FactStatus{Evidence: evidence}
	if len(sources) > 0 {
		out.Source = types.Ptr(sources[0])
	}
	log.WithFields(logrus.Fields{"sources": sources}).Debug("proxy resolved")
	return out
}

type proxyField struct {
	dst  **string
	keys []string
}

func (p linuxProxy) fields(out *types.ProxyConfig) []proxyField {
	return []proxyField{
		{&out.HTTPProxy, httpProxyKeys},
		{&out.HTTPSProxy, httpsProxyKeys},
		{&out.NoProxy, noProxyKeys},
	}
}
