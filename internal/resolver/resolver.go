// Package resolver answers the network facts of a host (default route, DNS
// and proxy configuration) through per-platform fallback chains. One
// implementation per platform is chosen once by New.
package resolver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/engine"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// DefaultRouteResolver answers "what is the default gateway?".
type DefaultRouteResolver interface {
	DefaultRoute(ctx context.Context) types.DefaultRoute
}

// DNSResolver answers "which nameservers and search domains are configured?".
type DNSResolver interface {
	DNS(ctx context.Context) types.DNSConfig
}

// ProxyResolver answers "which proxy is configured?". Implementations
// never make network calls.
type ProxyResolver interface {
	Proxy(ctx context.Context) types.ProxyConfig
}

// Deps are the collaborators every resolver probes through.
type Deps struct {
	Runner engine.Runner
	Files  engine.FileReader
	Env    engine.Env
	Log    logrus.FieldLogger
}

func (d Deps) logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

// Set bundles the resolvers for one platform.
type Set struct {
	Route DefaultRouteResolver
	DNS   DNSResolver
	Proxy ProxyResolver
}

// New returns the resolvers for goos. Platforms without an implementation
// get resolvers that report not_checked.
func New(goos string, deps Deps) Set {
	switch goos {
	case types.PlatformLinux:
		return Set{Route: linuxRoute{deps}, DNS: linuxDNS{deps}, Proxy: linuxProxy{deps}}
	case types.PlatformDarwin:
		return Set{Route: darwinRoute{deps}, DNS: darwinDNS{deps}, Proxy: darwinProxy{deps}}
	case types.PlatformWindows:
		return Set{Route: windowsRoute{deps}, DNS: windowsDNS{deps}, Proxy: windowsProxy{deps}}
	default:
		u := unsupported{goos: goos}
		return Set{Route: u, DNS: u, Proxy: u}
	}
}

// unsupported answers every fact with a not_checked status.
type unsupported struct {
	goos string
}

func (u unsupported) status() types.FactStatus {
	return types.NotCheckedStatus(
		types.ErrProbeUnavailable,
		fmt.Sprintf("not supported on %s", u.goos),
		"Collect this fact manually; hostaudit has no probe for this platform.",
		nil,
	)
}

func (u unsupported) DefaultRoute(context.Context) types.DefaultRoute {
	return types.DefaultRoute{FactStatus: u.status()}
}

func (u unsupported) DNS(context.Context) types.DNSConfig {
	return types.DNSConfig{FactStatus: u.status()}
}

func (u unsupported) Proxy(context.Context) types.ProxyConfig {
	return types.ProxyConfig{FactStatus: u.status()}
}
