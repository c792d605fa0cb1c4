package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// EnvAssignment is one KEY=value line of an environment file.
type EnvAssignment struct {
	Key   string
	Value string
}

// EnvironmentFile parses /etc/environment style text: KEY=value lines with
// optional single or double quotes around the value and an optional
// leading "export". Comments, blank values and malformed lines are skipped.
// Assignments are returned in file order.
func EnvironmentFile(text string) []EnvAssignment {
	var out []EnvAssignment
	for _, line := range lines(text) {
		if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" || value == "" {
			continue
		}
		out = append(out, EnvAssignment{Key: key, Value: value})
	}
	return out
}

// FirstAssignment returns the value of the first assignment whose key is
// one of keys.
func FirstAssignment(assignments []EnvAssignment, keys ...string) (string, bool) {
	for _, a := range assignments {
		for _, k := range keys {
			if a.Key == k {
				return a.Value, true
			}
		}
	}
	return "", false
}

// ScutilProxy parses `scutil --proxy` on macOS:
//
//	<dictionary> {
//	  ExceptionsList : <array> {
//	    0 : *.local
//	    1 : 169.254/16
//	  }
//	  HTTPEnable : 1
//	  HTTPPort : 8080
//	  HTTPProxy : proxy.corp
//	  ProxyAutoConfigEnable : 0
//	}
//
// A missing *Enable key inside a well-formed dictionary means disabled.
// Enabled endpoints are also flattened into the http_proxy / https_proxy
// strings and the exception list into no_proxy.
func ScutilProxy(text string) types.ProxyConfig {
	var p types.ProxyConfig
	kv := make(map[string]string)
	inExceptions := false
	dictionary := false

	for _, line := range lines(text) {
		if strings.HasPrefix(line, "<dictionary>") {
			dictionary = true
			continue
		}
		if inExceptions {
			if strings.HasPrefix(line, "}") {
				inExceptions = false
				continue
			}
			if _, value, ok := cutLabel(line, ":"); ok {
				p.Exceptions = appendUnique(p.Exceptions, value)
			}
			continue
		}

		key, value, ok := cutLabel(line, ":")
		if !ok {
			continue
		}
		if key == "ExceptionsList" {
			inExceptions = strings.HasPrefix(value, "<array>")
			if !inExceptions {
				p.Exceptions = appendUnique(p.Exceptions, value)
			}
			continue
		}
		kv[key] = value
	}

	if !dictionary && len(kv) == 0 {
		return p
	}

	p.HTTP = scutilEndpoint(kv, "HTTP")
	p.HTTPS = scutilEndpoint(kv, "HTTPS")
	p.SOCKS = scutilEndpoint(kv, "SOCKS")
	p.PAC = &types.PACConfig{Enabled: flag01(kv["ProxyAutoConfigEnable"])}
	if url := kv["ProxyAutoConfigURLString"]; url != "" {
		p.PAC.URL = types.Ptr(url)
	}

	p.HTTPProxy = endpointURL(p.HTTP)
	p.HTTPSProxy = endpointURL(p.HTTPS)
	if len(p.Exceptions) > 0 {
		p.NoProxy = types.Ptr(strings.Join(p.Exceptions, ","))
	}
	return p
}

func scutilEndpoint(kv map[string]string, prefix string) *types.ProxyEndpoint {
	e := &types.ProxyEndpoint{Enabled: flag01(kv[prefix+"Enable"])}
	if host := kv[prefix+"Proxy"]; host != "" {
		e.Host = types.Ptr(host)
	}
	if port, err := strconv.Atoi(kv[prefix+"Port"]); err == nil {
		e.Port = types.Ptr(port)
	}
	return e
}

// flag01 maps scutil's "1"/"0" flags; anything else, absence included, is false.
func flag01(v string) *bool {
	return types.Ptr(v == "1")
}

// endpointURL flattens an enabled endpoint into proxy URL form.
func endpointURL(e *types.ProxyEndpoint) *string {
	if e == nil || e.Enabled == nil || !*e.Enabled || e.Host == nil {
		return nil
	}
	if e.Port == nil {
		return types.Ptr("http://" + *e.Host)
	}
	return types.Ptr(fmt.Sprintf("http://%s:%d", *e.Host, *e.Port))
}

// Phrase printed by `netsh winhttp show proxy` when no proxy is configured.
const winhttpDirect = "direct access (no proxy server)"

// WinHTTPProxy parses `netsh winhttp show proxy` on Windows:
//
//	Current WinHTTP proxy settings:
//
//	    Proxy Server(s) :  http=proxy:80;https=proxy:443
//	    Bypass List     :  *.corp;<local>
//
// Direct access is reported as explicitly disabled http and https endpoints.
func WinHTTPProxy(text string) types.ProxyConfig {
	var p types.ProxyConfig
	if strings.Contains(strings.ToLower(text), winhttpDirect) {
		p.HTTP = &types.ProxyEndpoint{Enabled: types.Ptr(false)}
		p.HTTPS = &types.ProxyEndpoint{Enabled: types.Ptr(false)}
		return p
	}

	for _, line := range lines(text) {
		label, value, ok := cutLabel(line, " : ")
		if !ok || value == "" {
			continue
		}
		switch label {
		case "Proxy Server(s)":
			for scheme, server := range winhttpServers(value) {
				host, port := splitHostPort(server)
				e := &types.ProxyEndpoint{Enabled: types.Ptr(true), Host: types.Ptr(host), Port: port}
				switch scheme {
				case "http":
					p.HTTP = e
					p.HTTPProxy = proxyURL(server)
				case "https":
					p.HTTPS = e
					p.HTTPSProxy = proxyURL(server)
				case "socks":
					p.SOCKS = e
				}
			}
		case "Bypass List":
			for _, item := range strings.Split(value, ";") {
				p.Exceptions = appendUnique(p.Exceptions, strings.TrimSpace(item))
			}
			if len(p.Exceptions) > 0 {
				p.NoProxy = types.Ptr(strings.Join(p.Exceptions, ","))
			}
		}
	}
	return p
}

// winhttpServers expands a proxy server list. A bare "host:port" applies to
// both http and https; "scheme=host:port" entries are separated by ";".
func winhttpServers(value string) map[string]string {
	out := make(map[string]string)
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		scheme, server, ok := strings.Cut(entry, "=")
		if !ok {
			out["http"] = entry
			out["https"] = entry
			continue
		}
		out[strings.ToLower(strings.TrimSpace(scheme))] = strings.TrimSpace(server)
	}
	return out
}

func proxyURL(server string) *string {
	if strings.Contains(server, "://") {
		return types.Ptr(server)
	}
	return types.Ptr("http://" + server)
}
