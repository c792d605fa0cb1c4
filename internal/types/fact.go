package types

// Ptr returns a pointer to v. Used to populate optional fact fields.
func Ptr[T any](v T) *T {
	return &v
}

// FactStatus is the envelope shared by every normalized fact. It is embedded
// in each fact struct so its fields serialize next to the fact-specific ones.
//
// Invariants maintained by the resolvers:
//   - NotChecked implies every fact-specific field is empty and Error is set.
//   - Any fact-specific value being set implies NotChecked is false.
type FactStatus struct {
	// Source names the command or file that satisfied the query, nil when none did.
	Source *string `json:"source" yaml:"source"`

	// NotChecked is true when no source could be queried successfully.
	NotChecked bool `json:"not_checked" yaml:"not_checked"`

	// Error is the aggregated failure message, present iff NotChecked.
	Error *string `json:"error" yaml:"error"`

	// ErrorKind classifies the last failure when NotChecked.
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Remediation is human guidance, present iff NotChecked.
	Remediation *string `json:"remediation" yaml:"remediation"`

	// Evidence holds one record per attempted source, failed attempts included.
	Evidence []Evidence `json:"evidence" yaml:"evidence"`
}

// CheckedStatus returns the envelope for a fact satisfied by source.
func CheckedStatus(source string, evidence []Evidence) FactStatus {
	if evidence == nil {
		evidence = []Evidence{}
	}
	return FactStatus{
		Source:   Ptr(source),
		Evidence: evidence,
	}
}

// NotCheckedStatus returns the envelope for a fact that no source could satisfy.
func NotCheckedStatus(kind ErrorKind, message, remediation string, evidence []Evidence) FactStatus {
	if evidence == nil {
		evidence = []Evidence{}
	}
	if message == "" {
		message = "no source produced a usable value"
	}
	return FactStatus{
		NotChecked:  true,
		Error:       Ptr(message),
		ErrorKind:   kind,
		Remediation: Ptr(remediation),
		Evidence:    evidence,
	}
}

// DefaultRoute is the default gateway and the interface it is reached through.
type DefaultRoute struct {
	// Destination is set by sources that report it explicitly (route -n get default).
	Destination *string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Gateway     *string `json:"gateway" yaml:"gateway"`
	Interface   *string `json:"interface" yaml:"interface"`
	// Flags is the route flag string where the source prints one.
	Flags *string `json:"flags,omitempty" yaml:"flags,omitempty"`

	FactStatus `yaml:",inline"`
}

// HasValue reports whether any route field was extracted.
func (r DefaultRoute) HasValue() bool {
	return r.Gateway != nil || r.Interface != nil
}

// DNSConfig is the resolver configuration: nameservers and search domains,
// both deduplicated in first-seen order.
type DNSConfig struct {
	Nameservers   []string `json:"nameservers" yaml:"nameservers"`
	SearchDomains []string `json:"search_domains" yaml:"search_domains"`

	FactStatus `yaml:",inline"`
}

// HasValue reports whether any nameserver or search domain was extracted.
func (d DNSConfig) HasValue() bool {
	return len(d.Nameservers) > 0 || len(d.SearchDomains) > 0
}

// ProxyEndpoint is one proxy protocol entry as reported by a system proxy store.
type ProxyEndpoint struct {
	Enabled *bool   `json:"enabled" yaml:"enabled"`
	Host    *string `json:"host" yaml:"host"`
	Port    *int    `json:"port" yaml:"port"`
}

// PACConfig is the proxy auto-config setting.
type PACConfig struct {
	Enabled *bool   `json:"enabled" yaml:"enabled"`
	URL     *string `json:"url" yaml:"url"`
}

// ProxyConfig is the effective proxy configuration. The flat http/https/no_proxy
// fields are filled on every platform; the structured endpoint fields are only
// present where the platform keeps a structured proxy store.
type ProxyConfig struct {
	HTTPProxy  *string `json:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy *string `json:"https_proxy" yaml:"https_proxy"`
	NoProxy    *string `json:"no_proxy" yaml:"no_proxy"`

	// Sources lists every source that contributed a value, in order.
	Sources []string `json:"sources" yaml:"sources"`

	HTTP       *ProxyEndpoint `json:"http,omitempty" yaml:"http,omitempty"`
	HTTPS      *ProxyEndpoint `json:"https,omitempty" yaml:"https,omitempty"`
	SOCKS      *ProxyEndpoint `json:"socks,omitempty" yaml:"socks,omitempty"`
	PAC        *PACConfig     `json:"pac,omitempty" yaml:"pac,omitempty"`
	Exceptions []string       `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`

	FactStatus `yaml:",inline"`
}

// HasValue reports whether any proxy setting was extracted. An explicitly
// disabled endpoint counts as a value: the store answered the question.
func (p ProxyConfig) HasValue() bool {
	return p.HTTPProxy != nil || p.HTTPSProxy != nil || p.NoProxy != nil ||
		p.HTTP != nil || p.HTTPS != nil || p.SOCKS != nil || p.PAC != nil ||
		len(p.Exceptions) > 0
}
