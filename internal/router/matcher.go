// Package router implements virtual-host resolution and route matching
// over the VirtualHost and legacy Route resources, grounded on spec.md
// §4.9 and the domain-matching vocabulary of xDS VirtualHosts that the
// teacher's own DAG builds for Envoy (internal/dag), adapted here to
// resolve directly against in-process handlers instead of an Envoy
// configuration.
package router

import (
	"net/http"
	"strings"

	"github.com/yarhs-io/yarhs/internal/config"
)

// ResolveVirtualHost picks the best-matching VirtualHost for host (already
// expected to have any :port suffix stripped by the caller), applying the
// precedence exact > wildcard(*.suffix) > catch-all(*), independent of the
// vhosts slice's declared order.
func ResolveVirtualHost(vhosts []config.VirtualHost, host string) (*config.VirtualHost, bool) {
	var wildcard *config.VirtualHost
	var catchAll *config.VirtualHost

	for i := range vhosts {
		vh := &vhosts[i]
		for _, domain := range vh.Domains {
			switch {
			case domain == host:
				return vh, true
			case domain == "*":
				if catchAll == nil {
					catchAll = vh
				}
			case strings.HasPrefix(domain, "*."):
				suffix := domain[1:] // ".example.com"
				if host == domain[2:] || strings.HasSuffix(host, suffix) {
					if wildcard == nil {
						wildcard = vh
					}
				}
			}
		}
	}

	if wildcard != nil {
		return wildcard, true
	}
	if catchAll != nil {
		return catchAll, true
	}
	return nil, false
}

// StripPort removes any ":port" suffix from a Host header value.
func StripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}

// MatchRoute returns the first route (in declared order) whose match
// criteria are satisfied by path and headers. path takes precedence over
// prefix when a single match sets both (it never should, but declared order
// plus this rule resolves it deterministically).
func MatchRoute(routes []config.VHostRoute, path string, headers http.Header) (*config.VHostRoute, bool) {
	for i := range routes {
		r := &routes[i]
		if !matchesPath(r.Match, path) {
			continue
		}
		if !matchesHeaders(r.Match.Headers, headers) {
			continue
		}
		return r, true
	}
	return nil, false
}

func matchesPath(m config.RouteMatch, path string) bool {
	switch {
	case m.Path != "":
		return path == m.Path
	case m.Prefix != "":
		return strings.HasPrefix(path, m.Prefix)
	default:
		return false
	}
}

func matchesHeaders(matchers []config.HeaderMatch, headers http.Header) bool {
	for _, hm := range matchers {
		got := headers.Get(hm.Name) // http.Header.Get is already case-insensitive
		switch {
		case hm.Present:
			if got == "" {
				return false
			}
		case hm.Exact != "":
			if got != hm.Exact {
				return false
			}
		case hm.Prefix != "":
			if !strings.HasPrefix(got, hm.Prefix) {
				return false
			}
		}
	}
	return true
}

// MatchCustomRoute finds an entry in the legacy custom_routes map for path:
// an exact key match wins deterministically, else the first key for which
// strings.HasPrefix(path, key) holds, in Go's unspecified map iteration
// order. This preserves, rather than resolves, the latent inconsistency
// spec.md §9 calls out: if two prefixes could both match, which one wins is
// unspecified in the legacy form by design. Callers needing deterministic
// precedence among conflicting prefixes should use the VirtualHost form,
// whose ordered route list has declared priority.
func MatchCustomRoute(routes map[string]config.Action, path string) (config.Action, string, bool) {
	if action, ok := routes[path]; ok {
		return action, path, true
	}
	for prefix, action := range routes {
		if strings.HasPrefix(path, prefix) {
			return action, prefix, true
		}
	}
	return config.Action{}, "", false
}
