// Package xds implements the versioned, typed resource store at the heart
// of yarhs's dynamic configuration plane: per-kind version+nonce pairs and
// optimistic-concurrency compare-and-swap, modeled after the ACK/NACK
// vocabulary of the teacher's discovery stream (internal/grpc/xds.go) but
// served over plain HTTP/JSON rather than gRPC.
package xds

// Kind identifies one of the six resource kinds the discovery API exposes.
// There is exactly one live instance of each kind in a process.
type Kind int

const (
	Listener Kind = iota
	Route
	HTTP
	Logging
	Performance
	VirtualHost
)

var kindNames = [...]string{
	Listener:    "LISTENER",
	Route:       "ROUTE",
	HTTP:        "HTTP",
	Logging:     "LOGGING",
	Performance: "PERFORMANCE",
	VirtualHost: "VHOST",
}

// String returns the upper-case name used in metric labels and, lowercased,
// as the per-kind keys of the full discovery snapshot. The per-kind endpoint
// suffixes are the names ParseKind accepts, not these.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// ParseKind maps a discovery API path segment (e.g. "listeners", "vhosts")
// to its Kind. The second return value is false for an unrecognized name.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "listeners":
		return Listener, true
	case "routes":
		return Route, true
	case "http":
		return HTTP, true
	case "logging":
		return Logging, true
	case "performance":
		return Performance, true
	case "vhosts":
		return VirtualHost, true
	default:
		return 0, false
	}
}

// Kinds lists every resource kind in a stable, declared order.
func Kinds() []Kind {
	return []Kind{Listener, Route, HTTP, Logging, Performance, VirtualHost}
}
