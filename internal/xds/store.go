package xds

import "github.com/yarhs-io/yarhs/internal/config"

// Store holds the single live instance of each resource kind, each behind
// its own VersionedResource so that writes to one kind never serialize
// against reads or writes of another (per spec.md §5: "across kinds there
// is no total order").
type Store struct {
	listener    *VersionedResource[config.Listener]
	route       *VersionedResource[config.Route]
	http        *VersionedResource[config.HTTP]
	logging     *VersionedResource[config.Logging]
	performance *VersionedResource[config.Performance]
	vhost       *VersionedResource[[]config.VirtualHost]
}

// NewStore seeds every kind from the resolved base configuration.
func NewStore(base config.Base) *Store {
	return &Store{
		listener:    NewVersionedResource(base.Server.ToListener()),
		route:       NewVersionedResource(base.Route),
		http:        NewVersionedResource(base.HTTP),
		logging:     NewVersionedResource(base.Logging),
		performance: NewVersionedResource(base.Performance),
		vhost:       NewVersionedResource(append([]config.VirtualHost(nil), base.VirtualHost...)),
	}
}

func (s *Store) Listener() *VersionedResource[config.Listener]       { return s.listener }
func (s *Store) Route() *VersionedResource[config.Route]             { return s.route }
func (s *Store) HTTP() *VersionedResource[config.HTTP]               { return s.http }
func (s *Store) Logging() *VersionedResource[config.Logging]         { return s.logging }
func (s *Store) Performance() *VersionedResource[config.Performance] { return s.performance }
func (s *Store) VirtualHosts() *VersionedResource[[]config.VirtualHost] {
	return s.vhost
}

// KindVersion returns (version, nonce) for an arbitrary kind, used by the
// discovery API's GET endpoints which address kinds by value, not by type.
func (s *Store) KindVersion(k Kind) (version, nonce uint64) {
	switch k {
	case Listener:
		return s.listener.Get()
	case Route:
		return s.route.Get()
	case HTTP:
		return s.http.Get()
	case Logging:
		return s.logging.Get()
	case Performance:
		return s.performance.Get()
	case VirtualHost:
		return s.vhost.Get()
	default:
		return 0, 0
	}
}

// OverallVersion is the maximum version across all kinds, reported as the
// top-level "version" field of a full GET /v1/discovery snapshot.
func (s *Store) OverallVersion() uint64 {
	var max uint64
	for _, k := range Kinds() {
		if v, _ := s.KindVersion(k); v > max {
			max = v
		}
	}
	return max
}
