package router

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yarhs-io/yarhs/internal/config"
)

func vhosts() []config.VirtualHost {
	return []config.VirtualHost{
		{Name: "catchall", Domains: []string{"*"}},
		{Name: "wildcard", Domains: []string{"*.example.com"}},
		{Name: "exact", Domains: []string{"api.example.com"}},
	}
}

func TestResolveVirtualHostExactBeatsWildcardAndCatchAll(t *testing.T) {
	vh, ok := ResolveVirtualHost(vhosts(), "api.example.com")
	assert.True(t, ok)
	assert.Equal(t, "exact", vh.Name)
}

func TestResolveVirtualHostWildcardBeatsCatchAll(t *testing.T) {
	vh, ok := ResolveVirtualHost(vhosts(), "www.example.com")
	assert.True(t, ok)
	assert.Equal(t, "wildcard", vh.Name)
}

func TestResolveVirtualHostCatchAllFallback(t *testing.T) {
	vh, ok := ResolveVirtualHost(vhosts(), "other.com")
	assert.True(t, ok)
	assert.Equal(t, "catchall", vh.Name)
}

func TestResolveVirtualHostIndependentOfOrder(t *testing.T) {
	reordered := []config.VirtualHost{vhosts()[2], vhosts()[0], vhosts()[1]}
	vh, ok := ResolveVirtualHost(reordered, "api.example.com")
	assert.True(t, ok)
	assert.Equal(t, "exact", vh.Name)
}

func TestStripPort(t *testing.T) {
	assert.Equal(t, "example.com", StripPort("example.com:8080"))
	assert.Equal(t, "example.com", StripPort("example.com"))
}

func TestMatchRouteFirstDeclaredMatchWins(t *testing.T) {
	routes := []config.VHostRoute{
		{Name: "prefix-rule", Match: config.RouteMatch{Prefix: "/api"}},
		{Name: "path-rule", Match: config.RouteMatch{Path: "/api/v1"}},
	}
	r, ok := MatchRoute(routes, "/api/v1", http.Header{})
	assert.True(t, ok)
	assert.Equal(t, "prefix-rule", r.Name)
}

func TestMatchRouteSingleMatchPathBeatsPrefix(t *testing.T) {
	routes := []config.VHostRoute{
		{Name: "both-set", Match: config.RouteMatch{Prefix: "/ap", Path: "/api/v1"}},
	}
	// path is checked first in matchesPath, so an exact-path miss falls
	// through even though prefix would have matched.
	_, ok := MatchRoute(routes, "/api/v2", http.Header{})
	assert.False(t, ok)

	r, ok := MatchRoute(routes, "/api/v1", http.Header{})
	assert.True(t, ok)
	assert.Equal(t, "both-set", r.Name)
}

func TestMatchRouteHeaderExact(t *testing.T) {
	routes := []config.VHostRoute{
		{Name: "h", Match: config.RouteMatch{
			Prefix:  "/",
			Headers: []config.HeaderMatch{{Name: "X-Env", Exact: "prod"}},
		}},
	}
	h := http.Header{}
	h.Set("X-Env", "prod")
	_, ok := MatchRoute(routes, "/", h)
	assert.True(t, ok)

	h.Set("X-Env", "staging")
	_, ok = MatchRoute(routes, "/", h)
	assert.False(t, ok)
}

func TestMatchRouteHeaderPresent(t *testing.T) {
	routes := []config.VHostRoute{
		{Name: "h", Match: config.RouteMatch{
			Prefix:  "/",
			Headers: []config.HeaderMatch{{Name: "X-Trace", Present: true}},
		}},
	}
	_, ok := MatchRoute(routes, "/", http.Header{})
	assert.False(t, ok)

	h := http.Header{}
	h.Set("X-Trace", "anything")
	_, ok = MatchRoute(routes, "/", h)
	assert.True(t, ok)
}

func TestMatchCustomRouteExact(t *testing.T) {
	routes := map[string]config.Action{
		"/api": {Kind: config.ActionDir, Path: "api-dir"},
	}
	action, key, ok := MatchCustomRoute(routes, "/api")
	assert.True(t, ok)
	assert.Equal(t, "/api", key)
	assert.Equal(t, "api-dir", action.Path)
}

func TestMatchCustomRoutePrefixHasPrefixSemantics(t *testing.T) {
	routes := map[string]config.Action{
		"/api": {Kind: config.ActionDir, Path: "api-dir"},
	}
	_, _, ok := MatchCustomRoute(routes, "/api/")
	assert.True(t, ok, `"/api/" matches prefix "/api" under byte-level HasPrefix, per spec.md §9`)
}
