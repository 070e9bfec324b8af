package xds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarhs-io/yarhs/internal/config"
)

func testBase() config.Base {
	return config.Base{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, APIHost: "127.0.0.1", APIPort: 8000},
		Route:  config.Route{IndexFiles: []string{"index.html"}},
	}
}

func TestNewStoreSeedsEveryKindFromBase(t *testing.T) {
	store := NewStore(testBase())

	listener := store.Listener().ReadSnapshot()
	assert.Equal(t, uint16(8080), listener.Main.Port)
	assert.Equal(t, uint16(8000), listener.API.Port)

	route := store.Route().ReadSnapshot()
	assert.Equal(t, []string{"index.html"}, route.IndexFiles)
}

func TestKindVersionDispatchesByValue(t *testing.T) {
	store := NewStore(testBase())

	for _, k := range Kinds() {
		v, n := store.KindVersion(k)
		assert.NotZero(t, v, k.String())
		assert.NotZero(t, n, k.String())
	}
}

func TestOverallVersionIsMaxAcrossKinds(t *testing.T) {
	store := NewStore(testBase())

	before := store.OverallVersion()
	v, _, ok := store.HTTP().CompareAndSwap(0, true, config.HTTP{ServerName: "x"})
	require.True(t, ok)

	after := store.OverallVersion()
	assert.GreaterOrEqual(t, after, v)
	assert.GreaterOrEqual(t, after, before)
}

func TestParseKindMapsEndpointSegments(t *testing.T) {
	cases := map[string]Kind{
		"listeners":   Listener,
		"routes":      Route,
		"http":        HTTP,
		"logging":     Logging,
		"performance": Performance,
		"vhosts":      VirtualHost,
	}
	for segment, want := range cases {
		got, ok := ParseKind(segment)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := ParseKind("nonsense")
	assert.False(t, ok)
}
