package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix stripped (and dot-path-mapped) from environment
// overrides, per spec.md §6: SERVER_SERVER_PORT -> server.port.
const EnvPrefix = "SERVER_"

// Load reads path as a TOML document, layers SERVER_-prefixed environment
// overrides on top, and fills in Defaults() for anything left unset. path is
// the caller-resolved file name (the CLI layer is responsible for appending
// an extension; this function reads exactly what it is given).
func Load(path string) (Base, error) {
	k := koanf.New(".")

	base := Defaults()
	if err := k.Load(structProvider(base), nil); err != nil {
		return Base{}, fmt.Errorf("config: loading defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return Base{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
			key = strings.ReplaceAll(key, "_", ".")
			return key, v
		},
	}), nil); err != nil {
		return Base{}, fmt.Errorf("config: reading environment: %w", err)
	}

	var out Base
	// Keys are matched to field names with underscores and case ignored, so
	// snake_case keys such as "index_files" reach fields of the section
	// types, which carry json/toml tags but no koanf tags.
	conf := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &out,
			WeaklyTypedInput: true,
			MatchName: func(key, field string) bool {
				return strings.EqualFold(strings.ReplaceAll(key, "_", ""), strings.ReplaceAll(field, "_", ""))
			},
		},
	}
	if err := k.UnmarshalWithConf("", &out, conf); err != nil {
		return Base{}, fmt.Errorf("config: unmarshaling merged config: %w", err)
	}
	return out, nil
}

// structProvider adapts a Base value (typically Defaults()) into a koanf
// Provider so defaults participate in the same merge pipeline as the file
// and environment layers.
func structProvider(b Base) koanf.Provider {
	return &staticProvider{data: structToMap(b)}
}

type staticProvider struct {
	data map[string]any
}

func (s *staticProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("config: ReadBytes not supported on static provider")
}

func (s *staticProvider) Read() (map[string]any, error) {
	return s.data, nil
}

func structToMap(b Base) map[string]any {
	return map[string]any{
		"server": map[string]any{
			"host":     b.Server.Host,
			"port":     b.Server.Port,
			"api_host": b.Server.APIHost,
			"api_port": b.Server.APIPort,
		},
		"logging": map[string]any{
			"level":             b.Logging.Level,
			"access_log":        b.Logging.AccessLog,
			"show_headers":      b.Logging.ShowHeaders,
			"access_log_format": b.Logging.AccessLogFormat,
		},
		"http": map[string]any{
			"default_content_type": b.HTTP.DefaultContentType,
			"server_name":          b.HTTP.ServerName,
			"enable_cors":          b.HTTP.EnableCORS,
			"max_body_size":        b.HTTP.MaxBodySize,
		},
		"performance": map[string]any{
			"keep_alive_timeout": b.Performance.KeepAliveTimeout,
			"read_timeout":       b.Performance.ReadTimeout,
			"write_timeout":      b.Performance.WriteTimeout,
		},
		"routes": map[string]any{
			"favicon_paths": b.Route.FaviconPaths,
			"index_files":   b.Route.IndexFiles,
			"custom_routes": customRoutesToMap(b.Route.CustomRoutes),
			"health": map[string]any{
				"enabled":        b.Route.Health.Enabled,
				"liveness_path":  b.Route.Health.LivenessPath,
				"readiness_path": b.Route.Health.ReadinessPath,
			},
		},
	}
}

func customRoutesToMap(routes map[string]Action) map[string]any {
	out := make(map[string]any, len(routes))
	for k, v := range routes {
		out[k] = map[string]any{
			"kind":         v.Kind,
			"path":         v.Path,
			"target":       v.Target,
			"code":         v.Code,
			"status":       v.Status,
			"body":         v.Body,
			"content_type": v.ContentType,
		}
	}
	return out
}
