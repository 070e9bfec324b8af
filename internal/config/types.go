// Package config defines the value types carried by each resource kind and
// the base-configuration loader that seeds them at startup. The shapes
// mirror the Rust original's config module (_examples/original_source/src/config.rs)
// field-for-field, adapted to Go naming and JSON/TOML tags so the same
// struct serves as both the discovery API wire type and the TOML config
// type.
package config

// Endpoint is a bindable (host, port) pair.
type Endpoint struct {
	Host string `json:"host" toml:"host"`
	Port uint16 `json:"port" toml:"port"`
}

// Listener is the Listener resource value: the live/staged main (data-plane)
// and api (management) endpoints.
type Listener struct {
	Main Endpoint `json:"main_server" toml:"main_server"`
	API  Endpoint `json:"api_server" toml:"api_server"`
}

// Action is the legacy custom-route action. Kind selects which of the
// remaining fields apply: Path for dir/file, Target and Code for redirect,
// Status, Body and ContentType for direct.
type ActionKind string

const (
	ActionDir      ActionKind = "dir"
	ActionFile     ActionKind = "file"
	ActionRedirect ActionKind = "redirect"
	ActionDirect   ActionKind = "direct"
)

type Action struct {
	Kind ActionKind `json:"kind" toml:"kind"`

	// Dir / File
	Path string `json:"path,omitempty" toml:"path,omitempty"`

	// Redirect
	Target string `json:"target,omitempty" toml:"target,omitempty"`
	Code   int    `json:"code,omitempty" toml:"code,omitempty"`

	// Direct
	Status      int    `json:"status,omitempty" toml:"status,omitempty"`
	Body        string `json:"body,omitempty" toml:"body,omitempty"`
	ContentType string `json:"content_type,omitempty" toml:"content_type,omitempty"`
}

// HealthConfig describes the liveness/readiness short-circuit paths.
type HealthConfig struct {
	Enabled        bool   `json:"enabled" toml:"enabled"`
	LivenessPath   string `json:"liveness_path" toml:"liveness_path"`
	ReadinessPath  string `json:"readiness_path" toml:"readiness_path"`
}

// Route is the legacy-form Route resource value.
type Route struct {
	FaviconPaths []string          `json:"favicon_paths" toml:"favicon_paths"`
	IndexFiles   []string          `json:"index_files" toml:"index_files"`
	CustomRoutes map[string]Action `json:"custom_routes" toml:"custom_routes"`
	Health       HealthConfig      `json:"health" toml:"health"`
}

// HeaderMatch is a single header matcher within a RouteMatch.
type HeaderMatch struct {
	Name    string `json:"name" toml:"name"`
	Exact   string `json:"exact,omitempty" toml:"exact,omitempty"`
	Prefix  string `json:"prefix,omitempty" toml:"prefix,omitempty"`
	Present bool   `json:"present,omitempty" toml:"present,omitempty"`
}

// RouteMatch selects which requests a VHostRoute applies to.
type RouteMatch struct {
	Prefix  string        `json:"prefix,omitempty" toml:"prefix,omitempty"`
	Path    string        `json:"path,omitempty" toml:"path,omitempty"`
	Headers []HeaderMatch `json:"headers,omitempty" toml:"headers,omitempty"`
}

// VHostRoute is one routing rule inside a VirtualHost, xDS form.
type VHostRoute struct {
	Name   string     `json:"name,omitempty" toml:"name,omitempty"`
	Match  RouteMatch `json:"match" toml:"match"`
	Action Action     `json:"action" toml:"action"`
}

// VirtualHost is one entry of the VirtualHost resource's ordered list.
type VirtualHost struct {
	Name       string       `json:"name" toml:"name"`
	Domains    []string     `json:"domains" toml:"domains"`
	Routes     []VHostRoute `json:"routes" toml:"routes"`
	IndexFiles []string     `json:"index_files,omitempty" toml:"index_files,omitempty"`
}

// HTTP is the HTTP resource value.
type HTTP struct {
	DefaultContentType string `json:"default_content_type" toml:"default_content_type"`
	ServerName         string `json:"server_name" toml:"server_name"`
	EnableCORS         bool   `json:"enable_cors" toml:"enable_cors"`
	MaxBodySize        uint64 `json:"max_body_size" toml:"max_body_size"`
}

// Logging is the Logging resource value.
type Logging struct {
	Level           string `json:"level" toml:"level"`
	AccessLog       bool   `json:"access_log" toml:"access_log"`
	ShowHeaders     bool   `json:"show_headers" toml:"show_headers"`
	AccessLogFormat string `json:"access_log_format" toml:"access_log_format"`
	AccessLogFile   string `json:"access_log_file,omitempty" toml:"access_log_file,omitempty"`
	ErrorLogFile    string `json:"error_log_file,omitempty" toml:"error_log_file,omitempty"`
}

// Performance is the Performance resource value.
type Performance struct {
	KeepAliveTimeout uint64  `json:"keep_alive_timeout" toml:"keep_alive_timeout"`
	ReadTimeout      uint64  `json:"read_timeout" toml:"read_timeout"`
	WriteTimeout     uint64  `json:"write_timeout" toml:"write_timeout"`
	MaxConnections   *uint64 `json:"max_connections,omitempty" toml:"max_connections,omitempty"`
}

// ConnectionDeadline is max(ReadTimeout, WriteTimeout) seconds, the single
// per-connection hard deadline described in the performance model.
func (p Performance) ConnectionDeadline() uint64 {
	if p.ReadTimeout > p.WriteTimeout {
		return p.ReadTimeout
	}
	return p.WriteTimeout
}

// Base is the fully-resolved base configuration: defaults, overridden by
// file, overridden by SERVER_-prefixed environment variables. After the
// overlay merge it seeds every resource kind at startup through
// xds.NewStore.
type Base struct {
	Server      ServerConfig `koanf:"server"`
	Logging     Logging      `koanf:"logging"`
	HTTP        HTTP         `koanf:"http"`
	Performance Performance  `koanf:"performance"`
	Route       Route        `koanf:"routes"`
	VirtualHost []VirtualHost `koanf:"virtual_hosts"`
}

// ServerConfig is the koanf-mapped form of the Listener resource's base
// values, named to match the TOML [server] section in spec.md §6.
type ServerConfig struct {
	Host    string `koanf:"host"`
	Port    uint16 `koanf:"port"`
	APIHost string `koanf:"api_host"`
	APIPort uint16 `koanf:"api_port"`
}

// ToListener projects the server section into a Listener resource value.
func (s ServerConfig) ToListener() Listener {
	return Listener{
		Main: Endpoint{Host: s.Host, Port: s.Port},
		API:  Endpoint{Host: s.APIHost, Port: s.APIPort},
	}
}
