package config

// Defaults returns the base configuration values applied when neither the
// config file nor an environment override sets them, per spec.md §6.
func Defaults() Base {
	return Base{
		Server: ServerConfig{
			Host:    "127.0.0.1",
			Port:    8080,
			APIHost: "127.0.0.1",
			APIPort: 8000,
		},
		Logging: Logging{
			Level:           "info",
			AccessLog:       true,
			ShowHeaders:     false,
			AccessLogFormat: "combined",
		},
		HTTP: HTTP{
			DefaultContentType: "text/html; charset=utf-8",
			ServerName:         "Tokio-Hyper/1.0",
			EnableCORS:         false,
			MaxBodySize:        10485760,
		},
		Performance: Performance{
			KeepAliveTimeout: 75,
			ReadTimeout:      30,
			WriteTimeout:     30,
		},
		Route: Route{
			FaviconPaths: nil,
			IndexFiles:   []string{"index.html"},
			CustomRoutes: map[string]Action{},
			Health: HealthConfig{
				Enabled:       false,
				LivenessPath:  "/healthz",
				ReadinessPath: "/readyz",
			},
		},
	}
}
