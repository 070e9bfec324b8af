// Package discovery implements the xDS-style HTTP/JSON control-plane API
// described in spec.md §4.8, grounded on the ACK/NACK wire vocabulary of
// _examples/original_source/src/api/handlers.rs and the version/nonce
// exchange the teacher's own gRPC xDS stream (internal/grpc/xds.go) uses,
// adapted from a gRPC DiscoveryRequest/Response loop to plain REST.
package discovery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yarhs-io/yarhs/internal/config"
	"github.com/yarhs-io/yarhs/internal/metrics"
	"github.com/yarhs-io/yarhs/internal/overlay"
	"github.com/yarhs-io/yarhs/internal/server"
	"github.com/yarhs-io/yarhs/internal/xds"
)

// API serves the management-listener discovery endpoints.
type API struct {
	Store   *xds.Store
	Overlay *overlay.Manager
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics

	MainStaged *server.StagedEndpoint
	APIStaged  *server.StagedEndpoint
	MainReload chan<- struct{}
	APIReload  chan<- struct{}

	Dashboard http.HandlerFunc
}

type ackResponse struct {
	Status      string `json:"status"`
	VersionInfo string `json:"version_info"`
	Nonce       string `json:"nonce"`
	Message     string `json:"message,omitempty"`
}

type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type nackResponse struct {
	Status      string      `json:"status"`
	ErrorDetail errorDetail `json:"error_detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeNACK(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, nackResponse{
		Status: "NACK",
		ErrorDetail: errorDetail{
			Code:    status,
			Message: message,
		},
	})
}

func (a *API) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch {
	case req.URL.Path == "/" || req.URL.Path == "/dashboard":
		if a.Dashboard != nil {
			a.Dashboard(w, req)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "yarhs management API"})

	case req.URL.Path == "/v1/discovery" && req.Method == http.MethodGet:
		a.handleSnapshot(w, req)

	case strings.HasPrefix(req.URL.Path, "/v1/discovery:") && req.Method == http.MethodGet:
		a.handleKindGet(w, req, strings.TrimPrefix(req.URL.Path, "/v1/discovery:"))

	case strings.HasPrefix(req.URL.Path, "/v1/discovery:") && req.Method == http.MethodPost:
		a.handleKindPost(w, req, strings.TrimPrefix(req.URL.Path, "/v1/discovery:"))

	case req.URL.Path == "/v1/state" && req.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, a.Overlay.Document())

	case req.URL.Path == "/v1/state" && req.Method == http.MethodDelete:
		if err := a.Overlay.Clear(); err != nil {
			a.Log.WithError(err).Error("clearing overlay state")
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "unknown endpoint",
			"available": []string{
				"GET /", "GET /dashboard", "GET /v1/discovery",
				"GET /v1/discovery:<kinds>", "POST /v1/discovery:<kinds>",
				"GET /v1/state", "DELETE /v1/state",
			},
		})
	}
}

type kindSnapshot struct {
	VersionInfo string `json:"version_info"`
	Nonce       string `json:"nonce"`
	Value       any    `json:"value"`
}

func (a *API) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := map[string]kindSnapshot{}
	for _, k := range xds.Kinds() {
		v, n := a.Store.KindVersion(k)
		snap[strings.ToLower(k.String())] = kindSnapshot{
			VersionInfo: strconv.FormatUint(v, 10),
			Nonce:       strconv.FormatUint(n, 10),
			Value:       a.valueOf(k),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version": strconv.FormatUint(a.Store.OverallVersion(), 10),
		"kinds":   snap,
	})
}

func (a *API) valueOf(k xds.Kind) any {
	switch k {
	case xds.Listener:
		return a.Store.Listener().ReadSnapshot()
	case xds.Route:
		return a.Store.Route().ReadSnapshot()
	case xds.HTTP:
		return a.Store.HTTP().ReadSnapshot()
	case xds.Logging:
		return a.Store.Logging().ReadSnapshot()
	case xds.Performance:
		return a.Store.Performance().ReadSnapshot()
	case xds.VirtualHost:
		return a.Store.VirtualHosts().ReadSnapshot()
	default:
		return nil
	}
}

func (a *API) handleKindGet(w http.ResponseWriter, _ *http.Request, kindsParam string) {
	names := strings.Split(kindsParam, ",")
	out := map[string]any{}
	for _, name := range names {
		k, ok := xds.ParseKind(strings.TrimSpace(name))
		if !ok {
			writeNACK(w, http.StatusBadRequest, fmt.Sprintf("unknown resource kind %q", name))
			return
		}
		v, n := a.Store.KindVersion(k)
		out[name] = kindSnapshot{
			VersionInfo: strconv.FormatUint(v, 10),
			Nonce:       strconv.FormatUint(n, 10),
			Value:       a.valueOf(k),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type updateRequest struct {
	VersionInfo  string            `json:"version_info"`
	Resources    []json.RawMessage `json:"resources"`
	ForceRestart bool              `json:"force_restart"`
}

func (a *API) handleKindPost(w http.ResponseWriter, req *http.Request, kindsParam string) {
	k, ok := xds.ParseKind(strings.TrimSpace(kindsParam))
	if !ok {
		writeNACK(w, http.StatusBadRequest, fmt.Sprintf("unknown resource kind %q", kindsParam))
		return
	}

	var update updateRequest
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		writeNACK(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(update.Resources) == 0 {
		writeNACK(w, http.StatusBadRequest, "resources must not be empty")
		return
	}

	skipCheck := update.VersionInfo == ""
	var expected uint64
	if !skipCheck {
		v, err := strconv.ParseUint(update.VersionInfo, 10, 64)
		if err != nil {
			writeNACK(w, http.StatusBadRequest, fmt.Sprintf("invalid version_info: %v", err))
			return
		}
		expected = v
	}

	var (
		newVersion, newNonce uint64
		applied              bool
		message              string
		applyErr             error
	)
	if k == xds.Listener {
		newVersion, newNonce, applied, message, applyErr = a.applyListener(update.Resources[0], expected, skipCheck, update.ForceRestart)
	} else {
		newVersion, newNonce, applied, applyErr = a.applyResource(k, update.Resources[0], expected, skipCheck)
		message = "updated"
	}

	if applyErr != nil {
		writeNACK(w, http.StatusBadRequest, applyErr.Error())
		return
	}
	if !applied {
		current, _ := a.Store.KindVersion(k)
		if a.Metrics != nil {
			a.Metrics.DiscoveryNACKs.WithLabelValues(k.String()).Inc()
		}
		writeNACK(w, http.StatusConflict, fmt.Sprintf("Version conflict: expected %d, got %s", current, update.VersionInfo))
		return
	}

	if a.Metrics != nil {
		a.Metrics.DiscoveryWrites.WithLabelValues(k.String()).Inc()
	}
	writeJSON(w, http.StatusOK, ackResponse{
		Status:      "ACK",
		VersionInfo: strconv.FormatUint(newVersion, 10),
		Nonce:       strconv.FormatUint(newNonce, 10),
		Message:     message,
	})
}

// applyResource parses raw into the kind's value type, attempts the CAS (or
// force write if skipCheck), and on success persists the overlay section
// per spec.md §4.2 — in-memory first, then the durable write. A persistence
// error is logged, not surfaced: the resource store remains the runtime
// source of truth even if the overlay save failed.
func (a *API) applyResource(k xds.Kind, raw json.RawMessage, expected uint64, skipCheck bool) (version, nonce uint64, ok bool, err error) {
	switch k {
	case xds.Route:
		var v config.Route
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, 0, false, err
		}
		version, nonce, ok = a.Store.Route().CompareAndSwap(expected, skipCheck, v)
		if ok {
			a.saveOverlay(func() error { return a.Overlay.UpdateRoute(v) }, "route")
		}
		return version, nonce, ok, nil

	case xds.HTTP:
		var v config.HTTP
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, 0, false, err
		}
		version, nonce, ok = a.Store.HTTP().CompareAndSwap(expected, skipCheck, v)
		if ok {
			a.saveOverlay(func() error { return a.Overlay.UpdateHTTP(v) }, "http")
		}
		return version, nonce, ok, nil

	case xds.Logging:
		var v config.Logging
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, 0, false, err
		}
		version, nonce, ok = a.Store.Logging().CompareAndSwap(expected, skipCheck, v)
		if ok {
			a.saveOverlay(func() error { return a.Overlay.UpdateLogging(v) }, "logging")
		}
		return version, nonce, ok, nil

	case xds.Performance:
		var v config.Performance
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, 0, false, err
		}
		version, nonce, ok = a.Store.Performance().CompareAndSwap(expected, skipCheck, v)
		if ok {
			a.saveOverlay(func() error { return a.Overlay.UpdatePerformance(v) }, "performance")
		}
		return version, nonce, ok, nil

	case xds.VirtualHost:
		var v []config.VirtualHost
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, 0, false, err
		}
		version, nonce, ok = a.Store.VirtualHosts().CompareAndSwap(expected, skipCheck, v)
		if ok {
			a.saveOverlay(func() error { return a.Overlay.UpdateVirtualHosts(v) }, "virtual_hosts")
		}
		return version, nonce, ok, nil

	default:
		return 0, 0, false, fmt.Errorf("unhandled kind %s", k)
	}
}

// applyListener is split out from applyResource because a successful
// Listener write has side effects no other kind has: staging the changed
// endpoint(s) and notifying the corresponding reload channel(s), per
// spec.md §4.8.
func (a *API) applyListener(raw json.RawMessage, expected uint64, skipCheck, forceRestart bool) (version, nonce uint64, ok bool, message string, err error) {
	// Both fields are optional: an update naming only main_server leaves
	// api_server (and vice versa) at its current value, matching the Rust
	// original's Option<ServerEndpointUpdate> update shape.
	var partial struct {
		Main *config.Endpoint `json:"main_server"`
		API  *config.Endpoint `json:"api_server"`
	}
	if err := json.Unmarshal(raw, &partial); err != nil {
		return 0, 0, false, "", err
	}

	current := a.Store.Listener().ReadSnapshot()
	v := current
	if partial.Main != nil {
		v.Main = *partial.Main
	}
	if partial.API != nil {
		v.API = *partial.API
	}

	version, nonce, ok = a.Store.Listener().CompareAndSwap(expected, skipCheck, v)
	if !ok {
		return version, nonce, false, "", nil
	}

	a.saveOverlay(func() error {
		return a.Overlay.UpdateServer(config.ServerConfig{
			Host: v.Main.Host, Port: v.Main.Port,
			APIHost: v.API.Host, APIPort: v.API.Port,
		})
	}, "listener")

	mainChanged := current.Main != v.Main
	apiChanged := current.API != v.API

	var changes []string
	if mainChanged || forceRestart {
		a.MainStaged.Set(v.Main)
		a.notify(a.MainReload)
		if mainChanged {
			changes = append(changes, "main_server")
		}
	}
	if apiChanged || forceRestart {
		a.APIStaged.Set(v.API)
		a.notify(a.APIReload)
		if apiChanged {
			changes = append(changes, "api_server")
		}
	}
	if forceRestart && len(changes) == 0 {
		changes = append(changes, "forced")
	}

	if len(changes) == 0 {
		return version, nonce, true, "Listener config unchanged", nil
	}
	return version, nonce, true, "Listener updated, restarting: " + strings.Join(changes, ", "), nil
}

func (a *API) notify(reload chan<- struct{}) {
	select {
	case reload <- struct{}{}:
	default:
	}
}

func (a *API) saveOverlay(save func() error, kind string) {
	if err := save(); err != nil {
		a.Log.WithError(err).WithField("kind", kind).Warn("persisting overlay state")
	}
}
