package router

import (
	"net/http"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/yarhs-io/yarhs/internal/config"
	"github.com/yarhs-io/yarhs/internal/httpcache"
	"github.com/yarhs-io/yarhs/internal/metrics"
	"github.com/yarhs-io/yarhs/internal/static"
	"github.com/yarhs-io/yarhs/internal/xds"
)

// Router dispatches data-plane requests per spec.md §4.9. It never holds a
// write lock: every request takes one atomic snapshot of the resources it
// needs.
type Router struct {
	Store   *xds.Store
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics

	// NotFound renders the default homepage (external asset, out of scope).
	NotFound http.HandlerFunc
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !r.methodFilter(w, req) {
		return
	}

	httpCfg := r.Store.HTTP().ReadSnapshot()
	if !r.bodySizeFilter(w, req, httpCfg) {
		return
	}

	route := r.Store.Route().ReadSnapshot()
	vhosts := r.Store.VirtualHosts().ReadSnapshot()

	if route.Health.Enabled && (req.URL.Path == route.Health.LivenessPath || req.URL.Path == route.Health.ReadinessPath) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		return
	}

	if len(vhosts) > 0 {
		host := StripPort(req.Host)
		if vh, ok := ResolveVirtualHost(vhosts, host); ok {
			if rt, ok := MatchRoute(vh.Routes, req.URL.Path, req.Header); ok {
				r.dispatch(w, req, rt.Action, vh.IndexFiles)
				return
			}
		}
	}

	if action, prefix, ok := MatchCustomRoute(route.CustomRoutes, req.URL.Path); ok {
		r.dispatchLegacy(w, req, action, prefix, route.IndexFiles)
		return
	}

	if r.NotFound != nil {
		r.NotFound(w, req)
		return
	}
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

func (r *Router) methodFilter(w http.ResponseWriter, req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodOptions:
		httpCfg := r.Store.HTTP().ReadSnapshot()
		if httpCfg.EnableCORS {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		} else {
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		}
		w.WriteHeader(http.StatusNoContent)
		return false
	default:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
}

func (r *Router) bodySizeFilter(w http.ResponseWriter, req *http.Request, httpCfg config.HTTP) bool {
	cl := req.Header.Get("Content-Length")
	if cl == "" {
		return true
	}
	n, err := strconv.ParseUint(cl, 10, 64)
	if err != nil {
		r.Log.WithField("content-length", cl).Warn("non-numeric Content-Length, skipping body-size check")
		return true
	}
	if n > httpCfg.MaxBodySize {
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return false
	}
	return true
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request, action config.Action, indexFiles []string) {
	switch action.Kind {
	case config.ActionDir:
		r.serveFileAction(w, req, action.Path, "", "", indexFiles)
	case config.ActionFile:
		r.serveFileAction(w, req, "", "", action.Path, nil)
	case config.ActionRedirect:
		code := action.Code
		if code == 0 {
			code = http.StatusFound
		}
		w.Header().Set("Location", action.Target)
		w.WriteHeader(code)
	case config.ActionDirect:
		if action.ContentType != "" {
			w.Header().Set("Content-Type", action.ContentType)
		}
		w.WriteHeader(action.Status)
		if action.Body != "" {
			_, _ = w.Write([]byte(action.Body))
		}
	}
}

func (r *Router) dispatchLegacy(w http.ResponseWriter, req *http.Request, action config.Action, routePrefix string, indexFiles []string) {
	switch action.Kind {
	case config.ActionDir:
		r.serveFileAction(w, req, action.Path, routePrefix, "", indexFiles)
	case config.ActionFile:
		r.serveFileAction(w, req, "", "", action.Path, nil)
	case config.ActionRedirect:
		w.Header().Set("Location", action.Target)
		w.WriteHeader(http.StatusFound)
	case config.ActionDirect:
		w.WriteHeader(action.Status)
	}
}

// serveFileAction is shared by Dir and File actions: File actions pass the
// literal path in literalFile, which is served directly; Dir actions leave it
// empty and resolve the request path under root, minus routePrefix.
func (r *Router) serveFileAction(w http.ResponseWriter, req *http.Request, root, routePrefix, literalFile string, indexFiles []string) {
	var resolved string
	var ok bool
	if literalFile != "" {
		if fi, err := os.Stat(literalFile); err == nil && fi.Mode().IsRegular() {
			resolved, ok = literalFile, true
		}
	} else {
		resolved, ok = static.Resolve(root, req.URL.Path, routePrefix, indexFiles)
	}

	if !ok {
		r.Log.WithField("path", req.URL.Path).Warn("static resolve failed or path traversal rejected")
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	ServeFile(w, req, resolved, r.Metrics)
}

// ServeFile runs the mtime-first conditional-GET and Range pipeline
// described in spec.md §4.12 against the file at path.
func ServeFile(w http.ResponseWriter, req *http.Request, path string, m *metrics.Metrics) {
	info, err := os.Stat(path)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	lastModified := httpcache.FormatLastModified(info.ModTime())
	mtimeETag := httpcache.MtimeETag(info.ModTime())

	if httpcache.NotModifiedSince(req.Header.Get("If-Modified-Since"), info.ModTime()) {
		w.Header().Set("ETag", mtimeETag)
		w.Header().Set("Last-Modified", lastModified)
		w.WriteHeader(http.StatusNotModified)
		if m != nil {
			m.CacheHits.Inc()
		}
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	etag := httpcache.GenerateETag(content)

	if httpcache.ETagMatches(req.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.Header().Set("Last-Modified", lastModified)
		w.WriteHeader(http.StatusNotModified)
		if m != nil {
			m.CacheHits.Inc()
		}
		return
	}
	if m != nil {
		m.CacheMisses.Inc()
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", lastModified)
	w.Header().Set("Accept-Ranges", "bytes")

	total := int64(len(content))
	rng := httpcache.ParseRange(req.Header.Get("Range"), total)

	switch rng.Result {
	case httpcache.RangeNotSatisfiable:
		w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(total, 10))
		http.Error(w, http.StatusText(http.StatusRequestedRangeNotSatisfiable), http.StatusRequestedRangeNotSatisfiable)
		return
	case httpcache.RangeValid:
		body := content[rng.Start : rng.End+1]
		w.Header().Set("Content-Range", "bytes "+strconv.FormatInt(rng.Start, 10)+"-"+strconv.FormatInt(rng.End, 10)+"/"+strconv.FormatInt(total, 10))
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusPartialContent)
		if req.Method != http.MethodHead {
			_, _ = w.Write(body)
		}
		return
	default:
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.WriteHeader(http.StatusOK)
		if req.Method != http.MethodHead {
			_, _ = w.Write(content)
		}
	}
}
