package core

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
	manifest "github.com/joeydtaylor/steeze-print/pkg/manifest"
	"github.com/joeydtaylor/steeze-print/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-print/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/steeze-print/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/steeze-print/pkg/transport/httpx"
	"go.uber.org/zap"
)

type BuildDeps struct {
	Auth     *auth.Middleware
	LogMW    *logger.Middleware
	Metrics  http.Handler
	Router   httpx.Router
	Dispatch *Router
	Logger   *zap.Logger
}

func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))

	if d.Auth != nil {
		r.Use(d.Auth.Middleware())
		if d.LogMW != nil {
			r.Use(d.LogMW.Middleware(d.Auth))
		}
		r.Use(hmetrics.Collect(d.Auth))
	} else if d.LogMW != nil {
		r.Use(d.LogMW.Middleware(nil))
	}
	// Label by route pattern so unknown destinations do not mint series.
	hmetrics.SetPathNormalizer(routePattern)
	// A websocket's lifetime is not a response time.
	hmetrics.AddMetricsSkipPaths(streamRoute)

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}

	h := &handlers{cfg: cfg, rt: d.Dispatch, log: d.Logger}

	r.Get("/destinations", http.HandlerFunc(h.destinations))
	r.Post("/dispatch/{destination}", scoped(cfg, d.Auth, h.dispatch, h.dispatch, true))
	r.Get("/spool/{destination}", scoped(cfg, d.Auth, h.spool, notFound, true))
	// Watchers outlive any single request; the stream is guarded only.
	r.Get(streamRoute, scoped(cfg, d.Auth, h.stream, notFound, false))

	return r.Mux()
}

const streamRoute = "/lcd/{destination}/stream"

// destRoutes picks the per-destination chain (guard, timeout) by URL param.
type destRoutes struct {
	byName   map[string]http.HandlerFunc
	fallback http.HandlerFunc
}

// scoped applies each destination's guard, and its policy timeout when timed.
func scoped(cfg manifest.Config, a *auth.Middleware, h, fallback http.HandlerFunc, timed bool) http.Handler {
	dr := destRoutes{byName: make(map[string]http.HandlerFunc, len(cfg.Destinations)), fallback: fallback}
	for _, dst := range cfg.Destinations {
		next := h
		if timed && dst.Policy.TimeoutMS > 0 {
			next = withTimeout(next, time.Duration(dst.Policy.TimeoutMS)*time.Millisecond)
		}
		dr.byName[dst.Name] = withGuard(next, a, dst.Guard)
	}
	return dr
}

func (dr destRoutes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := dr.byName[destinationParam(r)]; ok {
		h(w, r)
		return
	}
	dr.fallback(w, r)
}

func destinationParam(r *http.Request) string {
	p := chi.URLParam(r, "destination")
	if s, err := url.PathUnescape(p); err == nil {
		return s
	}
	return p
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, ErrInvalidDestination)
}
