package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joeydtaylor/steeze-print/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-print/pkg/core"
	"github.com/joeydtaylor/steeze-print/pkg/device"
	"github.com/joeydtaylor/steeze-print/pkg/electrician"
	"github.com/joeydtaylor/steeze-print/pkg/manifest"
	"github.com/joeydtaylor/steeze-print/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-print/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-print/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-print/pkg/spool"
	"github.com/joeydtaylor/steeze-print/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // PRINT_MANIFEST
	DefaultManifest string // "manifest.toml"
	ListenEnv       string // SERVER_LISTEN_ADDRESS
	DefaultListen   string // ":4000"
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
	TimeoutEnv      string // DISPATCH_TIMEOUT, a time.Duration string
	RelayTimeout    time.Duration
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithListenEnv(k, def string) Option {
	return func(c *Config) { c.ListenEnv, c.DefaultListen = k, def }
}
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}
func WithRelayTimeout(d time.Duration) Option { return func(c *Config) { c.RelayTimeout = d } }

func defaultConfig() Config {
	return Config{
		Service:         "printd",
		ManifestEnv:     "PRINT_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		DefaultListen:   ":4000",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
		TimeoutEnv:      "DISPATCH_TIMEOUT",
		RelayTimeout:    5 * time.Second,
	}
}

// Module returns a complete Fx option set; add app-specific fx.Invoke(...) alongside.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		// Middleware, loggers, metrics
		bundlefx.Module,
		// Router impl
		fx.Provide(httpx.NewChi),
		// Config into DI
		fx.Provide(func() Config { return cfg }),
		fx.Provide(provideManifest),
		// Devices and their collaborators
		fx.Provide(provideSpool),
		fx.Provide(providePublisher),
		fx.Provide(provideRegistry),
		fx.Provide(provideDispatcher),
		// HTTP app
		fx.Provide(fx.Annotate(provideRouter, fx.ResultTags(`name:"app"`))),
		// Lifecycle
		fx.Invoke(registerHooks),
	)
}

// ---------- Manifest and devices ----------

func provideManifest(cfg Config, zl *zap.Logger) (manifest.Config, error) {
	path := envOr(cfg.ManifestEnv, cfg.DefaultManifest)
	man, err := core.LoadConfig(path)
	if err != nil {
		zl.Error("manifest load failed", zap.Error(err), zap.String("path", path))
		return manifest.Config{}, err
	}
	zl.Info("manifest loaded", zap.String("path", path), zap.Int("destinations", len(man.Destinations)))
	return man, nil
}

func provideSpool(lc fx.Lifecycle, man manifest.Config, zl *zap.Logger) (spool.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := core.OpenSpool(ctx, man.Spool)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		st.Close()
		return nil
	}})
	zl.Info("spool ready", zap.String("kind", string(man.Spool.Kind)))
	return st, nil
}

func providePublisher(cfg Config, man manifest.Config, zl *zap.Logger) (device.Publisher, error) {
	if man.Has(manifest.DeviceRelay) && strings.TrimSpace(os.Getenv("ELECTRICIAN_TARGET")) == "" {
		zl.Warn("relay destinations configured but no ELECTRICIAN_TARGET; publishes are discarded",
			zap.String("OAUTH_ISSUER_BASE", os.Getenv("OAUTH_ISSUER_BASE")),
			zap.String("OAUTH_CLIENT_ID", os.Getenv("OAUTH_CLIENT_ID")),
		)
	}
	rc, err := electrician.NewBuilderRelayFromEnv(context.Background())
	if err != nil {
		return nil, err
	}
	return electrician.NewPublisher(rc, cfg.RelayTimeout), nil
}

func provideRegistry(man manifest.Config, st spool.Store, pub device.Publisher, zl *zap.Logger) (*device.Registry, error) {
	return core.BuildRegistry(man, core.DeviceDeps{
		Logger:    zl,
		Spool:     st,
		Publisher: pub,
		Stdout:    os.Stdout,
	})
}

func provideDispatcher(cfg Config, reg *device.Registry, obs metrics.Dispatch, zl *zap.Logger) (*core.Router, error) {
	opts := []core.Option{core.WithLogger(zl.Named("dispatch")), core.WithObserver(obs)}
	if raw := strings.TrimSpace(os.Getenv(cfg.TimeoutEnv)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithTimeout(d))
	}
	return core.NewRouter(reg, opts...), nil
}

// ---------- Router ----------

type routerDeps struct {
	fx.In

	Manifest manifest.Config
	AuthMW   *auth.Middleware
	LogMW    *logger.Middleware
	Metrics  http.Handler `name:"metrics"`
	Dispatch *core.Router
	R        httpx.Router
	Log      *zap.Logger
}

func provideRouter(d routerDeps) http.Handler {
	if !d.AuthMW.Enabled() {
		d.Log.Warn("no DISPATCH_JWT_SECRET; requests stay anonymous and guarded destinations reject them")
	}
	return core.BuildRouter(d.Manifest, core.BuildDeps{
		Auth:     d.AuthMW,
		LogMW:    d.LogMW,
		Metrics:  d.Metrics,
		Router:   d.R,
		Dispatch: d.Dispatch,
		Logger:   d.Log,
	})
}

// ---------- Lifecycle (HTTP server) ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, cfg.DefaultListen)
	cert := os.Getenv(cfg.TLSCertEnv)
	key := os.Getenv(cfg.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
				return nil
			}
			d.Logger.Info("server starting (PLAINTEXT)",
				zap.String("service", cfg.Service),
				zap.String("addr", addr),
			)
			srv.TLSConfig = nil
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					d.Logger.Fatal("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---------- helpers ----------

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
