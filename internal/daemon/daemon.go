// Package daemon assembles the reporter service from its parts and runs it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/flo-mic/pluginreporter/internal/admin"
	"github.com/flo-mic/pluginreporter/internal/auth"
	"github.com/flo-mic/pluginreporter/internal/config"
	"github.com/flo-mic/pluginreporter/internal/flash"
	"github.com/flo-mic/pluginreporter/internal/hooks"
	"github.com/flo-mic/pluginreporter/internal/inventory"
	"github.com/flo-mic/pluginreporter/internal/remote"
	"github.com/flo-mic/pluginreporter/internal/report"
	"github.com/flo-mic/pluginreporter/internal/schedule"
	"github.com/flo-mic/pluginreporter/internal/version"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// Options override the defaults New derives from the server config.
type Options struct {
	Clock      clockwork.Clock
	Logger     *slog.Logger
	HTTPClient *http.Client   // outbound delivery client
	Host       inventory.Host // plugin source; defaults to a DirHost over cfg.Host
}

type Daemon struct {
	cfg       *config.ServerConfig
	clock     clockwork.Clock
	logger    *slog.Logger
	hooks     *hooks.Registry
	scheduler *schedule.Scheduler
	reporter  *report.Reporter
	flash     *flash.Store
	metrics   *prometheus.Registry
	handler   http.Handler
}

// New wires the service. store is owned by the caller.
func New(cfg *config.ServerConfig, store config.Store, opts Options) (*Daemon, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Host == nil {
		opts.Host = inventory.DirHost{
			ComponentsDir: cfg.Host.ComponentsDir,
			StateFile:     cfg.Host.StateFile,
			UpdatesFile:   cfg.Host.UpdatesFile,
			Logger:        opts.Logger,
		}
	}

	d := &Daemon{
		cfg:     cfg,
		clock:   opts.Clock,
		logger:  opts.Logger,
		hooks:   hooks.NewRegistry(opts.Logger),
		flash:   flash.NewStore(opts.Clock),
		metrics: prometheus.NewRegistry(),
	}
	d.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collector := inventory.NewCollector(opts.Host, inventory.Options{
		SiteURL:         cfg.SiteURL,
		PlatformVersion: cfg.PlatformVersion,
		ReporterVersion: version.Version,
		Clock:           opts.Clock,
		Logger:          opts.Logger,
	})

	reportOpts := []report.Option{
		report.WithClock(opts.Clock),
		report.WithLogger(opts.Logger),
		report.WithMetrics(report.NewMetrics(d.metrics)),
	}
	if opts.HTTPClient != nil {
		reportOpts = append(reportOpts, report.WithHTTPClient(opts.HTTPClient))
	}
	d.reporter = report.New(store, collector, reportOpts...)

	d.scheduler = schedule.New(func(ctx context.Context) {
		if err := d.hooks.Fire(ctx, hooks.ScheduledTick); err != nil {
			d.logger.Error("scheduled run failed", "err", err)
		}
	}, opts.Clock, opts.Logger)
	d.metrics.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pluginreporter",
		Name:      "scheduler_armed",
		Help:      "1 while scheduled reporting is enabled.",
	}, func() float64 {
		if d.scheduler.Armed() {
			return 1
		}
		return 0
	}))

	d.registerHooks()

	tokens, err := auth.NewFormTokens([]byte(cfg.TokenKey), opts.Clock)
	if err != nil {
		return nil, fmt.Errorf("creating form token key: %w", err)
	}

	adminSrv := admin.New(admin.Options{
		Store:          store,
		Sender:         d.reporter,
		Flash:          d.flash,
		Tokens:         tokens,
		Schedule:       d.scheduler,
		Lifecycle:      d.hooks,
		IdentityHeader: cfg.IdentityHeader,
		Logger:         opts.Logger,
	})
	remoteSrv := remote.New(store, d.reporter, cfg.SiteURL, opts.Clock, opts.Logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount(remote.Namespace, remoteSrv.Routes())
	r.Mount("/admin", adminSrv.Routes())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.metrics, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	d.handler = r

	return d, nil
}

// registerHooks binds the host triggers to the reporter and scheduler.
func (d *Daemon) registerHooks() {
	d.hooks.On(hooks.ScheduledTick, func(ctx context.Context) error {
		d.reporter.Report(ctx, report.TriggerScheduled)
		return nil
	})
	d.hooks.On(hooks.LifecycleEnable, func(context.Context) error {
		if !d.scheduler.Enable() {
			d.logger.Info("scheduler already armed")
		}
		return nil
	})
	d.hooks.On(hooks.LifecycleDisable, func(context.Context) error {
		d.scheduler.Disable()
		return nil
	})
}

// Handler serves every HTTP route of the daemon.
func (d *Daemon) Handler() http.Handler { return d.handler }

// Scheduler exposes the scheduler for status reporting.
func (d *Daemon) Scheduler() *schedule.Scheduler { return d.scheduler }

// Start fires the enable trigger, arming the scheduler.
func (d *Daemon) Start(ctx context.Context) error {
	return d.hooks.Fire(ctx, hooks.LifecycleEnable)
}

// Stop fires the disable trigger.
func (d *Daemon) Stop(ctx context.Context) error {
	return d.hooks.Fire(ctx, hooks.LifecycleDisable)
}

// Run starts the daemon and serves HTTP on cfg.Listen until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              d.cfg.Listen,
		Handler:           d.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := d.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.logger.Info("pluginreporter starting", "listen", d.cfg.Listen, "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		d.sweepFlash(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		d.logger.Info("shutting down")
		if err := d.Stop(context.WithoutCancel(gctx)); err != nil {
			d.logger.Warn("disable trigger failed", "err", err)
		}
		sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// sweepFlash drops expired flash messages until ctx is done.
func (d *Daemon) sweepFlash(ctx context.Context) {
	ticker := d.clock.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := d.flash.Sweep(); n > 0 {
				d.logger.Debug("expired flash messages dropped", "count", n)
			}
		}
	}
}
