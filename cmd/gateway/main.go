package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	api "github.com/mind-engage/mindengage-fuzzyeval/internal/api/http"
	auth "github.com/mind-engage/mindengage-fuzzyeval/internal/auth/middleware"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/config"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/db"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/evaluation"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/grading"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/logging"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/metrics"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/rulefile"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	log, err := logging.New(cfg.Mode == config.ModeOffline, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	logging.SetLogger(log)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("gateway stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Inference engine ---
	sys, err := rulefile.Build(cfg.RuleBase)
	if err != nil {
		return errors.Wrapf(err, "rule base %q", cfg.RuleBase)
	}
	col := metrics.New(prometheus.DefaultRegisterer)
	opts := []grading.Option{grading.WithLogger(log), grading.WithMetrics(col)}
	if cfg.EnableFallback {
		opts = append(opts, grading.WithFallback(grading.WeightedAverage))
	}
	eng := grading.New(sys, opts...)

	// --- DB ---
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		return err
	}
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, driver, cfg.DBDSN)
	cancel()
	if err != nil {
		return errors.Wrap(err, "db open failed")
	}
	defer dbh.Close()

	svcOpts := []evaluation.ServiceOption{
		evaluation.WithServiceLogger(log),
		evaluation.WithWorkers(cfg.BatchWorkers),
	}
	if cfg.CurveStore != "" {
		bs, err := storage.NewFSStore(cfg.CurveStore)
		if err != nil {
			return errors.Wrap(err, "curve store")
		}
		svcOpts = append(svcOpts, evaluation.WithCurveStore(storage.NewCurveStore(bs)))
	}
	svc := evaluation.NewService(eng, evaluation.NewSQLStore(dbh), svcOpts...)

	// --- Router ---
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	deps := api.Deps{
		Service: svc,
		System:  sys,
		Auth:    auth.NewAuthService(cfg.AuthHMACSecret),
		Credentials: auth.Credentials{
			AdminUser:      cfg.AdminUser,
			AdminPassHash:  cfg.AdminPassHash,
			AllowDevLogins: cfg.Mode == config.ModeOffline,
		},
		LocalLogin:   cfg.EnableLocalAuth,
		Limiter:      limiter,
		MaxBatchSize: cfg.MaxBatchSize,
		Ready:        dbh.PingContext,
		CORSOrigins:  cfg.CORSOrigins(),
		Logger:       log,
	}
	servers := []*http.Server{}
	if cfg.MetricsAddr == "" {
		deps.Metrics = metrics.Handler(prometheus.DefaultGatherer)
	} else {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(prometheus.DefaultGatherer))
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second})
	}
	servers = append(servers, &http.Server{Addr: cfg.HTTPAddr, Handler: api.NewRouter(deps), ReadHeaderTimeout: 10 * time.Second})

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Info("listening",
				zap.String(logging.FieldAddress, srv.Addr),
				zap.String("mode", string(cfg.Mode)),
				zap.String(logging.FieldRuleBase, sys.Name()),
				zap.String("db", string(driver)),
			)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "serve %s", srv.Addr)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			_ = srv.Shutdown(shutdownCtx)
		}
		return nil
	})
	return g.Wait()
}
