package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/addonctl/internal/logger"
	"github.com/glorpus-work/addonctl/pkg/catalog"
	"github.com/glorpus-work/addonctl/pkg/config"
	"github.com/glorpus-work/addonctl/pkg/metrics"
	"github.com/glorpus-work/addonctl/pkg/scheduler"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var (
		metricsAddr string
		upgrade     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh the catalog on a schedule",
		Long: `Run in the foreground, refreshing the catalog on the configured cron
schedule (settings.refresh_schedule) and saving the state after each run.
With --upgrade, stale add-ons are reinstalled as well. Prometheus metrics
are served on /metrics when a metrics address is configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), metricsAddr, upgrade)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for /metrics (overrides settings.metrics_addr)")
	cmd.Flags().BoolVar(&upgrade, "upgrade", false, "Upgrade stale add-ons after each refresh")

	return cmd
}

func runServe(ctx context.Context, metricsAddr string, upgrade bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if metricsAddr == "" {
		metricsAddr = cfg.Settings.MetricsAddr
	}
	svc, err := openCatalog(cfg, progressHooks())
	if err != nil {
		return err
	}

	job := scheduledJob(cfg, svc, upgrade)
	sched, err := scheduler.New(cfg.Settings.RefreshSchedule, job, cronLogger{})
	if err != nil {
		return err
	}

	var srv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", logger.Fields{"error": err})
			}
		}()
		logger.Info("Serving metrics", logger.Fields{"addr": metricsAddr})
	}

	job(ctx)
	logger.Info("Scheduler started", logger.Fields{"schedule": cfg.Settings.RefreshSchedule})
	runErr := sched.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown", logger.Fields{"error": err})
		}
	}
	logger.Info("Scheduler stopped")
	return runErr
}

func scheduledJob(cfg *config.Config, svc *catalog.Service, upgrade bool) scheduler.Job {
	return func(ctx context.Context) {
		if upgrade {
			results, err := svc.Update(ctx, false)
			if err != nil {
				logger.Error("Scheduled upgrade failed", logger.Fields{"error": err})
			}
			logger.Info("Scheduled upgrade finished", logger.Fields{"upgraded": len(results)})
		} else {
			report := svc.RefreshAll(ctx, false)
			logger.Info("Scheduled refresh finished", logger.Fields{
				"refreshed": len(report.Refreshed),
				"failed":    len(report.Failed),
			})
		}
		if err := saveCatalog(cfg, svc); err != nil {
			logger.Error("Saving catalog state failed", logger.Fields{"error": err})
		}
	}
}
