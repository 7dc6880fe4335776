package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm/internal/clock"
	"crm/internal/config"
	"crm/internal/jobs"
	"crm/internal/logger"
	"crm/internal/metrics"

	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "run every enabled job once and exit")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	sc := cfg.Scheduler
	clk := clock.System()
	client := jobs.NewClient(sc.APIURL, sc.RequestTimeout)

	var enabled []jobs.Job
	var closers []func()
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	add := func(on bool, path string, interval time.Duration, open func(string, clock.Clock) (*zap.Logger, func(), error), build func(*zap.Logger) jobs.Job) {
		if !on {
			return
		}
		jobLog, closeLog, err := open(path, clk)
		if err != nil {
			log.Fatal("Failed to open job log", zap.String("path", path), zap.Error(err))
		}
		closers = append(closers, closeLog)

		job := build(jobLog)
		job.Interval = interval
		enabled = append(enabled, job)
	}

	add(sc.HeartbeatEnabled, sc.HeartbeatLog, sc.HeartbeatInterval, jobs.OpenHeartbeatLog, func(l *zap.Logger) jobs.Job {
		return jobs.Heartbeat(client, l)
	})
	add(sc.RestockEnabled, sc.RestockLog, sc.RestockInterval, jobs.OpenJobLog, func(l *zap.Logger) jobs.Job {
		return jobs.Restock(client, l)
	})
	add(sc.ReminderEnabled, sc.ReminderLog, sc.ReminderInterval, jobs.OpenJobLog, func(l *zap.Logger) jobs.Job {
		return jobs.Reminders(client, l, clk, sc.ReminderWindow)
	})
	add(sc.ReportEnabled, sc.ReportLog, sc.ReportInterval, jobs.OpenJobLog, func(l *zap.Logger) jobs.Job {
		return jobs.Report(client, l)
	})

	reg := metrics.NewRegistry()
	runner := jobs.NewRunner(log, reg, enabled...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := runner.RunOnce(ctx); err != nil {
			log.Error("Scheduled jobs failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", sc.MetricsPort),
		Handler:           reg.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server error", zap.Error(err))
		}
	}()

	log.Info("Scheduler started",
		zap.String("api_url", sc.APIURL),
		zap.Int("jobs", len(enabled)),
	)
	runner.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server forced to shutdown", zap.Error(err))
	}
	log.Info("Scheduler stopped")
}
