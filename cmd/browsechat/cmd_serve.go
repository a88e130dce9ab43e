package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iPoetDev/browsechat-sub001/internal/events"
	"github.com/iPoetDev/browsechat-sub001/internal/ingest"
	"github.com/iPoetDev/browsechat-sub001/internal/scheduler"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep configured logs ingested and log change events",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no sources configured (set \"sources\" in %s)", cfgPath)
	}

	st := newStore(cfg)

	// Log every change event; this command is a plain subscriber of the
	// store's event stream, same as any other consumer would be.
	for _, t := range events.AllTypes {
		st.Subscribe(t, func(ev events.Event) {
			slog.Info("store event",
				"type", string(ev.Type),
				"sequence_id", string(ev.SequenceID),
				"segment_id", string(ev.SegmentID),
				"source", ev.SourceFile,
			)
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := ingest.NewPool(st, int64(cfg.MaxConcurrent))
	for _, res := range pool.IngestAll(ctx, cfg.Sources) {
		if res.Err != nil {
			slog.Error("initial ingest failed", "path", res.Path, "error", res.Err)
		}
	}

	if cfg.Refresh.Enabled {
		sched := scheduler.New(cfg.Refresh.Schedule, cfg.Sources, func(source string) {
			if _, err := st.Ingest(ctx, source); err != nil {
				slog.Error("refresh failed", "path", source, "error", err)
			}
		})
		if err := sched.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
	}

	slog.Info("browsechat started",
		"sources", len(cfg.Sources),
		"marker", cfg.Marker,
		"refresh", cfg.Refresh.Enabled,
		"log_level", cfg.LogLevel,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("shutting down", "signal", sig)
	return nil
}
