package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iPoetDev/browsechat-sub001/internal/config"
	"github.com/iPoetDev/browsechat-sub001/internal/events"
	"github.com/iPoetDev/browsechat-sub001/internal/parser"
	"github.com/iPoetDev/browsechat-sub001/internal/store"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "browsechat",
	Short: "Split conversation logs into browsable, queryable turns",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newStore assembles an engine and a store from config.
func newStore(cfg *config.Config) *store.Store {
	engine := parser.New(parser.Options{
		Marker:       cfg.Marker,
		MaxFileSize:  cfg.MaxFileSize,
		ChunkSize:    cfg.ChunkSize,
		ParseTimeout: time.Duration(cfg.ParseTimeoutMS) * time.Millisecond,
	})
	return store.New(engine, events.NewBus())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
