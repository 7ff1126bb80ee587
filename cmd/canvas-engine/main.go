package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/canvas-engine/internal/config"
	"github.com/ajitpratap0/canvas-engine/internal/engine"
	"github.com/ajitpratap0/canvas-engine/internal/generate"
	"github.com/ajitpratap0/canvas-engine/internal/models"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "canvas-engine",
		Short: "canvas-engine — projection engine for structured chat canvases",
		Long:  "canvas-engine turns loosely shaped record batches into table, kanban, and gantt views, and reconciles targeted mutations back into the records.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		transformCmd(),
		inspectCmd(),
		editCmd(),
		searchCmd(),
		generateCmd(),
		statsCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newGenerator(logger *slog.Logger) *generate.Generator {
	if cfg.Claude.APIKey == "" {
		return nil
	}
	return generate.NewGenerator(cfg.Claude.APIKey, cfg.Claude.Model, cfg.Generate.MaxTokens, logger)
}

// engineOptions translates the canvas config section into engine options.
func engineOptions() []engine.Option {
	if cfg == nil {
		return nil
	}
	return []engine.Option{
		engine.WithTextareaLimit(cfg.Canvas.TextareaLimit),
		engine.WithDefaultView(models.ViewKind(cfg.Canvas.DefaultView)),
	}
}

// loadEngine builds an engine with the batch from path loaded. "-" reads
// stdin.
func loadEngine(path string, logger *slog.Logger) (*engine.Engine, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	eng := engine.New(logger, nil, nil, engineOptions()...)
	if err := eng.LoadJSON(data); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return eng, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return s
}
