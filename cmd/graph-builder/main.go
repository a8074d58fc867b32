package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/natevvv/searoute/internal/logging"
	"github.com/natevvv/searoute/pkg/graph"
	"github.com/natevvv/searoute/pkg/store"
)

func main() {
	input := flag.String("in", "", "reference data to convert (.geojson, .json, .fmi, .osm, .pbf, optionally .gz)")
	output := flag.String("out", "plain_graph.fmi", "fmi file to write")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.NewStructuredLogger(os.Stderr, level)

	if err := build(context.Background(), *input, *output, logger); err != nil {
		logging.LogError(logger, "building graph failed", err)
		os.Exit(1)
	}
}

// build loads the reference data and writes it as fmi graph
func build(ctx context.Context, input, output string, logger *slog.Logger) error {
	if input == "" {
		return errors.New("no input given, use -in")
	}

	g, err := store.LoadWithLogger(ctx, input, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := graph.WriteFmi(g, output); err != nil {
		return fmt.Errorf("writing %v: %w", output, err)
	}
	logging.LogOperation(logger, "graph exported",
		slog.String("file", output),
		slog.Int("nodes", g.NodeCount()),
		slog.Int("arcs", g.ArcCount()),
		slog.Any("passages", g.Passages()),
		slog.Duration("duration", time.Since(start)))
	return nil
}
