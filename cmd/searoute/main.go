package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natevvv/searoute/internal/config"
	"github.com/natevvv/searoute/internal/logging"
	"github.com/natevvv/searoute/pkg/geometry"
	"github.com/natevvv/searoute/pkg/graph/path"
	"github.com/natevvv/searoute/pkg/routing"
	"github.com/natevvv/searoute/pkg/spatial"
	"github.com/natevvv/searoute/pkg/store"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// polylineOutput is printed for -format polyline
type polylineOutput struct {
	Polyline      string  `json:"polyline"`
	Length        float64 `json:"length"`
	Units         string  `json:"units"`
	DurationHours float64 `json:"duration_hours"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	flags := flag.NewFlagSet("searoute", flag.ContinueOnError)
	flags.SetOutput(stderr)
	graphFile := flags.String("graph", cfg.Graph, "reference graph (.geojson, .json, .fmi, .osm, .pbf, optionally .gz)")
	algorithm := flags.String("algorithm", cfg.Algorithm, "search algorithm: dijkstra or astar")
	units := flags.String("units", string(cfg.Units), "unit of the reported length: km, m, mi or nm")
	format := flags.String("format", "geojson", "output format: geojson or polyline")
	logLevel := flags.String("log-level", cfg.LogLevel.String(), "log level: debug, info, warn or error")
	avoid := flags.String("avoid", "", "comma separated passages which must not be used")
	timeout := flags.Duration("timeout", cfg.Timeout, "maximum time for loading the graph and searching the route")
	speed := flags.Float64("speed", cfg.SpeedKnots, "vessel speed in knots for the travel time")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: searoute [flags] '[lon, lat]' '[lon, lat]'\n\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	usageError := func(format string, a ...any) int {
		fmt.Fprintf(stderr, format+"\n", a...)
		flags.Usage()
		return exitUsage
	}

	if flags.NArg() != 2 {
		return usageError("expected origin and destination, got %v arguments", flags.NArg())
	}
	origin, err := parseCoordinate(flags.Arg(0))
	if err != nil {
		return usageError("origin: %v", err)
	}
	destination, err := parseCoordinate(flags.Arg(1))
	if err != nil {
		return usageError("destination: %v", err)
	}

	cfg.Graph = *graphFile
	cfg.Algorithm = *algorithm
	cfg.Timeout = *timeout
	cfg.SpeedKnots = *speed
	if *avoid != "" {
		cfg.AvoidPassages = config.SplitList(*avoid)
	}
	if cfg.Units, err = geometry.ParseUnit(*units); err != nil {
		return usageError("%v", err)
	}
	if cfg.LogLevel, err = logging.ParseLevel(*logLevel); err != nil {
		return usageError("%v", err)
	}
	if *format != "geojson" && *format != "polyline" {
		return usageError("unknown format %q", *format)
	}
	if err := cfg.Validate(); err != nil {
		return usageError("%v", err)
	}

	logger := logging.NewStructuredLogger(stderr, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// failures are logged where they happen, only the plain message is added here
	route, err := computeRoute(ctx, cfg, logger, origin, destination)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	encoder := json.NewEncoder(stdout)
	if *format == "polyline" {
		err = encoder.Encode(polylineOutput{
			Polyline:      route.Polyline(),
			Length:        cfg.Units.FromKilometers(route.Length),
			Units:         string(cfg.Units),
			DurationHours: route.DurationHours(cfg.SpeedKnots),
		})
	} else {
		err = encoder.Encode(route.Feature(cfg.Units, cfg.SpeedKnots))
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	return exitOK
}

func computeRoute(ctx context.Context, cfg *config.Config, logger *slog.Logger, origin, destination geometry.Coordinate) (routing.Route, error) {
	start := time.Now()
	g, err := store.LoadWithLogger(ctx, cfg.Graph, logger)
	if err != nil {
		return routing.Route{}, err
	}

	index, err := spatial.NewIndex(g)
	if err != nil {
		logging.LogError(logger, "building spatial index failed", err)
		return routing.Route{}, err
	}

	navigator, err := routing.NewNavigator(cfg.Algorithm, g, path.SearchOptions{AvoidPassages: cfg.AvoidPassages})
	if err != nil {
		logging.LogError(logger, "creating navigator failed", err)
		return routing.Route{}, err
	}
	if d, ok := navigator.(*path.UniversalDijkstra); ok {
		d.SetLogger(logger)
	}
	logging.LogOperation(logger, "router ready",
		slog.String("algorithm", cfg.Algorithm),
		slog.Int("indexed_nodes", index.Len()),
		slog.Duration("duration", time.Since(start)))

	router := routing.NewRouter(g, index, navigator, routing.WithLogger(logger))
	return router.Route(ctx, origin, destination)
}

// parseCoordinate reads a JSON array [lon, lat]
func parseCoordinate(arg string) (geometry.Coordinate, error) {
	var values []float64
	if err := json.Unmarshal([]byte(arg), &values); err != nil {
		return geometry.Coordinate{}, fmt.Errorf("%q is not a JSON array [lon, lat]: %w", arg, err)
	}
	if len(values) != 2 {
		return geometry.Coordinate{}, errors.New("expected exactly two values [lon, lat]")
	}
	return geometry.NewCoordinate(values[0], values[1])
}
