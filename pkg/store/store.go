// Package store loads reference graphs from disk in any of the supported formats.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/natevvv/searoute/internal/logging"
	"github.com/natevvv/searoute/internal/pbf"
	"github.com/natevvv/searoute/pkg/graph"
)

// Format of a reference data file
type Format string

const (
	GeoJSON Format = "geojson"
	Fmi     Format = "fmi"
	Osm     Format = "osm"
	Pbf     Format = "pbf"
)

// DetectFormat derives the format from the file name. A trailing .gz is ignored.
func DetectFormat(source string) (format Format, compressed bool, err error) {
	name := strings.ToLower(filepath.Base(source))
	if strings.HasSuffix(name, ".gz") {
		compressed = true
		name = strings.TrimSuffix(name, ".gz")
	}
	switch filepath.Ext(name) {
	case ".geojson", ".json":
		return GeoJSON, compressed, nil
	case ".fmi":
		return Fmi, compressed, nil
	case ".osm":
		return Osm, compressed, nil
	case ".pbf":
		return Pbf, compressed, nil
	}
	return "", compressed, &graph.DataLoadError{Source: source, Reason: fmt.Sprintf("unknown format %q", filepath.Ext(name))}
}

// Load reads, validates and freezes the graph stored in the file source.
func Load(ctx context.Context, source string) (*graph.AdjacencyArrayGraph, error) {
	return LoadWithLogger(ctx, source, nil)
}

// LoadWithLogger is Load, logging the outcome to logger.
func LoadWithLogger(ctx context.Context, source string, logger *slog.Logger) (*graph.AdjacencyArrayGraph, error) {
	start := time.Now()

	aag, format, err := load(ctx, source)
	if err != nil {
		logging.LogError(logger, "loading graph failed", err, slog.String("source", source))
		return nil, err
	}

	logging.LogOperation(logger, "graph loaded",
		slog.String("source", source),
		slog.String("format", string(format)),
		slog.Int("nodes", aag.NodeCount()),
		slog.Int("arcs", aag.ArcCount()),
		slog.Duration("duration", time.Since(start)))
	return aag, nil
}

func load(ctx context.Context, source string) (*graph.AdjacencyArrayGraph, Format, error) {
	format, compressed, err := DetectFormat(source)
	if err != nil {
		return nil, format, err
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, format, &graph.DataLoadError{Source: source, Reason: "opening", Err: err}
	}
	defer file.Close()

	var r io.Reader = file
	if compressed {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, format, &graph.DataLoadError{Source: source, Reason: "opening gzip stream", Err: err}
		}
		defer gz.Close()
		r = gz
	}

	aag, err := Read(ctx, r, format, source)
	return aag, format, err
}

// Read decodes an uncompressed stream of the given format.
func Read(ctx context.Context, r io.Reader, format Format, source string) (*graph.AdjacencyArrayGraph, error) {
	var alg *graph.AdjacencyListGraph
	var err error
	switch format {
	case GeoJSON:
		alg, err = graph.ReadGeoJSON(r, source)
	case Fmi:
		alg, err = graph.ReadFmi(r, source)
	case Osm:
		alg, err = graph.ReadOsm(ctx, r, source)
	case Pbf:
		alg, err = pbf.Read(r, source)
	default:
		return nil, &graph.DataLoadError{Source: source, Reason: fmt.Sprintf("unknown format %q", format)}
	}
	if err != nil {
		return nil, err
	}
	if err := graph.Validate(alg, source); err != nil {
		return nil, err
	}
	return graph.NewAdjacencyArrayFromGraph(alg), nil
}
