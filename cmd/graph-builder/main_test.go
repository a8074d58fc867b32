package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/natevvv/searoute/internal/logging"
	"github.com/natevvv/searoute/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marnet = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[1,0],[1,1]]}},
{"type":"Feature","properties":{"pass":"kiel"},"geometry":{"type":"LineString","coordinates":[[1,1],[2,1]]}}]}`

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "marnet.geojson")
	output := filepath.Join(dir, "plain_graph.fmi")
	require.NoError(t, os.WriteFile(input, []byte(marnet), 0o644))

	var logs bytes.Buffer
	require.NoError(t, build(context.Background(), input, output, logging.NewStructuredLogger(&logs, slog.LevelInfo)))
	assert.Contains(t, logs.String(), "graph exported")

	original, err := store.Load(context.Background(), input)
	require.NoError(t, err)
	converted, err := store.Load(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, original.AsString(), converted.AsString())
	assert.Equal(t, []string{"kiel"}, converted.Passages())
}

func TestBuildErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, build(context.Background(), "", filepath.Join(dir, "out.fmi"), nil))
	assert.Error(t, build(context.Background(), filepath.Join(dir, "missing.geojson"), filepath.Join(dir, "out.fmi"), nil))
}
