package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/natevvv/searoute/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marnet = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[1,0],[1,1]]}},
{"type":"Feature","properties":{"pass":"kiel"},"geometry":{"type":"LineString","coordinates":[[1,1],[0,0]]}}]}`

const lanes = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="10" lat="54.0" lon="10.0"/>
  <node id="11" lat="54.5" lon="10.5"/>
  <node id="12" lat="55.0" lon="11.0"/>
  <way id="1">
    <nd ref="10"/>
    <nd ref="11"/>
    <nd ref="12"/>
    <tag k="route" v="ferry"/>
  </way>
</osm>`

const square = `4
4
0 0 0
1 0 1
2 1 1
3 1 0
0 1 1000
1 2 1000
2 3 1000
3 0 1000
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func gzipped(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		source     string
		format     Format
		compressed bool
	}{
		{"marnet.geojson", GeoJSON, false},
		{"/data/Marnet.JSON.gz", GeoJSON, true},
		{"planet.fmi", Fmi, false},
		{"lanes.osm.gz", Osm, true},
		{"baltic-latest.osm.pbf", Pbf, false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			format, compressed, err := DetectFormat(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.compressed, compressed)
		})
	}

	_, _, err := DetectFormat("graph.csv")
	var loadErr *graph.DataLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		nodes int
		arcs  int
	}{
		{"marnet.geojson", []byte(marnet), 3, 6},
		{"marnet.geojson.gz", gzipped(t, marnet), 3, 6},
		{"square.fmi", []byte(square), 4, 4},
		{"square.fmi.gz", gzipped(t, square), 4, 4},
		{"lanes.osm", []byte(lanes), 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.name, tt.data)
			g, err := Load(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.nodes, g.NodeCount())
			assert.Equal(t, tt.arcs, g.ArcCount())
		})
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	path := writeFile(t, "marnet.geojson", []byte(marnet))

	first, err := Load(context.Background(), path)
	require.NoError(t, err)
	second, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, first.AsString(), second.AsString())
	assert.Equal(t, []string{"kiel"}, first.Passages())
}

func TestLoadErrors(t *testing.T) {
	tests := map[string][]byte{
		"empty.geojson":    []byte(`{"type":"FeatureCollection","features":[]}`),
		"broken.fmi":       []byte("2\n1\n0 0 0\n"),
		"negative.fmi":     []byte("2\n1\n0 0 0\n1 0 1\n0 1 -5\n"),
		"not-gzip.fmi.gz":  []byte(square),
		"unsupported.yaml": []byte("nodes: []"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, data)
			_, err := Load(context.Background(), path)
			var loadErr *graph.DataLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, path, loadErr.Source)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.fmi"))
		var loadErr *graph.DataLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.True(t, os.IsNotExist(loadErr.Unwrap()))
	})
}

func TestRead(t *testing.T) {
	g, err := Read(context.Background(), strings.NewReader(square), Fmi, "square")
	require.NoError(t, err)
	assert.Equal(t, 4, g.NodeCount())

	_, err = Read(context.Background(), strings.NewReader(square), Format("csv"), "square")
	assert.Error(t, err)
}

func TestLoadPbf(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "internal", "pbf", "testdata", "lanes.osm.pbf"))
	require.NoError(t, err)

	for name, content := range map[string][]byte{
		"lanes.osm.pbf":    data,
		"lanes.osm.pbf.gz": gzipped(t, string(data)),
	} {
		t.Run(name, func(t *testing.T) {
			g, err := Load(context.Background(), writeFile(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, 3, g.NodeCount())
			assert.Equal(t, 5, g.ArcCount())
			assert.Equal(t, []string{"kiel"}, g.Passages())
		})
	}
}
