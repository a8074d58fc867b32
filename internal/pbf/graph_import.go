package pbf

import (
	"errors"
	"io"
	"runtime"

	"github.com/natevvv/searoute/pkg/geometry"
	"github.com/natevvv/searoute/pkg/graph"
	"github.com/qedus/osmpbf"
)

// GraphImporter reads sea lanes from an OSM PBF stream.
type GraphImporter struct {
	source  string
	builder *graph.WayBuilder
}

func NewGraphImporter(source string) *GraphImporter {
	return &GraphImporter{
		source:  source,
		builder: graph.NewWayBuilder(),
	}
}

// Import decodes all nodes and ways of r.
// Ways are kept with their node references, coordinates are resolved when the graph is built.
func (gi *GraphImporter) Import(r io.Reader) error {
	decoder := osmpbf.NewDecoder(r)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)

	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return &graph.DataLoadError{Source: gi.source, Reason: "starting pbf decoder", Err: err}
	}

	for {
		v, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &graph.DataLoadError{Source: gi.source, Reason: "decoding pbf", Err: err}
		}
		switch v := v.(type) {
		case *osmpbf.Node:
			gi.builder.AddNode(v.ID, geometry.MakeCoordinate(v.Lon, v.Lat))
		case *osmpbf.Way:
			w := graph.Way{ID: v.ID, NodeIDs: v.NodeIDs}
			w.OneWay, w.Marine, w.Passage = graph.ClassifyWay(v.Tags)
			gi.builder.AddWay(w)
		}
	}
}

// Graph builds the graph of the imported ways.
func (gi *GraphImporter) Graph() (*graph.AdjacencyListGraph, error) {
	return gi.builder.Build(gi.source)
}

// Read imports a PBF stream and builds its graph.
func Read(r io.Reader, source string) (*graph.AdjacencyListGraph, error) {
	gi := NewGraphImporter(source)
	if err := gi.Import(r); err != nil {
		return nil, err
	}
	return gi.Graph()
}
