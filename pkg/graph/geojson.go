package graph

import (
	"fmt"
	"io"

	geo "github.com/natevvv/searoute/pkg/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReadGeoJSON reads a marine network stored as a GeoJSON FeatureCollection of
// LineString and MultiLineString features.
// Every distinct vertex becomes a node, every pair of consecutive vertices an
// undirected edge weighted with its great-circle length.
// The optional "pass" property of a feature names the passage of its edges.
func ReadGeoJSON(r io.Reader, source string) (*AdjacencyListGraph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DataLoadError{Source: source, Reason: "reading", Err: err}
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &DataLoadError{Source: source, Reason: "decoding geojson", Err: err}
	}

	alg := NewAdjacencyListGraph()
	ids := make(map[orb.Point]NodeId)
	nodeId := func(p orb.Point) NodeId {
		if id, ok := ids[p]; ok {
			return id
		}
		id := alg.AddNode(geo.FromPoint(p))
		ids[p] = id
		return id
	}

	for i, feature := range fc.Features {
		passage, _ := feature.Properties["pass"].(string)

		var lines []orb.LineString
		switch g := feature.Geometry.(type) {
		case orb.LineString:
			lines = []orb.LineString{g}
		case orb.MultiLineString:
			lines = g
		default:
			return nil, &DataLoadError{Source: source, Reason: fmt.Sprintf("feature %v has unsupported geometry %T", i, feature.Geometry)}
		}

		for _, line := range lines {
			for j, p := range line {
				if err := geo.FromPoint(p).Validate(); err != nil {
					return nil, &DataLoadError{Source: source, Reason: fmt.Sprintf("feature %v", i), Err: err}
				}
				current := nodeId(p)
				if j == 0 {
					continue
				}
				previous := ids[line[j-1]]
				if previous == current {
					continue
				}
				alg.AddEdge(previous, current, geo.Distance(*alg.GetNode(previous), *alg.GetNode(current)), passage)
			}
		}
	}
	return alg, nil
}
