package graph

import (
	"context"
	"io"

	geo "github.com/natevvv/searoute/pkg/geometry"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
)

// ReadOsm reads sea lanes from OpenStreetMap XML.
func ReadOsm(ctx context.Context, r io.Reader, source string) (*AdjacencyListGraph, error) {
	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	builder := NewWayBuilder()
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			builder.AddNode(int64(o.ID), geo.MakeCoordinate(o.Lon, o.Lat))
		case *osm.Way:
			w := Way{ID: int64(o.ID), NodeIDs: make([]int64, 0, len(o.Nodes))}
			for _, wn := range o.Nodes {
				w.NodeIDs = append(w.NodeIDs, int64(wn.ID))
			}
			tags := o.Tags.Map()
			w.OneWay, w.Marine, w.Passage = ClassifyWay(tags)
			builder.AddWay(w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &DataLoadError{Source: source, Reason: "decoding osm xml", Err: err}
	}
	return builder.Build(source)
}

// ClassifyWay derives the routing attributes of a way from its OSM tags.
func ClassifyWay(tags map[string]string) (oneWay, marine bool, passage string) {
	oneWay = tags["oneway"] == "yes"
	_, seamark := tags["seamark:type"]
	marine = tags["route"] == "ferry" || seamark
	passage = tags["passage"]
	return oneWay, marine, passage
}
