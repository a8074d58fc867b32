package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	geo "github.com/natevvv/searoute/pkg/geometry"
)

// fmi parse states
const (
	PARSE_NODE_COUNT = iota
	PARSE_EDGE_COUNT = iota
	PARSE_NODES      = iota
	PARSE_EDGES      = iota
)

func WriteFmi(g Graph, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(g.AsString()); err != nil {
		return err
	}
	return writer.Flush()
}

// ReadFmi parses the fmi format:
// node count, arc count, one "id lat lon" line per node, one "from to meters [passage]" line per arc.
// Arcs are directed. Node ids of the file are mapped to dense ids in order of appearance.
func ReadFmi(r io.Reader, source string) (*AdjacencyListGraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	numNodes := 0
	numParsedNodes := 0

	alg := NewAdjacencyListGraph()
	id2index := make(map[int]NodeId)

	fail := func(lineNumber int, reason string, err error) error {
		return &DataLoadError{Source: source, Reason: fmt.Sprintf("line %v: %v", lineNumber, reason), Err: err}
	}

	parseState := PARSE_NODE_COUNT
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}

		switch parseState {
		case PARSE_NODE_COUNT:
			val, err := strconv.Atoi(line)
			if err != nil || val < 0 {
				return nil, fail(lineNumber, "invalid node count", err)
			}
			numNodes = val
			parseState = PARSE_EDGE_COUNT
		case PARSE_EDGE_COUNT:
			if _, err := strconv.Atoi(line); err != nil {
				return nil, fail(lineNumber, "invalid edge count", err)
			}
			parseState = PARSE_NODES
			if numNodes == 0 {
				parseState = PARSE_EDGES
			}
		case PARSE_NODES:
			var id int
			var lat, lon float64
			if _, err := fmt.Sscanf(line, "%d %f %f", &id, &lat, &lon); err != nil {
				return nil, fail(lineNumber, "invalid node", err)
			}
			if _, exists := id2index[id]; exists {
				return nil, fail(lineNumber, fmt.Sprintf("duplicate node id %v", id), nil)
			}
			id2index[id] = alg.AddNode(geo.MakeCoordinate(lon, lat))
			numParsedNodes++
			if numParsedNodes == numNodes {
				parseState = PARSE_EDGES
			}
		case PARSE_EDGES:
			fields := strings.Fields(line)
			if len(fields) < 3 || len(fields) > 4 {
				return nil, fail(lineNumber, "invalid arc", nil)
			}
			from, errFrom := strconv.Atoi(fields[0])
			to, errTo := strconv.Atoi(fields[1])
			meters, errDistance := strconv.ParseFloat(fields[2], 64)
			if errFrom != nil || errTo != nil || errDistance != nil {
				return nil, fail(lineNumber, "invalid arc", firstError(errFrom, errTo, errDistance))
			}
			fromIndex, okFrom := id2index[from]
			toIndex, okTo := id2index[to]
			if !okFrom || !okTo {
				return nil, fail(lineNumber, fmt.Sprintf("arc %v -> %v references a missing node", from, to), nil)
			}
			if meters < 0 {
				return nil, fail(lineNumber, fmt.Sprintf("negative distance %v", meters), nil)
			}
			passage := ""
			if len(fields) == 4 {
				passage = fields[3]
			}
			// cannot check the arc count, duplicates are merged during import
			alg.AddArc(fromIndex, toIndex, meters/1000, passage)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &DataLoadError{Source: source, Reason: "reading", Err: err}
	}

	if alg.NodeCount() != numNodes {
		return nil, &DataLoadError{Source: source, Reason: fmt.Sprintf("expected %v nodes, parsed %v", numNodes, alg.NodeCount())}
	}

	return alg, nil
}

func NewAdjacencyListFromFmiString(fmi string) (*AdjacencyListGraph, error) {
	return ReadFmi(strings.NewReader(fmi), "fmi string")
}

func NewAdjacencyArrayFromFmiString(fmi string) (*AdjacencyArrayGraph, error) {
	alg, err := NewAdjacencyListFromFmiString(fmi)
	if err != nil {
		return nil, err
	}
	return NewAdjacencyArrayFromGraph(alg), nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
