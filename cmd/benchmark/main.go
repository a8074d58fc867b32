package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/natevvv/searoute/internal/config"
	"github.com/natevvv/searoute/internal/logging"
	"github.com/natevvv/searoute/pkg/graph"
	p "github.com/natevvv/searoute/pkg/graph/path"
	"github.com/natevvv/searoute/pkg/routing"
	"github.com/natevvv/searoute/pkg/slice"
	"github.com/natevvv/searoute/pkg/store"
)

// relative difference up to which two path lengths count as equal
const lengthTolerance = 1e-9

// A benchmark case: origin, destination, reference length (km, -1 if unreachable), #hops
type target struct {
	origin      graph.NodeId
	destination graph.NodeId
	length      float64
	hops        int
}

func main() {
	useRandomTargets := flag.Bool("random", false, "Create (new) random targets")
	amountTargets := flag.Int("n", 100, "How many new targets should get created")
	storeTargets := flag.Bool("store", false, "Store targets (when newly generated)")
	targetFile := flag.String("targets", "targets.txt", "File with the targets")
	algorithm := flag.String("search", "astar", "Select the search algorithm (dijkstra, astar, reference)")
	cpuProfile := flag.String("cpu", "", "write cpu profile to file")
	graphFile := flag.String("graph", "", "Select the graph to work with (defaults to SEAROUTE_GRAPH)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for the random targets")
	flag.Parse()

	logger := logging.NewStructuredLogger(os.Stderr, slog.LevelInfo)
	fatal := func(msg string, err error) {
		logging.LogError(logger, msg, err)
		os.Exit(1)
	}

	if *graphFile == "" {
		if err := config.LoadEnvFile(".env"); err != nil {
			fatal("reading .env", err)
		}
		cfg, err := config.Load()
		if err != nil {
			fatal("reading configuration", err)
		}
		*graphFile = cfg.Graph
	}
	if *graphFile == "" {
		fatal("no graph given", errors.New("set -graph or SEAROUTE_GRAPH"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	g, err := store.LoadWithLogger(ctx, *graphFile, logger)
	if err != nil {
		fatal("loading graph", err)
	}
	fmt.Printf("[TIME-Import] = %s\n", time.Since(start))

	referenceDijkstra := p.NewDijkstra(g)
	navigator, err := routing.NewNavigator(*algorithm, g, p.SearchOptions{})
	if err != nil {
		fatal("creating navigator", err)
	}

	var targets []target
	if *useRandomTargets {
		targets = createTargets(ctx, *amountTargets, referenceDijkstra, rand.New(rand.NewSource(*seed)))
		if *storeTargets {
			if err := writeTargets(targets, *targetFile); err != nil {
				fatal("writing targets", err)
			}
		}
	} else {
		targets, err = readTargets(*targetFile)
		if err != nil {
			fatal("reading targets", err)
		}
		if *amountTargets < len(targets) {
			targets = targets[0:*amountTargets]
		}
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fatal("creating cpu profile", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fatal("starting cpu profile", err)
		}
		defer pprof.StopCPUProfile()
	}
	benchmark(ctx, navigator, targets, referenceDijkstra, logger)
}

func readTargets(filename string) ([]target, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)

	targets := make([]target, 0)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}
		var t target
		if _, err := fmt.Sscanf(line, "%d %d %g %d", &t.origin, &t.destination, &t.length, &t.hops); err != nil {
			return nil, fmt.Errorf("invalid target %q: %w", line, err)
		}
		targets = append(targets, t)
	}
	return targets, scanner.Err()
}

func createTargets(ctx context.Context, n int, referenceNavigator *p.Dijkstra, rng *rand.Rand) []target {
	targets := make([]target, n)
	nodeCount := referenceNavigator.GetGraph().NodeCount()
	// reference algorithm to compute path
	for i := 0; i < n; i++ {
		t := target{origin: rng.Intn(nodeCount), destination: rng.Intn(nodeCount), length: -1}
		if path, err := referenceNavigator.ShortestPath(ctx, t.origin, t.destination); err == nil {
			t.length = path.Weight
			t.hops = len(path.Nodes)
		}
		targets[i] = t
	}
	return targets
}

func writeTargets(targets []target, targetFile string) error {
	var sb strings.Builder
	for _, t := range targets {
		sb.WriteString(fmt.Sprintf("%v %v %v %v\n", t.origin, t.destination, t.length, t.hops))
	}

	file, err := os.Create(targetFile)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writer.WriteString(sb.String())
	return writer.Flush()
}

func sameLength(a, b float64) bool {
	return math.Abs(a-b) <= lengthTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// Run benchmarks on the provided graph and targets, returns the number of completed targets
func benchmark(ctx context.Context, navigator p.Navigator, targets []target, referenceDijkstra *p.Dijkstra, logger *slog.Logger) int {
	var runtime time.Duration = 0
	completed := 0

	pqPops := 0
	pqUpdates := 0
	settledNodes := 0
	edgeRelaxations := 0
	relaxationAttempts := 0

	invalidLengths := make([]int, 0)
	invalidResults := make([]int, 0)
	invalidHops := make([]int, 0)
	differentPaths := make([]int, 0)

	showResults := func() {
		if completed == 0 {
			fmt.Println("No targets completed")
			return
		}
		fmt.Printf("Average runtime: %.3fms\n", float64(runtime.Nanoseconds())/float64(completed)/1000000)
		fmt.Printf("Average pq pops: %d\n", pqPops/completed)
		fmt.Printf("Average pq updates: %d\n", pqUpdates/completed)
		fmt.Printf("Average settled nodes: %d\n", settledNodes/completed)
		fmt.Printf("Average relaxations attempts: %d\n", relaxationAttempts/completed)
		fmt.Printf("Average edge relaxations: %d\n", edgeRelaxations/completed)

		fmt.Printf("%v/%v invalid Result (source/target).\n", len(invalidResults), completed)
		for i, testcase := range invalidResults {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid result\n", i, testcase, targets[testcase].origin, targets[testcase].destination)
		}
		fmt.Printf("%v/%v invalid path lengths.\n", len(invalidLengths), completed)
		for i, testcase := range invalidLengths {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid length. Reference: %v\n", i, testcase, targets[testcase].origin, targets[testcase].destination, targets[testcase].length)
		}
		fmt.Printf("%v/%v invalid hops number.\n", len(invalidHops), completed)
		fmt.Printf("%v/%v paths differ from the reference path.\n", len(differentPaths), completed)
	}

	for i, t := range targets {
		if ctx.Err() != nil {
			// interrupted, show the already calculated results
			break
		}

		start := time.Now()
		path, err := navigator.ShortestPath(ctx, t.origin, t.destination)
		elapsed := time.Since(start)

		var noPath *p.NoPathError
		if err != nil && !errors.As(err, &noPath) {
			logging.LogError(logger, "search failed, stopping benchmark", err,
				slog.Int("case", i),
				slog.Int("origin", t.origin),
				slog.Int("destination", t.destination))
			break
		}

		kpis := path.KPIs
		pqPops += kpis.PqPops
		pqUpdates += kpis.PqUpdates
		settledNodes += kpis.SettledNodes
		edgeRelaxations += kpis.RelaxedEdges
		relaxationAttempts += kpis.RelaxationAttempts

		fmt.Printf("[%3v TIME-Navigate, PQ Pops, PQ Updates, relaxed Edges, relax attempts] = %12s, %7d, %7d, %7d, %7d\n", i, elapsed, kpis.PqPops, kpis.PqUpdates, kpis.RelaxedEdges, kpis.RelaxationAttempts)

		length := -1.0
		if err == nil {
			length = path.Weight
		}
		if !sameLength(length, t.length) {
			invalidLengths = append(invalidLengths, i)
		}
		if err == nil && (path.Nodes[0] != t.origin || path.Nodes[len(path.Nodes)-1] != t.destination) {
			invalidResults = append(invalidResults, i)
		}
		if err == nil && t.hops != len(path.Nodes) {
			invalidHops = append(invalidHops, i)
		}
		if err == nil {
			if reference, refErr := referenceDijkstra.ShortestPath(ctx, t.origin, t.destination); refErr == nil && slice.Compare(reference.Nodes, path.Nodes) != 0 {
				differentPaths = append(differentPaths, i)
			}
		}

		runtime += elapsed
		completed++
	}
	showResults()
	return completed
}
