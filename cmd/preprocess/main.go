// Command preprocess compiles an OSM extract into a routing graph and
// persists it to disk, so cmd/server doesn't pay the cost of re-parsing
// OSM and re-lowering turn restrictions on every start. (cmd/route does
// not read this file; it compiles its graph from the OSM file each run.)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/azybler/map_router/pkg/builder"
	"github.com/azybler/map_router/pkg/component"
	"github.com/azybler/map_router/pkg/graphio"
	"github.com/azybler/map_router/pkg/osmsource"
	"github.com/azybler/map_router/pkg/profile"
)

func main() {
	input := flag.String("input", "", "Path to an OSM file (.osm, .osm.gz, .osm.bz2, or .osm.pbf)")
	output := flag.String("output", "graph.bin", "Output binary graph file path")
	profileName := flag.String("profile", "motorcar", "Routing profile: motorcar, bus, bicycle, foot, train, tram, subway")
	bbox := flag.String("bbox", "", "Bounding box filter: minLon,minLat,maxLon,maxLat")
	largestComponent := flag.Bool("largest-component", true, "Keep only the largest weakly connected component")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm[.pbf|.gz|.bz2]> [--output graph.bin] [--profile motorcar] [--bbox minLon,minLat,maxLon,maxLat]")
		os.Exit(1)
	}

	p, ok := profile.ByName(*profileName)
	if !ok {
		log.Fatalf("unknown profile %q", *profileName)
	}

	var box [4]float32
	if *bbox != "" {
		var minLon, minLat, maxLon, maxLat float32
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLon, &minLat, &maxLon, &maxLat); err != nil {
			log.Fatalf("invalid bbox format (expected minLon,minLat,maxLon,maxLat): %v", err)
		}
		box = [4]float32{minLon, minLat, maxLon, maxLat}
		log.Printf("using bounding box filter: lon [%.4f, %.4f], lat [%.4f, %.4f]", minLon, maxLon, minLat, maxLat)
	}

	start := time.Now()

	log.Println("opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("failed to open input file: %v", err)
	}
	defer f.Close()

	scanner, err := osmsource.Open(context.Background(), f)
	if err != nil {
		log.Fatalf("failed to detect OSM file format: %v", err)
	}
	defer scanner.Close()

	log.Printf("building graph with the %q profile...", p.Name)
	b := builder.New(&p, box)
	if err := b.AddFeatures(scanner); err != nil {
		log.Fatalf("failed to build graph: %v", err)
	}
	g := b.Graph()
	log.Printf("graph: %d nodes", g.Len())

	if *largestComponent {
		log.Println("extracting largest connected component...")
		before := g.Len()
		keep := component.Largest(g)
		g = component.Filter(g, keep)
		log.Printf("largest component: %d of %d nodes (%.1f%%)", len(keep), before, float64(len(keep))/float64(before)*100)
	}

	log.Printf("writing binary graph to %s...", *output)
	if err := graphio.Write(*output, g); err != nil {
		log.Fatalf("failed to write graph: %v", err)
	}

	info, _ := os.Stat(*output)
	log.Printf("done in %s. output: %s (%.1f MB)", time.Since(start).Round(time.Second), *output, float64(info.Size())/(1024*1024))
}
