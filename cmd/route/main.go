// Command route is a thin CLI: OSM file + start/end lat/lon in, a GeoJSON
// LineString FeatureCollection out. Ported from the original routex CLI
// (src/main.rs), which built the exact same FeatureCollection by hand with
// println! — here via github.com/paulmach/go.geojson instead.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/go.geojson"

	"github.com/azybler/map_router/pkg/astar"
	"github.com/azybler/map_router/pkg/builder"
	"github.com/azybler/map_router/pkg/kdtree"
	"github.com/azybler/map_router/pkg/osmsource"
	"github.com/azybler/map_router/pkg/profile"
	"github.com/azybler/map_router/pkg/routeerr"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "route:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("usage: route <osm-file> <start-lat> <start-lon> <end-lat> <end-lon>")
	}
	osmFile := args[0]
	startLat, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return fmt.Errorf("start latitude: %w", err)
	}
	startLon, err := strconv.ParseFloat(args[2], 32)
	if err != nil {
		return fmt.Errorf("start longitude: %w", err)
	}
	endLat, err := strconv.ParseFloat(args[3], 32)
	if err != nil {
		return fmt.Errorf("end latitude: %w", err)
	}
	endLon, err := strconv.ParseFloat(args[4], 32)
	if err != nil {
		return fmt.Errorf("end longitude: %w", err)
	}

	f, err := os.Open(osmFile)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner, err := osmsource.Open(context.Background(), f)
	if err != nil {
		return err
	}
	defer scanner.Close()

	b := builder.New(&profile.CarProfile, [4]float32{})
	if err := b.AddFeatures(scanner); err != nil {
		return fmt.Errorf("%s: %w", osmFile, err)
	}
	g := b.Graph()

	tree := kdtree.BuildFromGraph(g)
	start, ok := tree.FindNearestNode(float32(startLat), float32(startLon))
	if !ok {
		return fmt.Errorf("no node corresponding to the given start position")
	}
	end, ok := tree.FindNearestNode(float32(endLat), float32(endLon))
	if !ok {
		return fmt.Errorf("no node corresponding to the given end position")
	}

	path, err := astar.FindRouteWithoutTurnAround(g, start.Id, end.Id, routeerr.DefaultStepLimit)
	if err != nil {
		return err
	}
	if path == nil {
		return fmt.Errorf("no route found between the given points")
	}

	coords := make([][]float64, len(path))
	for i, id := range path {
		n, _ := g.GetNode(id)
		coords[i] = []float64{float64(n.Lon), float64(n.Lat)}
	}

	fc := geojson.NewFeatureCollection()
	fc.AddFeature(geojson.NewLineStringFeature(coords))

	out, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
