// Command server loads a graph compiled by cmd/preprocess and serves
// routing queries over HTTP (see pkg/httpapi).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/azybler/map_router/pkg/graphio"
	"github.com/azybler/map_router/pkg/httpapi"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to a graph binary produced by cmd/preprocess")
	profileName := flag.String("profile", "motorcar", "Profile name this graph was compiled for; requests must name it in their \"profile\" field")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	start := time.Now()

	log.Printf("loading graph from %s...", *graphPath)
	g, err := graphio.Read(*graphPath)
	if err != nil {
		log.Fatalf("failed to load graph: %v", err)
	}
	log.Printf("loaded: %d nodes", g.Len())

	log.Println("building query-time indexes...")
	planner := httpapi.NewPlanner(*profileName, g)

	// Index construction allocates and frees a lot of short-lived scratch
	// data (the k-d tree's sort, the r-tree's per-edge inserts); force a
	// collection now so the resident set reflects steady-state usage
	// instead of the allocator's high-water mark.
	runtime.GC()
	debug.FreeOSMemory()

	log.Printf("ready in %s", time.Since(start).Round(time.Millisecond))

	cfg := httpapi.DefaultConfig(fmt.Sprintf(":%d", *port))
	cfg.CORSOrigin = *corsOrigin

	handlers := httpapi.NewHandlers(map[string]*httpapi.Planner{*profileName: planner})
	srv := httpapi.NewServer(cfg, handlers)

	if err := srv.ListenAndServe(); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}
