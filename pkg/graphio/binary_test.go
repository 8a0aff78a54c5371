package graphio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/azybler/map_router/pkg/graph"
)

func sampleGraph() *graph.Graph {
	g := graph.New()
	g.SetNode(graph.Node{Id: 1, OsmID: 1, Lat: 52.1, Lon: 21.0})
	g.SetNode(graph.Node{Id: 2, OsmID: 2, Lat: 52.2, Lon: 21.1})
	g.SetNode(graph.Node{Id: 3, OsmID: 1, Lat: 52.1, Lon: 21.0}) // phantom
	g.SetEdge(1, graph.Edge{To: 2, Cost: 12.5})
	g.SetEdge(2, graph.Edge{To: 1, Cost: 12.5})
	g.SetEdge(3, graph.Edge{To: 2, Cost: 12.5})
	return g
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.bin")
	want := sampleGraph()

	if err := Write(path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Len() != want.Len() {
		t.Fatalf("node count: got %d, want %d", got.Len(), want.Len())
	}
	n, ok := got.GetNode(1)
	if !ok || n.Lat != 52.1 || n.Lon != 21.0 {
		t.Fatalf("node 1 round-tripped wrong: %+v", n)
	}
	if c := got.GetEdge(1, 2); c != 12.5 {
		t.Fatalf("edge 1->2 cost: got %v, want 12.5", c)
	}
	if c := got.GetEdge(3, 2); c != 12.5 {
		t.Fatalf("edge 3->2 (phantom) cost: got %v, want 12.5", c)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte("not a graph file at all, just garbage bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Fatalf("expected an error for a non-graph file")
	}
}

func TestReadRejectsCorruptedChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.bin")
	if err := Write(path, sampleGraph()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF // flip the bits of the stored checksum's last byte
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Fatalf("expected a checksum mismatch error")
	}
}

func TestWriteReadEmptyGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	if err := Write(path, graph.New()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected empty graph, got %d nodes", got.Len())
	}
}
