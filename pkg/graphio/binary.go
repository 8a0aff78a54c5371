// Package graphio persists a pkg/graph.Graph to and from a compact binary
// format, so preprocessing (parse OSM, build the graph, lower turn
// restrictions, extract the largest component) only has to run once per
// OSM extract; the query server just loads the result.
package graphio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/azybler/map_router/pkg/graph"
	"github.com/azybler/map_router/pkg/routeerr"
)

const (
	magicBytes = "RXGRAPH1"
	version    = uint32(1)
	maxNodes   = 50_000_000
	maxEdges   = 200_000_000
)

type fileHeader struct {
	Magic    [8]byte
	Version  uint32
	NumNodes uint32
	NumEdges uint32
}

// Write serializes g to path, via a temp file and atomic rename so a
// crash or a concurrent reader never observes a half-written graph.
func Write(path string, g *graph.Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return &routeerr.IoError{Op: "create graph file", Err: err}
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	bw := bufio.NewWriter(f)
	cw := &crc32Writer{w: bw, hash: crc32.NewIEEE()}

	numEdges := 0
	g.Iter(func(_ graph.Node, edges []graph.Edge) { numEdges += len(edges) })

	hdr := fileHeader{Version: version, NumNodes: uint32(g.Len()), NumEdges: uint32(numEdges)}
	copy(hdr.Magic[:], magicBytes)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return &routeerr.IoError{Op: "write graph header", Err: err}
	}

	var writeErr error
	g.Iter(func(n graph.Node, edges []graph.Edge) {
		if writeErr != nil {
			return
		}
		rec := nodeRecord{Id: n.Id, OsmID: n.OsmID, Lat: n.Lat, Lon: n.Lon, NumEdges: uint32(len(edges))}
		if err := binary.Write(cw, binary.LittleEndian, &rec); err != nil {
			writeErr = err
			return
		}
		for _, e := range edges {
			erec := edgeRecord{To: e.To, Cost: e.Cost}
			if err := binary.Write(cw, binary.LittleEndian, &erec); err != nil {
				writeErr = err
				return
			}
		}
	})
	if writeErr != nil {
		return &routeerr.IoError{Op: "write graph nodes", Err: writeErr}
	}

	if err := binary.Write(bw, binary.LittleEndian, cw.hash.Sum32()); err != nil {
		return &routeerr.IoError{Op: "write graph checksum", Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &routeerr.IoError{Op: "flush graph file", Err: err}
	}
	if err := f.Close(); err != nil {
		return &routeerr.IoError{Op: "close graph file", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &routeerr.IoError{Op: "rename graph file", Err: err}
	}
	return nil
}

type nodeRecord struct {
	Id       int64
	OsmID    int64
	Lat      float32
	Lon      float32
	NumEdges uint32
}

type edgeRecord struct {
	To   int64
	Cost float32
}

// Read loads a graph previously written by Write, validating its magic,
// version and trailing CRC32 checksum.
func Read(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &routeerr.IoError{Op: "open graph file", Err: err}
	}
	defer f.Close()

	br := bufio.NewReader(f)
	cr := &crc32Reader{r: br, hash: crc32.NewIEEE()}

	var hdr fileHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return nil, &routeerr.IoError{Op: "read graph header", Err: err}
	}
	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("graphio: bad magic bytes %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("graphio: unsupported version %d", hdr.Version)
	}
	if hdr.NumNodes > maxNodes {
		return nil, fmt.Errorf("graphio: NumNodes %d exceeds limit %d", hdr.NumNodes, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("graphio: NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	g := graph.New()
	for i := uint32(0); i < hdr.NumNodes; i++ {
		var rec nodeRecord
		if err := binary.Read(cr, binary.LittleEndian, &rec); err != nil {
			return nil, &routeerr.IoError{Op: "read graph node", Err: err}
		}
		g.SetNode(graph.Node{Id: rec.Id, OsmID: rec.OsmID, Lat: rec.Lat, Lon: rec.Lon})
		for j := uint32(0); j < rec.NumEdges; j++ {
			var erec edgeRecord
			if err := binary.Read(cr, binary.LittleEndian, &erec); err != nil {
				return nil, &routeerr.IoError{Op: "read graph edge", Err: err}
			}
			// Write visits nodes in ascending id order, so an edge to a
			// higher id arrives before its target's own record. Insert a
			// placeholder node so SetEdge accepts the edge; the target's
			// record overwrites it later, and SetNode keeps its edges.
			if _, ok := g.GetNode(erec.To); !ok {
				g.SetNode(graph.Node{Id: erec.To})
			}
			g.SetEdge(rec.Id, graph.Edge{To: erec.To, Cost: erec.Cost})
		}
	}

	expected := cr.hash.Sum32()
	var stored uint32
	if err := binary.Read(br, binary.LittleEndian, &stored); err != nil {
		return nil, &routeerr.IoError{Op: "read graph checksum", Err: err}
	}
	if stored != expected {
		return nil, fmt.Errorf("graphio: checksum mismatch: stored=%08x computed=%08x", stored, expected)
	}

	return g, nil
}

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
