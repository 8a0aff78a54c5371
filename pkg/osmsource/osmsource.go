// Package osmsource adapts the concrete OSM file formats (plain XML,
// gzip/bzip2-wrapped XML, and PBF) to the builder.Scanner interface
// pkg/builder consumes. The builder doesn't know or care which of these
// produced its features; this package exists so cmd/preprocess and
// cmd/route don't have to know either — they just pass the package a
// *os.File and get a Scanner back.
package osmsource

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"io"
	"runtime"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"github.com/azybler/map_router/pkg/builder"
	"github.com/azybler/map_router/pkg/profile"
	"github.com/azybler/map_router/pkg/routeerr"
)

// Format identifies how an OSM file is encoded on disk.
type Format int

const (
	// Unknown is returned by Detect when none of the sniffing rules match.
	Unknown Format = iota
	Xml
	XmlGz
	XmlBz2
	Pbf
)

// pbfSniffWindow is how many leading bytes Detect peeks at; every rule
// needs at most the first 8.
const pbfSniffWindow = 64

// Detect sniffs the first bytes of r to identify its OSM encoding: an XML
// declaration or root element, gzip's magic bytes, bzip2's "BZh" magic, or
// a PBF file's first BlobHeader, whose type field starts at byte 4 as
// 0x0A 0x09 "OS" (the start of "OSMHeader"). r must
// support Peek (wrap it in bufio.Reader first if it doesn't already
// buffer).
func Detect(r *bufio.Reader) (Format, error) {
	head, err := r.Peek(pbfSniffWindow)
	if err != nil && err != io.EOF {
		return Unknown, err
	}

	switch {
	case bytes.HasPrefix(head, []byte("<?xml")), bytes.HasPrefix(head, []byte("<osm")):
		return Xml, nil
	case len(head) >= 2 && head[0] == 0x1f && head[1] == 0x8b:
		return XmlGz, nil
	case bytes.HasPrefix(head, []byte("BZh")):
		return XmlBz2, nil
	case len(head) >= 8 && bytes.Equal(head[4:8], []byte{0x0a, 0x09, 'O', 'S'}):
		return Pbf, nil
	default:
		return Unknown, &routeerr.UnknownFileFormat{}
	}
}

// Scanner is a builder.Scanner that also owns resources (PBF worker
// goroutines, an open gzip/bzip2 stream) and must be closed once the
// caller is done reading features from it.
type Scanner interface {
	builder.Scanner
	io.Closer
}

// Open detects r's format and returns a Scanner over it. ctx governs the
// PBF path's worker goroutines; it is ignored for the other formats, which
// are read synchronously. The caller must Close the returned Scanner.
func Open(ctx context.Context, r io.Reader) (Scanner, error) {
	br := bufio.NewReader(r)
	format, err := Detect(br)
	if err != nil {
		return nil, err
	}

	switch format {
	case Xml:
		return newXMLScanner(ctx, br)
	case XmlGz:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, &routeerr.ParseError{Format: "xml.gz", Err: err}
		}
		return newXMLScanner(ctx, gz)
	case XmlBz2:
		return newXMLScanner(ctx, bzip2.NewReader(br))
	case Pbf:
		return newPBFScanner(ctx, br)
	default:
		return nil, &routeerr.UnknownFileFormat{}
	}
}

// osmScanner is the shape both osmxml.Scanner and osmpbf.Scanner satisfy.
type osmScanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

// adapter turns any osmScanner into a builder.Scanner, converting each
// decoded osm.Object into the builder's tagged-union Feature.
type adapter struct {
	s osmScanner
	f builder.Feature
}

func newXMLScanner(ctx context.Context, r io.Reader) (Scanner, error) {
	return &adapter{s: osmxml.New(ctx, r)}, nil
}

func newPBFScanner(ctx context.Context, r io.Reader) (Scanner, error) {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &adapter{s: osmpbf.New(ctx, r, workers)}, nil
}

func (a *adapter) Scan() bool {
	for a.s.Scan() {
		if a.convert(a.s.Object()) {
			return true
		}
	}
	return false
}

// convert reports whether obj was one of the three element kinds the
// builder understands; bounds and other PBF header objects are skipped.
func (a *adapter) convert(obj osm.Object) bool {
	switch o := obj.(type) {
	case *osm.Node:
		a.f = builder.Feature{Node: &builder.RawNode{
			ID:   int64(o.ID),
			Lat:  float32(o.Lat),
			Lon:  float32(o.Lon),
			Tags: tagsToMap(o.Tags),
		}}
		return true
	case *osm.Way:
		nodes := make([]int64, len(o.Nodes))
		for i, n := range o.Nodes {
			nodes[i] = int64(n.ID)
		}
		a.f = builder.Feature{Way: &builder.RawWay{
			ID:    int64(o.ID),
			Nodes: nodes,
			Tags:  tagsToMap(o.Tags),
		}}
		return true
	case *osm.Relation:
		members := make([]builder.RelationMember, 0, len(o.Members))
		for _, m := range o.Members {
			ft, ok := memberType(m.Type)
			if !ok {
				continue
			}
			members = append(members, builder.RelationMember{
				Type: ft,
				Ref:  m.Ref,
				Role: m.Role,
			})
		}
		a.f = builder.Feature{Relation: &builder.RawRelation{
			ID:      int64(o.ID),
			Members: members,
			Tags:    tagsToMap(o.Tags),
		}}
		return true
	default:
		return false
	}
}

func memberType(t osm.Type) (builder.FeatureType, bool) {
	switch t {
	case osm.TypeNode:
		return builder.NodeType, true
	case osm.TypeWay:
		return builder.WayType, true
	case osm.TypeRelation:
		return builder.RelationType, true
	default:
		return 0, false
	}
}

func tagsToMap(tags osm.Tags) profile.Tags {
	m := make(profile.Tags, len(tags))
	for _, t := range tags {
		m[t.Key] = t.Value
	}
	return m
}

func (a *adapter) Feature() builder.Feature { return a.f }

func (a *adapter) Err() error {
	if err := a.s.Err(); err != nil {
		return &routeerr.ParseError{Format: "osm", Err: err}
	}
	return nil
}

func (a *adapter) Close() error { return a.s.Close() }
