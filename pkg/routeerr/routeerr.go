// Package routeerr defines the error taxonomy shared by the graph
// builder, the A* search and the OSM source readers. Callers are expected
// to use errors.As/errors.Is against these types rather than string
// matching.
package routeerr

import "fmt"

// DefaultStepLimit bounds how many nodes an A* search will pop from its
// frontier before giving up. It exists to turn a disconnected or
// pathologically large query into a bounded failure instead of an
// unbounded scan.
const DefaultStepLimit = 1_000_000

// InvalidReference means a node id passed to the search (typically a
// start or end node) does not exist in the graph.
type InvalidReference struct {
	NodeID int64
}

func (e *InvalidReference) Error() string {
	return fmt.Sprintf("routeerr: node %d does not exist in the graph", e.NodeID)
}

// StepLimitExceeded means the search exhausted its step budget before
// reaching the destination. It does not mean no route exists.
type StepLimitExceeded struct {
	Limit int
}

func (e *StepLimitExceeded) Error() string {
	return fmt.Sprintf("routeerr: step limit of %d exceeded before reaching destination", e.Limit)
}

// UnknownFileFormat means the byte-sniffing in pkg/osmsource could not
// identify the input as XML, gzip, bzip2 or PBF.
type UnknownFileFormat struct{}

func (e *UnknownFileFormat) Error() string {
	return "routeerr: unrecognized OSM file format"
}

// UnsupportedCompression means a PBF blob declared a compression scheme
// this reader does not implement.
type UnsupportedCompression struct {
	Scheme string
}

func (e *UnsupportedCompression) Error() string {
	return fmt.Sprintf("routeerr: unsupported PBF blob compression %q", e.Scheme)
}

// UnsupportedFeatures means a PBF file's required_features list named a
// feature this reader does not implement (e.g. a future extension).
type UnsupportedFeatures struct {
	Features []string
}

func (e *UnsupportedFeatures) Error() string {
	return fmt.Sprintf("routeerr: PBF file requires unsupported features %v", e.Features)
}

// BlobTooLarge means a PBF blob declared a size over the format's own
// sanity limit, most likely a corrupt or truncated file.
type BlobTooLarge struct {
	Size int
}

func (e *BlobTooLarge) Error() string {
	return fmt.Sprintf("routeerr: PBF blob size %d exceeds the maximum allowed", e.Size)
}

// BlobHeaderTooLarge is BlobTooLarge's counterpart for the small header
// that precedes each blob.
type BlobHeaderTooLarge struct {
	Size int
}

func (e *BlobHeaderTooLarge) Error() string {
	return fmt.Sprintf("routeerr: PBF blob header size %d exceeds the maximum allowed", e.Size)
}

// UnexpectedBlobHeaderType means a blob's type tag didn't match what was
// expected at that point in the stream (e.g. a OSMData blob appearing
// before the OSMHeader blob).
type UnexpectedBlobHeaderType struct {
	Got, Want string
}

func (e *UnexpectedBlobHeaderType) Error() string {
	return fmt.Sprintf("routeerr: unexpected PBF blob type %q, want %q", e.Got, e.Want)
}

// ParseError wraps an underlying parse failure from an XML or PBF reader
// with the source format that produced it.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("routeerr: %s parse error: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IoError wraps an underlying I/O failure (reading the OSM source,
// writing or reading a persisted graph).
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("routeerr: %s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }
