// Package fingerprint computes content-addressed identities for graphs.
//
// Two graphs have the same fingerprint exactly when their snapshot
// documents are equal, regardless of map iteration order or Unicode
// normalization form of names and paths.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/linkgraph/internal/graph"
	"github.com/roach88/linkgraph/internal/snapshot"
)

// Domain prefixes. The version suffix allows changing the encoding later
// without colliding with stored fingerprints.
const (
	DomainGraph  = "linkgraph/graph/v1"
	DomainReport = "linkgraph/report/v1"
)

// hashWithDomain returns hex(SHA256(domain || 0x00 || data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Graph returns the fingerprint of g.
func Graph(g *graph.Graph) (string, error) {
	return Document(snapshot.FromGraph(g))
}

// Document returns the fingerprint of a snapshot document.
func Document(doc *snapshot.Document) (string, error) {
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("fingerprint graph: %w", err)
	}
	return hashWithDomain(DomainGraph, canonical), nil
}

// Value returns the fingerprint of any JSON-serializable value under
// DomainReport. Reports use it to detect unchanged resolutions.
func Value(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint value: %w", err)
	}
	return hashWithDomain(DomainReport, canonical), nil
}

// MustGraph is like Graph but panics on error.
// Use only in tests or when the graph is known to be valid.
func MustGraph(g *graph.Graph) string {
	fp, err := Graph(g)
	if err != nil {
		panic(err)
	}
	return fp
}
