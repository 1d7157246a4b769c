// Package graph defines the persisted graph document and its content
// fingerprint.
package graph

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
)

// Vertex is a named node. Names are used for edge matching; the store does
// not enforce uniqueness (duplicate names bind to the first occurrence at
// render time).
type Vertex struct {
	Name string `json:"name"`
}

// Edge connects two vertices by name. Endpoints are not validated against
// the vertex list; unresolved endpoints are skipped at render time.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Document is the persisted graph state. It is always written as a whole;
// there are no partial updates.
type Document struct {
	Reset    bool     `json:"reset"`
	Vertices []Vertex `json:"vertices"`
	Edges    []Edge   `json:"edges"`
}

// Initial returns the empty document used to seed a new storage directory
// and to reset an existing one. Slices are non-nil so the JSON encoding
// always carries "[]" rather than "null".
func Initial() Document {
	return Document{
		Reset:    true,
		Vertices: []Vertex{},
		Edges:    []Edge{},
	}
}

// Fingerprint returns the hex md5 of the canonical JSON encoding of doc.
// Reset is normalized to false before hashing so that toggling the flag
// alone never invalidates the render cache. Field order is fixed by the
// struct definition, so the encoding is deterministic.
func Fingerprint(doc Document) (string, error) {
	doc.Reset = false
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return fmt.Sprintf("%x", md5.Sum(b)), nil
}
