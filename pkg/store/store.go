// Package store persists the graph document, its render fingerprint, and
// the latest-image pointer in a single storage directory.
//
// The document file is the sole source of truth between requests and is
// always rewritten whole. The fingerprint sidecar mirrors the last rendered
// fingerprint so cache decisions survive restarts. All read-modify-write
// cycles are serialized behind one mutex; this is a single-process store
// with no cross-process locking.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dhikaid/graphview/pkg/graph"
)

// File names within the storage directory.
const (
	DocumentFile    = "edges.json"
	FingerprintFile = "edges_hash.txt"
)

// ErrInvalidInput marks validation failures (empty vertex name or edge
// endpoint). Callers map it to HTTP 400.
var ErrInvalidInput = errors.New("invalid input")

// Store is a file-backed graph document store.
type Store struct {
	mu sync.Mutex

	docPath         string
	fingerprintPath string

	// lastFingerprint is the fingerprint of the last rendered document,
	// loaded from the sidecar at Open and updated together with it.
	lastFingerprint string
}

// Open prepares the storage directory, seeding the document file and the
// fingerprint sidecar with the initial empty document when missing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %q: %w", dir, err)
	}

	s := &Store{
		docPath:         filepath.Join(dir, DocumentFile),
		fingerprintPath: filepath.Join(dir, FingerprintFile),
	}

	if _, err := os.Stat(s.docPath); errors.Is(err, os.ErrNotExist) {
		if err := s.writeDocument(graph.Initial()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", s.docPath, err)
	}

	fp, err := os.ReadFile(s.fingerprintPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		initial, err := graph.Fingerprint(graph.Initial())
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(s.fingerprintPath, []byte(initial), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write fingerprint sidecar: %w", err)
		}
		s.lastFingerprint = initial
	case err != nil:
		return nil, fmt.Errorf("failed to read fingerprint sidecar: %w", err)
	default:
		s.lastFingerprint = string(fp)
	}

	return s, nil
}

// Load reads the persisted document.
func (s *Store) Load() (graph.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDocument()
}

// Save overwrites the persisted document.
func (s *Store) Save(doc graph.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(doc)
}

// AddVertex appends a named vertex and persists the document. The name is
// not checked for uniqueness.
func (s *Store) AddVertex(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	doc.Vertices = append(doc.Vertices, graph.Vertex{Name: name})
	return s.writeDocument(doc)
}

// AddEdge appends an edge and persists the document. Endpoints are not
// checked against the vertex list; unresolved edges are skipped at render
// time instead.
func (s *Store) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	doc.Edges = append(doc.Edges, graph.Edge{From: from, To: to})
	return s.writeDocument(doc)
}

// Reset replaces the document with the initial empty state and refreshes
// the fingerprint sidecar in the same critical section. Deleting rendered
// images is the caller's responsibility.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	initial := graph.Initial()
	if err := s.writeDocument(initial); err != nil {
		return err
	}

	fp, err := graph.Fingerprint(initial)
	if err != nil {
		return err
	}
	return s.commitFingerprint(fp)
}

// Changed reports whether doc differs from the last rendered state,
// returning the fingerprint either way.
func (s *Store) Changed(doc graph.Document) (string, bool, error) {
	fp, err := graph.Fingerprint(doc)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fp, fp != s.lastFingerprint, nil
}

// CommitRender records fp as the last rendered fingerprint, updating the
// in-memory value and the sidecar together so they cannot drift.
func (s *Store) CommitRender(fp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitFingerprint(fp)
}

// LastFingerprint returns the fingerprint of the last rendered document.
func (s *Store) LastFingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFingerprint
}

func (s *Store) commitFingerprint(fp string) error {
	if err := os.WriteFile(s.fingerprintPath, []byte(fp), 0o644); err != nil {
		return fmt.Errorf("failed to write fingerprint sidecar: %w", err)
	}
	s.lastFingerprint = fp
	return nil
}

func (s *Store) readDocument() (graph.Document, error) {
	b, err := os.ReadFile(s.docPath)
	if err != nil {
		return graph.Document{}, fmt.Errorf("failed to read document %q: %w", s.docPath, err)
	}

	var doc graph.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return graph.Document{}, fmt.Errorf("failed to parse document %q: %w", s.docPath, err)
	}
	return doc, nil
}

func (s *Store) writeDocument(doc graph.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.WriteFile(s.docPath, b, 0o644); err != nil {
		return fmt.Errorf("failed to write document %q: %w", s.docPath, err)
	}
	return nil
}
