package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhikaid/graphview/pkg/graph"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestOpenSeedsInitialState(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.True(t, doc.Reset)
	assert.Empty(t, doc.Vertices)
	assert.Empty(t, doc.Edges)

	// Both files exist on disk after Open.
	_, err = os.Stat(filepath.Join(dir, DocumentFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, FingerprintFile))
	assert.NoError(t, err)

	initial, err := graph.Fingerprint(graph.Initial())
	require.NoError(t, err)
	assert.Equal(t, initial, s.LastFingerprint())
}

func TestOpenLoadsExistingFingerprint(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FingerprintFile), []byte("abc123"), 0o644))

	s, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc123", s.LastFingerprint())
}

func TestAddVertex(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.AddVertex("A"))
	require.NoError(t, s.AddVertex("B"))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []graph.Vertex{{Name: "A"}, {Name: "B"}}, doc.Vertices)
}

func TestAddVertexEmptyName(t *testing.T) {
	s := newStore(t)

	err := s.AddVertex("")
	require.ErrorIs(t, err, ErrInvalidInput)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Vertices, "document must be unchanged after a rejected mutation")
}

func TestAddEdge(t *testing.T) {
	s := newStore(t)

	// Endpoints need not reference existing vertices.
	require.NoError(t, s.AddEdge("A", "B"))

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []graph.Edge{{From: "A", To: "B"}}, doc.Edges)
}

func TestAddEdgeMissingEndpoint(t *testing.T) {
	s := newStore(t)

	assert.ErrorIs(t, s.AddEdge("", "B"), ErrInvalidInput)
	assert.ErrorIs(t, s.AddEdge("A", ""), ErrInvalidInput)
}

func TestChangedAndCommitRender(t *testing.T) {
	s := newStore(t)

	doc, err := s.Load()
	require.NoError(t, err)
	doc.Reset = false

	// Fresh store: initial document matches the seeded fingerprint.
	_, changed, err := s.Changed(doc)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, s.AddVertex("A"))
	doc, err = s.Load()
	require.NoError(t, err)

	fp, changed, err := s.Changed(doc)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, s.CommitRender(fp))
	assert.Equal(t, fp, s.LastFingerprint())

	_, changed, err = s.Changed(doc)
	require.NoError(t, err)
	assert.False(t, changed, "committed fingerprint must produce a cache hit")
}

func TestCommitRenderPersistsSidecar(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.CommitRender("deadbeef"))

	// A reopened store sees the committed fingerprint.
	s2, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", s2.LastFingerprint())
}

func TestReset(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.AddVertex("A"))
	require.NoError(t, s.AddEdge("A", "B"))
	require.NoError(t, s.CommitRender("stale"))

	require.NoError(t, s.Reset())

	doc, err := s.Load()
	require.NoError(t, err)
	assert.True(t, doc.Reset)
	assert.Empty(t, doc.Vertices)
	assert.Empty(t, doc.Edges)

	initial, err := graph.Fingerprint(graph.Initial())
	require.NoError(t, err)
	assert.Equal(t, initial, s.LastFingerprint())
}
