package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitial(t *testing.T) {
	doc := Initial()

	assert.True(t, doc.Reset)
	assert.NotNil(t, doc.Vertices)
	assert.NotNil(t, doc.Edges)
	assert.Empty(t, doc.Vertices)
	assert.Empty(t, doc.Edges)
}

func TestFingerprintDeterministic(t *testing.T) {
	doc := Document{
		Vertices: []Vertex{{Name: "A"}, {Name: "B"}},
		Edges:    []Edge{{From: "A", To: "B"}},
	}

	fp1, err := Fingerprint(doc)
	require.NoError(t, err)
	fp2, err := Fingerprint(doc)
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 32)
}

func TestFingerprintIgnoresResetFlag(t *testing.T) {
	doc := Document{
		Vertices: []Vertex{{Name: "A"}},
		Edges:    []Edge{},
	}

	doc.Reset = true
	fp1, err := Fingerprint(doc)
	require.NoError(t, err)

	doc.Reset = false
	fp2, err := Fingerprint(doc)
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	doc := Document{
		Vertices: []Vertex{{Name: "A"}},
		Edges:    []Edge{},
	}

	fp1, err := Fingerprint(doc)
	require.NoError(t, err)

	doc.Vertices = append(doc.Vertices, Vertex{Name: "B"})
	fp2, err := Fingerprint(doc)
	require.NoError(t, err)

	assert.NotEqual(t, fp1, fp2)
}
