package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dhikaid/graphview/pkg/gallery"
	"github.com/dhikaid/graphview/pkg/graph"
	"github.com/dhikaid/graphview/pkg/render"
	"github.com/dhikaid/graphview/pkg/serializers"
	"github.com/dhikaid/graphview/pkg/store"
)

// graphRequest is the optional /graph body. Pointer fields distinguish
// "absent" from "empty" so a body missing either list is rejected.
type graphRequest struct {
	Vertices *[]graph.Vertex `json:"vertices"`
	Edges    *[]graph.Edge   `json:"edges"`
}

// latestImageResponse mirrors the original response shape; all fields are
// null when no image exists.
type latestImageResponse struct {
	ImageURL   *string `json:"imageUrl"`
	ImagePath  *string `json:"imagePath"`
	LastUpdate *string `json:"lastUpdate"`
}

func toLatestResponse(img *gallery.Image) latestImageResponse {
	if img == nil {
		return latestImageResponse{}
	}
	return latestImageResponse{
		ImageURL:   &img.URL,
		ImagePath:  &img.Path,
		LastUpdate: &img.LastUpdate,
	}
}

// handleGraph renders the graph document as a PNG. A body carrying both
// vertices and edges replaces the persisted document; an empty body renders
// the persisted state. With caching enabled, an unchanged fingerprint
// short-circuits to a JSON description of the latest stored image.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgVerticesEdgesRequired)
		return
	}

	var doc graph.Document
	if len(body) > 0 {
		var req graphRequest
		if err := json.Unmarshal(body, &req); err != nil || req.Vertices == nil || req.Edges == nil {
			writeError(w, http.StatusBadRequest, msgVerticesEdgesRequired)
			return
		}
		doc = graph.Document{Vertices: *req.Vertices, Edges: *req.Edges}
	} else {
		doc, err = s.store.Load()
		if err != nil {
			slog.Error("failed to load document", "error", err)
			writeError(w, http.StatusInternalServerError, msgErrReadingDocument)
			return
		}
	}
	doc.Reset = false

	fp, changed, err := s.store.Changed(doc)
	if err != nil {
		slog.Error("failed to fingerprint document", "error", err)
		writeError(w, http.StatusInternalServerError, msgErrReadingDocument)
		return
	}

	if s.config.Options.EnableCaching && !changed {
		cacheHitsTotal.Inc()
		s.respondLatest(w)
		return
	}

	if err := s.store.Save(doc); err != nil {
		slog.Error("failed to persist document", "error", err)
		writeError(w, http.StatusInternalServerError, msgErrWritingDocument)
		return
	}

	start := time.Now()
	img := render.Render(doc, s.renderOpts)

	var buf bytes.Buffer
	if err := img.EncodePNG(&buf); err != nil {
		slog.Error("failed to encode image", "error", err)
		writeError(w, http.StatusInternalServerError, msgErrRendering)
		return
	}
	renderDuration.Observe(time.Since(start).Seconds())
	rendersTotal.Inc()

	name := gallery.FileName(time.Now())
	path := filepath.Join(s.config.StorageDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		// The response still carries the encoded bytes; only the stored
		// copy is lost.
		slog.Warn("failed to store image", "path", path, "error", err)
	} else {
		if err := s.gallery.SetLatest(name); err != nil {
			slog.Warn("failed to update latest pointer", "error", err)
		}
		slog.Info("image saved", "path", path)
	}

	if err := s.store.CommitRender(fp); err != nil {
		slog.Warn("failed to commit render fingerprint", "error", err)
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Debug("failed to stream image", "error", err)
	}
}

// handleLatestImage describes the most recently rendered image.
func (s *Server) handleLatestImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}
	s.respondLatest(w)
}

func (s *Server) respondLatest(w http.ResponseWriter) {
	img, err := s.gallery.Latest()
	if err != nil {
		slog.Error("failed to pick latest image", "error", err)
		writeError(w, http.StatusInternalServerError, msgErrStorageFolder)
		return
	}
	serializers.RespondJSON(w, http.StatusOK, toLatestResponse(img))
}

// handleAddVertex appends a named vertex to the persisted document.
func (s *Server) handleAddVertex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, msgNameRequired)
		return
	}

	if err := s.store.AddVertex(req.Name); err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, msgNameRequired)
			return
		}
		slog.Error("failed to add vertex", "error", err)
		writeError(w, http.StatusInternalServerError, msgErrWritingDocument)
		return
	}

	serializers.RespondText(w, http.StatusOK, fmt.Sprintf(msgVertexAdded, clientIP(r)))
}

// handleAddEdge appends an edge to the persisted document. Endpoints are
// not validated against the vertex list.
func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, msgFromToRequired)
		return
	}

	if err := s.store.AddEdge(req.From, req.To); err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, msgFromToRequired)
			return
		}
		slog.Error("failed to add edge", "error", err)
		writeError(w, http.StatusInternalServerError, msgErrWritingDocument)
		return
	}

	serializers.RespondText(w, http.StatusOK, msgEdgeAdded)
}

// handleReset reverts the document to its initial state and removes every
// rendered image.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	if err := s.store.Reset(); err != nil {
		slog.Error("failed to reset document", "error", err)
		writeError(w, http.StatusInternalServerError, msgErrResetDocument)
		return
	}

	if err := s.gallery.Clear(); err != nil {
		slog.Error("failed to clear storage folder", "error", err)
		writeError(w, http.StatusInternalServerError, msgErrStorageFolder)
		return
	}

	serializers.RespondText(w, http.StatusOK, msgResetDone)
}

// handleIndex serves the bundled HTML page at the root path and a 404 for
// anything else the mux routed here.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// readBody drains the request body, tolerating an absent one.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return bytes.TrimSpace(b), nil
}
