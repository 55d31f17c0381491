package httphandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dispulse/sitecontent/internal/domain/model"
)

// ListContent returns every persisted entry.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.content.ListAll(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = model.ContentMap{}
	}
	writeJSON(w, http.StatusOK, ContentResponse{Entries: entries})
}

// SeedContent inserts the submitted entries whose keys are absent. Existing
// keys are never overwritten. No authentication is required.
func (h *Handler) SeedContent(w http.ResponseWriter, r *http.Request) {
	var req SeedRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, err)
		return
	}

	raw := bytes.TrimSpace(req.Entries)
	if len(raw) == 0 || raw[0] != '{' {
		writeError(w, http.StatusBadRequest, "Entries required")
		return
	}

	// Pointers distinguish a null value, which must be rejected, from "".
	var submitted map[string]*string
	if err := json.Unmarshal(raw, &submitted); err != nil {
		writeError(w, http.StatusBadRequest, "Entry values must be strings")
		return
	}
	entries := make(model.ContentMap, len(submitted))
	for k, v := range submitted {
		if v == nil {
			writeError(w, http.StatusBadRequest, "Entry values must be strings")
			return
		}
		entries[k] = *v
	}

	n, err := h.content.SeedMissing(r.Context(), entries)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.metrics.IncContentWrite("seed")
	writeJSON(w, http.StatusOK, SeedResponse{Inserted: n})
}

// PutContent creates or overwrites one entry. The route is authenticated.
func (h *Handler) PutContent(w http.ResponseWriter, r *http.Request) {
	key, err := contentKey(r)
	if err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "Key required")
		return
	}

	var req PutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeDecodeError(w, err)
		return
	}

	var value string
	raw := bytes.TrimSpace(req.Value)
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &value) != nil {
		writeError(w, http.StatusBadRequest, "Value must be a string")
		return
	}

	entry, err := h.content.Put(r.Context(), key, value)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.metrics.IncContentWrite("put")
	writeJSON(w, http.StatusOK, PutResponse{Key: entry.Key, Value: entry.Value})
}

// contentKey returns the decoded {key} path segment. chi reads params from
// the raw path when one is set, so escaped keys are unescaped here.
func contentKey(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key, nil
	}
	return url.PathUnescape(key)
}

// Health reports that the process is serving.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
