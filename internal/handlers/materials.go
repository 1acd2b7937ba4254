package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/ria/internal/dispersion"
	"github.com/lehigh-university-libraries/ria/internal/store"
)

// MaterialSummary is one entry of the material list. The *Key fields are the
// parts of the composite key, the others their display names.
type MaterialSummary struct {
	Key      string `json:"key"`
	ShelfKey string `json:"shelf_key"`
	BookKey  string `json:"book_key"`
	PageKey  string `json:"page_key"`
	Shelf    string `json:"shelf"`
	Book     string `json:"book"`
	Page     string `json:"page"`
}

// MaterialDetail is a stored item together with its key.
type MaterialDetail struct {
	Key string `json:"key"`
	store.Item
}

// IndexResult is the refractive index of a material at one wavelength.
type IndexResult struct {
	Key        string   `json:"key"`
	Wavelength float64  `json:"wavelength"`
	N          *float64 `json:"n,omitempty"`
	K          *float64 `json:"k,omitempty"`
	NError     string   `json:"n_error,omitempty"`
	KError     string   `json:"k_error,omitempty"`
}

// HandleMaterials lists stored materials, optionally filtered by ?prefix=.
func (h *Handler) HandleMaterials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		prefix := r.URL.Query().Get("prefix")
		materials := []MaterialSummary{}
		for _, key := range h.store.SortedKeys() {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			item, ok := h.store.Get(key)
			if !ok {
				continue
			}
			shelfKey, bookKey, pageKey, _ := store.SplitKey(key)
			materials = append(materials, MaterialSummary{
				Key:      key,
				ShelfKey: shelfKey,
				BookKey:  bookKey,
				PageKey:  pageKey,
				Shelf:    item.Shelf,
				Book:     item.Book,
				Page:     item.Page,
			})
		}
		h.writeJSON(w, materials)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMaterialDetail serves /api/materials/{key}. The key is everything
// after the prefix, slashes included.
func (h *Handler) HandleMaterialDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/materials/")
	item, ok := h.getItemOrError(w, key)
	if !ok {
		return
	}
	h.writeJSON(w, MaterialDetail{Key: key, Item: item})
}

// HandleMaterialIndex serves /api/index/{key}?wavelength=.
func (h *Handler) HandleMaterialIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/index/")
	item, ok := h.getItemOrError(w, key)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("wavelength")
	wavelength, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.writeError(w, "Invalid wavelength: "+raw, http.StatusBadRequest)
		return
	}

	result := IndexResult{Key: key, Wavelength: wavelength}
	if n, err := item.N(wavelength); err == nil {
		result.N = &n
	} else {
		result.NError = err.Error()
	}
	if k, err := item.K(wavelength); err == nil {
		result.K = &k
	} else if !errors.Is(err, dispersion.ErrNoImaginaryData) {
		result.KError = err.Error()
	}

	if result.N == nil && result.K == nil {
		h.writeError(w, "Unable to evaluate material: "+result.NError, http.StatusUnprocessableEntity)
		return
	}
	h.writeJSON(w, result)
}
