package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/ria/internal/dispersion"
	"github.com/lehigh-university-libraries/ria/internal/store"
)

func testHandler() *Handler {
	s := store.New()
	s.Insert("glass:BK7:SCHOTT", store.Item{
		Shelf: "GLASS",
		Book:  "N-BK7",
		Page:  "SCHOTT",
		Data: []dispersion.Data{
			dispersion.NewFormula(dispersion.Formula2, dispersion.Range{0.3, 2.5},
				[]float64{0, 1.03961212, 0.00600069867, 0.231792344, 0.0200179144, 1.01046945, 103.560653}),
		},
	})
	s.Insert("main:Ag:Johnson", store.Item{
		Shelf: "MAIN",
		Book:  "Ag",
		Page:  "Johnson",
		Data: []dispersion.Data{
			dispersion.NewTabulatedNK([][3]float64{{0.1879, 1.07, 1.212}, {0.1916, 1.10, 1.232}}),
		},
	})
	return New(s)
}

func TestHandleMaterials(t *testing.T) {
	h := testHandler()

	tests := []struct {
		name     string
		method   string
		url      string
		code     int
		expected []string
	}{
		{name: "all", method: "GET", url: "/api/materials", code: http.StatusOK, expected: []string{"glass:BK7:SCHOTT", "main:Ag:Johnson"}},
		{name: "prefix", method: "GET", url: "/api/materials?prefix=main:", code: http.StatusOK, expected: []string{"main:Ag:Johnson"}},
		{name: "no match", method: "GET", url: "/api/materials?prefix=other", code: http.StatusOK, expected: []string{}},
		{name: "post", method: "POST", url: "/api/materials", code: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleMaterials(rec, httptest.NewRequest(tt.method, tt.url, nil))

			if rec.Code != tt.code {
				t.Fatalf("Expected status %d, got %d", tt.code, rec.Code)
			}
			if tt.expected == nil {
				return
			}

			var materials []MaterialSummary
			if err := json.Unmarshal(rec.Body.Bytes(), &materials); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			keys := []string{}
			for _, m := range materials {
				keys = append(keys, m.Key)
			}
			if len(keys) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, keys)
			}
			for i := range keys {
				if keys[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, keys)
				}
			}
		})
	}
}

func TestHandleMaterialDetail(t *testing.T) {
	h := testHandler()

	rec := httptest.NewRecorder()
	h.HandleMaterialDetail(rec, httptest.NewRequest("GET", "/api/materials/glass:BK7:SCHOTT", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var detail MaterialDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if detail.Key != "glass:BK7:SCHOTT" || detail.Book != "N-BK7" || len(detail.Data) != 1 {
		t.Errorf("Unexpected detail: %+v", detail)
	}

	rec = httptest.NewRecorder()
	h.HandleMaterialDetail(rec, httptest.NewRequest("GET", "/api/materials/glass:BK7:Nobody", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleMaterialDetail(rec, httptest.NewRequest("DELETE", "/api/materials/glass:BK7:SCHOTT", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHandleMaterialIndex(t *testing.T) {
	h := testHandler()

	tests := []struct {
		name string
		url  string
		code int
	}{
		{name: "in range", url: "/api/index/glass:BK7:SCHOTT?wavelength=0.5876", code: http.StatusOK},
		{name: "out of range", url: "/api/index/glass:BK7:SCHOTT?wavelength=3", code: http.StatusUnprocessableEntity},
		{name: "bad wavelength", url: "/api/index/glass:BK7:SCHOTT?wavelength=abc", code: http.StatusBadRequest},
		{name: "missing wavelength", url: "/api/index/glass:BK7:SCHOTT", code: http.StatusBadRequest},
		{name: "tabulated", url: "/api/index/main:Ag:Johnson?wavelength=0.19", code: http.StatusUnprocessableEntity},
		{name: "unknown key", url: "/api/index/main:Au:Nobody?wavelength=0.5", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleMaterialIndex(rec, httptest.NewRequest("GET", tt.url, nil))
			if rec.Code != tt.code {
				t.Fatalf("Expected status %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}

	rec := httptest.NewRecorder()
	h.HandleMaterialIndex(rec, httptest.NewRequest("GET", "/api/index/glass:BK7:SCHOTT?wavelength=0.5876", nil))

	var result IndexResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if result.N == nil || *result.N < 1.5167 || *result.N > 1.5169 {
		t.Errorf("Unexpected n: %+v", result)
	}
	if result.K != nil || result.KError != "" {
		t.Errorf("Expected no k for a formula material, got %+v", result)
	}
}

func TestHandleMaterialsKeyParts(t *testing.T) {
	h := testHandler()

	rec := httptest.NewRecorder()
	h.HandleMaterials(rec, httptest.NewRequest("GET", "/api/materials?prefix=glass:", nil))

	var materials []MaterialSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &materials); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(materials) != 1 {
		t.Fatalf("Expected 1 material, got %d", len(materials))
	}
	m := materials[0]
	if m.ShelfKey != "glass" || m.BookKey != "BK7" || m.PageKey != "SCHOTT" {
		t.Errorf("Unexpected key parts: %+v", m)
	}
	if m.Book != "N-BK7" {
		t.Errorf("Expected book name N-BK7, got %s", m.Book)
	}
}

func TestPageKeyEndingInIndex(t *testing.T) {
	h := testHandler()
	bk7, _ := h.store.Get("glass:BK7:SCHOTT")
	h.store.Insert("glass:BK7:SCHOTT/index", bk7)

	rec := httptest.NewRecorder()
	h.HandleMaterialDetail(rec, httptest.NewRequest("GET", "/api/materials/glass:BK7:SCHOTT/index", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var detail MaterialDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if detail.Key != "glass:BK7:SCHOTT/index" {
		t.Errorf("Expected detail of the /index page, got %s", detail.Key)
	}

	rec = httptest.NewRecorder()
	h.HandleMaterialIndex(rec, httptest.NewRequest("GET", "/api/index/glass:BK7:SCHOTT/index?wavelength=0.5876", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for index of the /index page, got %d", rec.Code)
	}
}
