// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/talentradar/talentradar/internal/adapters/repository"
)

// CountriesDependencies defines the interface for country reads.
type CountriesDependencies interface {
	ByCountry(ctx context.Context, country string) ([]repository.Entry, error)
	Countries(ctx context.Context) ([]string, int)
}

// CountriesHandler handles country listing and per-country leaderboards.
type CountriesHandler struct {
	deps CountriesDependencies
}

// NewCountriesHandler creates a new countries handler.
func NewCountriesHandler(deps CountriesDependencies) *CountriesHandler {
	return &CountriesHandler{deps: deps}
}

type countriesResponse struct {
	Countries    []string `json:"countries"`
	UnknownCount int      `json:"unknown_count"`
}

// HandleListCountries handles GET /countries requests.
func (h *CountriesHandler) HandleListCountries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	countries, unknown := h.deps.Countries(r.Context())
	if countries == nil {
		countries = []string{}
	}
	writeJSON(w, http.StatusOK, countriesResponse{Countries: countries, UnknownCount: unknown})
}

// HandleGetCountry handles GET /countries/{country} requests.
func (h *CountriesHandler) HandleGetCountry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	country := strings.TrimPrefix(r.URL.Path, "/countries/")
	if country == "" || strings.Contains(country, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	entries, err := h.deps.ByCountry(r.Context(), country)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []repository.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
