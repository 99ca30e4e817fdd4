package api

import (
	"errors"
	"fmt"
	"net/http"
)

var errBadPath = errors.New("malformed path parameter")

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	cities, err := s.db.Cities(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cities)
}

func (s *Server) handleCuisines(w http.ResponseWriter, r *http.Request) {
	cuisines, err := s.db.Cuisines(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cuisines)
}

func (s *Server) handleByCity(w http.ResponseWriter, r *http.Request) {
	city, err := pathVar(r, "city")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadPath, err))
		return
	}
	names, err := s.db.RestaurantsByCity(r.Context(), city)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleByCuisine(w http.ResponseWriter, r *http.Request) {
	cuisine, err := pathVar(r, "cuisine")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadPath, err))
		return
	}
	names, err := s.db.RestaurantsByCuisine(r.Context(), cuisine)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadPath, err))
		return
	}
	details, err := s.db.Details(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.Counts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
