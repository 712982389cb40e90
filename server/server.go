package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"cyleria_watcher/models"
	"cyleria_watcher/scraper"
	"cyleria_watcher/storage"
)

// Server exposes the stored houses as JSON for the listing page and an
// on-demand refresh trigger.
type Server struct {
	store    storage.Store
	pipeline *scraper.Pipeline
}

func New(store storage.Store, pipeline *scraper.Pipeline) *Server {
	return &Server{store: store, pipeline: pipeline}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/houses", s.handleHouses)
	r.Get("/refresh", s.handleRefresh)

	return r
}

type housesResponse struct {
	Data     []models.House `json:"data"`
	Cities   []string       `json:"cities"`
	Statuses []string       `json:"statuses"`
}

func (s *Server) handleHouses(w http.ResponseWriter, r *http.Request) {
	houses, err := s.store.ListHouses(r.Context())
	if err != nil {
		log.Printf("[API] list houses failed: %v", err)
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}

	citySet := make(map[string]bool)
	for _, h := range houses {
		citySet[h.City] = true
	}
	cities := make([]string, 0, len(citySet))
	for c := range citySet {
		cities = append(cities, c)
	}
	sort.Strings(cities)

	if houses == nil {
		houses = []models.House{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(housesResponse{
		Data:     houses,
		Cities:   cities,
		Statuses: []string{string(models.StatusActive), string(models.StatusInactive)},
	})
}

// handleRefresh runs the pipeline synchronously; the response only comes
// back once the store holds the new snapshot.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.RunRefresh(r.Context()); err != nil {
		log.Printf("[API] on-demand refresh failed: %v", err)
		http.Error(w, "refresh failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Odświeżono bazę na żądanie"))
}
