package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"cyleria_watcher/models"
	"cyleria_watcher/scraper"
	"cyleria_watcher/storage"
)

type staticListings struct {
	listings []models.Listing
}

func (s *staticListings) FetchListing(context.Context) ([]models.Listing, error) {
	return s.listings, nil
}

type noLogins struct{}

func (noLogins) FetchLastLogin(context.Context, string) (*time.Time, error) {
	return nil, nil
}

func newTestServer(t *testing.T, store storage.Store, listings []models.Listing) *Server {
	t.Helper()
	pipeline := scraper.NewPipeline(&staticListings{listings: listings}, noLogins{}, store)
	return New(store, pipeline)
}

func TestHandleHouses(t *testing.T) {
	store := storage.NewMemoryStore()
	houses := []models.House{
		{Name: "Red Manor", City: "Ankardia", Status: models.StatusInactive, Available: models.AvailableNow},
		{Name: "Blue Cottage", City: "Cyleria City", Status: models.StatusActive, Available: "21.05.2026 13:30"},
		{Name: "Sea Shack", City: "Ankardia", Status: models.StatusInactive, Available: models.AvailableUnknown},
	}
	if err := store.ReplaceHouses(context.Background(), houses, time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	srv := newTestServer(t, store, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/houses", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data     []models.House `json:"data"`
		Cities   []string       `json:"cities"`
		Statuses []string       `json:"statuses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}

	if len(resp.Data) != 3 {
		t.Fatalf("expected 3 houses, got %d", len(resp.Data))
	}
	if want := []string{"Ankardia", "Cyleria City"}; !reflect.DeepEqual(resp.Cities, want) {
		t.Fatalf("expected sorted distinct cities %v, got %v", want, resp.Cities)
	}
	if want := []string{"Aktywny", "Nieaktywny"}; !reflect.DeepEqual(resp.Statuses, want) {
		t.Fatalf("unexpected statuses %v", resp.Statuses)
	}
}

func TestHandleHouses_Empty(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(), nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/houses", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if string(resp["data"]) != "[]" {
		t.Fatalf("empty store should serialize as [], got %s", resp["data"])
	}
}

func TestHandleRefresh(t *testing.T) {
	store := storage.NewMemoryStore()
	srv := newTestServer(t, store, []models.Listing{
		{Name: "New House", City: "Ankardia", Owner: "None"},
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// the response only returns after the new snapshot is committed
	houses, _ := store.ListHouses(context.Background())
	if len(houses) != 1 || houses[0].Name != "New House" {
		t.Fatalf("refresh should have replaced the store, got %+v", houses)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, storage.NewMemoryStore(), nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
