package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/swipe"
)

type fakeState struct {
	snap gesture.Snapshot
}

func (f *fakeState) Snapshot() gesture.Snapshot { return f.snap }

type fakeStats struct {
	stats swipe.Stats
}

func (f *fakeStats) Stats() swipe.Stats { return f.stats }

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	srv := New(Config{
		Store: st,
		State: &fakeState{snap: gesture.Snapshot{Gesture: "open", Mode: "rotation", RotationZone: 2}},
		Stats: &fakeStats{stats: swipe.Stats{Confirmed: 3, Filtered: 1}},
	})
	return srv, st
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHealthMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestState(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var snap gesture.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if snap.Gesture != "open" || snap.Mode != "rotation" || snap.RotationZone != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["swipesConfirmed"] != float64(3) {
		t.Errorf("swipesConfirmed = %v, want 3", body["swipesConfirmed"])
	}
	if body["swipeState"] != "idle" {
		t.Errorf("swipeState = %v, want idle", body["swipeState"])
	}
}

func TestProfileLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	// Save.
	req := httptest.NewRequest(http.MethodPut, "/api/profiles/desk", strings.NewReader(`{"RotationMargin":5}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("PUT status = %d, want 204: %s", w.Code, w.Body.String())
	}

	// List.
	req = httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET list status = %d, want 200", w.Code)
	}
	var names []string
	if err := json.Unmarshal(w.Body.Bytes(), &names); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(names) != 1 || names[0] != "desk" {
		t.Fatalf("profiles = %v, want [desk]", names)
	}

	// Get.
	req = httptest.NewRequest(http.MethodGet, "/api/profiles/desk", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"RotationMargin":5}` {
		t.Errorf("profile body = %s", got)
	}

	// Delete.
	req = httptest.NewRequest(http.MethodDelete, "/api/profiles/desk", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/profiles/desk", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", w.Code)
	}
}

func TestProfileRejectsInvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/profiles/bad", strings.NewReader(`not json`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProfileRejectsNestedName(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles/a/b", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEmptyProfileListIsJSONArray(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("empty list body = %s, want []", got)
	}
}

func TestRoutesDisabledWithoutSources(t *testing.T) {
	srv := New(Config{})

	for _, path := range []string{"/api/state", "/api/stats", "/api/profiles"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d without a source, want 404", path, w.Code)
		}
	}
}
