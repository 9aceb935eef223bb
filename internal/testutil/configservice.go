package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/HerbHall/brandkit/pkg/models"
)

// ConfigService is an in-memory stand-in for the remote config service.
type ConfigService struct {
	Server *httptest.Server

	mu       sync.Mutex
	record   *models.ThemeConfig
	failing  bool
	gets     int
	puts     []models.ThemePatch
	uploads  map[string]int
	authSeen []string
}

// NewConfigService starts a fake service holding record (nil means the
// service has no record yet and GET answers 404).
func NewConfigService(t *testing.T, record *models.ThemeConfig) *ConfigService {
	t.Helper()
	cs := &ConfigService{record: record, uploads: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /app-settings", cs.handleGet)
	mux.HandleFunc("PUT /app-settings", cs.handlePut)
	mux.HandleFunc("POST /app-settings/logo", cs.handleUpload("logo"))
	mux.HandleFunc("POST /app-settings/favicon", cs.handleUpload("favicon"))
	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Server.Close)
	return cs
}

// URL returns the service base URL.
func (cs *ConfigService) URL() string { return cs.Server.URL }

// SetFailing makes every endpoint answer 503 while on is true.
func (cs *ConfigService) SetFailing(on bool) {
	cs.mu.Lock()
	cs.failing = on
	cs.mu.Unlock()
}

// Record returns a copy of the stored record.
func (cs *ConfigService) Record() *models.ThemeConfig {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.record == nil {
		return nil
	}
	r := *cs.record
	return &r
}

// Puts returns the patches received so far.
func (cs *ConfigService) Puts() []models.ThemePatch {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]models.ThemePatch, len(cs.puts))
	copy(out, cs.puts)
	return out
}

// Gets returns how many GET requests were served.
func (cs *ConfigService) Gets() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.gets
}

// Uploads returns how many uploads of kind ("logo" or "favicon") arrived.
func (cs *ConfigService) Uploads(kind string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.uploads[kind]
}

// AuthHeaders returns every Authorization header seen.
func (cs *ConfigService) AuthHeaders() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.authSeen...)
}

func (cs *ConfigService) begin(w http.ResponseWriter, r *http.Request) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.authSeen = append(cs.authSeen, r.Header.Get("Authorization"))
	if cs.failing {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (cs *ConfigService) handleGet(w http.ResponseWriter, r *http.Request) {
	if !cs.begin(w, r) {
		return
	}
	cs.mu.Lock()
	cs.gets++
	rec := cs.record
	cs.mu.Unlock()
	if rec == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, rec)
}

func (cs *ConfigService) handlePut(w http.ResponseWriter, r *http.Request) {
	if !cs.begin(w, r) {
		return
	}
	var patch models.ThemePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	cs.mu.Lock()
	cs.puts = append(cs.puts, patch)
	if cs.record == nil {
		d := models.DefaultTheme()
		d.ID = "remote-1"
		cs.record = &d
	}
	updated := cs.record.Merge(patch)
	cs.record = &updated
	cs.mu.Unlock()
	writeJSON(w, updated)
}

func (cs *ConfigService) handleUpload(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cs.begin(w, r) {
			return
		}
		f, hdr, err := r.FormFile(kind)
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		_, _ = io.Copy(io.Discard, f)
		f.Close()

		cs.mu.Lock()
		cs.uploads[kind]++
		cs.mu.Unlock()

		url := "https://cdn.example.com/" + kind + "/" + hdr.Filename
		body := map[string]string{"message": kind + " uploaded"}
		body[kind+"_url"] = url
		writeJSON(w, body)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
