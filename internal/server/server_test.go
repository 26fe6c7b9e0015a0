package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/gildedrose/internal/auth"
	"github.com/vyrodovalexey/gildedrose/internal/config"
	"github.com/vyrodovalexey/gildedrose/internal/inventory"
	"github.com/vyrodovalexey/gildedrose/internal/model"
	"github.com/vyrodovalexey/gildedrose/internal/shop"
	"github.com/vyrodovalexey/gildedrose/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:      8080,
		ProbePort:       9090,
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		MetricsEnabled:  true,
		CORSOrigins:     []string{"*"},
		AuthMode:        "none",
		WSPingPeriod:    time.Second,
	}
}

type fixture struct {
	server *Server
	shop   *shop.Shop
	store  *store.MemoryStore
}

func newFixture(t *testing.T, cfg *config.Config, authenticator auth.Authenticator) *fixture {
	t.Helper()

	reg := prometheus.NewRegistry()
	itemStore := store.NewMemoryStore()
	s := shop.New(itemStore, zap.NewNop(), shop.NewMetrics(reg))
	if err := s.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	return &fixture{
		server: New(cfg, zap.NewNop(), itemStore, s, authenticator, reg),
		shop:   s,
		store:  itemStore,
	}
}

func serve(t *testing.T, h http.Handler, method, path string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		probePort int
		wantProbe bool
	}{
		{"with probe server", 9090, true},
		{"probe server disabled", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := testConfig()
			cfg.ProbePort = tt.probePort

			// Act
			f := newFixture(t, cfg, nil)

			// Assert
			if f.server.Router() == nil {
				t.Fatal("Router() returned nil")
			}
			if (f.server.ProbeRouter() != nil) != tt.wantProbe {
				t.Errorf("ProbeRouter() present = %v, want %v", f.server.ProbeRouter() != nil, tt.wantProbe)
			}
			if f.server.httpServer.Addr != ":8080" {
				t.Errorf("Addr = %s, want :8080", f.server.httpServer.Addr)
			}
			if f.server.httpServer.ReadHeaderTimeout == 0 {
				t.Error("ReadHeaderTimeout should be set")
			}
		})
	}
}

func TestNew_NilRegistry(t *testing.T) {
	// Act
	srv := New(testConfig(), zap.NewNop(), store.NewMemoryStore(),
		shop.New(store.NewMemoryStore(), zap.NewNop(), nil), nil, nil)

	// Assert
	if srv.registry == nil {
		t.Fatal("registry should default to a fresh registry")
	}
	rec := serve(t, srv.Router(), http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestServer_DayFlow(t *testing.T) {
	// Arrange
	f := newFixture(t, testConfig(), nil)
	router := f.server.Router()

	// Act
	rec := serve(t, router, http.MethodPost, "/api/v1/days", nil, nil)

	// Assert
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/v1/days status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp model.APIResponse[model.DayReport]
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Day != 1 {
		t.Errorf("Day = %d, want 1", resp.Data.Day)
	}

	byName := make(map[string]model.Item)
	for _, item := range resp.Data.Items {
		byName[item.Name] = item
	}
	brie := byName["Aged Brie"]
	if brie.SellIn != 1 || brie.Quality != 1 {
		t.Errorf("Aged Brie = %d/%d, want 1/1", brie.SellIn, brie.Quality)
	}
	if brie.Category != inventory.CategoryAged {
		t.Errorf("Aged Brie category = %s, want %s", brie.Category, inventory.CategoryAged)
	}

	rec = serve(t, router, http.MethodGet, "/api/v1/days", nil, nil)
	var status model.APIResponse[model.DayStatus]
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Data.Day != 1 {
		t.Errorf("current day = %d, want 1", status.Data.Day)
	}
}

func TestServer_StockNewItem(t *testing.T) {
	// Arrange
	f := newFixture(t, testConfig(), nil)
	body := strings.NewReader(`{"name":"Conjured Mana Cake","sell_in":3,"quality":6}`)

	// Act
	rec := serve(t, f.server.Router(), http.MethodPost, "/api/v1/items", body,
		http.Header{"Content-Type": {"application/json"}})

	// Assert
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var resp model.APIResponse[model.Item]
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Category != inventory.CategoryConjured {
		t.Errorf("Category = %s, want %s", resp.Data.Category, inventory.CategoryConjured)
	}
}

func TestServer_Metrics(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantStatus int
	}{
		{"enabled", true, http.StatusOK},
		{"disabled", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := testConfig()
			cfg.MetricsEnabled = tt.enabled
			f := newFixture(t, cfg, nil)
			router := f.server.Router()
			serve(t, router, http.MethodPost, "/api/v1/days", nil, nil)

			// Act
			rec := serve(t, router, http.MethodGet, "/metrics", nil, nil)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !tt.enabled {
				return
			}
			body := rec.Body.String()
			for _, name := range []string{"gildedrose_days_advanced_total", "http_requests_total"} {
				if !strings.Contains(body, name) {
					t.Errorf("/metrics missing %s", name)
				}
			}
		})
	}
}

func TestServer_Auth(t *testing.T) {
	authenticator, err := auth.NewAPIKeyAuthenticator("k-1:bot")
	if err != nil {
		t.Fatalf("NewAPIKeyAuthenticator() failed: %v", err)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		key        string
		wantStatus int
	}{
		{"read items without key", http.MethodGet, "/api/v1/items", "", http.StatusOK},
		{"classify without key", http.MethodGet, "/api/v1/categories?name=Aged+Brie", "", http.StatusOK},
		{"health without key", http.MethodGet, "/health", "", http.StatusOK},
		{"advance without key", http.MethodPost, "/api/v1/days", "", http.StatusUnauthorized},
		{"advance with wrong key", http.MethodPost, "/api/v1/days", "k-2", http.StatusUnauthorized},
		{"advance with key", http.MethodPost, "/api/v1/days", "k-1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, testConfig(), authenticator)
			header := http.Header{}
			if tt.key != "" {
				header.Set(auth.APIKeyHeader, tt.key)
			}

			// Act
			rec := serve(t, f.server.Router(), tt.method, tt.path, nil, header)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_ProbeEndpoints(t *testing.T) {
	authenticator, err := auth.NewAPIKeyAuthenticator("k-1:bot")
	if err != nil {
		t.Fatalf("NewAPIKeyAuthenticator() failed: %v", err)
	}
	f := newFixture(t, testConfig(), authenticator)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/items", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			// Act
			rec := serve(t, f.server.ProbeRouter(), http.MethodGet, tt.path, nil, nil)

			// Assert
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_CORSHeaders(t *testing.T) {
	// Arrange
	cfg := testConfig()
	cfg.CORSOrigins = []string{"https://shop.example"}
	f := newFixture(t, cfg, nil)
	header := http.Header{"Origin": {"https://shop.example"}}

	// Act
	rec := serve(t, f.server.Router(), http.MethodGet, "/api/v1/items", nil, header)

	// Assert
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Errorf("Allow-Origin = %q, want https://shop.example", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, auth.APIKeyHeader) {
		t.Errorf("Allow-Headers = %q, want it to include %s", got, auth.APIKeyHeader)
	}
}

func TestServer_WebSocketReceivesDays(t *testing.T) {
	// Arrange
	f := newFixture(t, testConfig(), nil)
	ts := httptest.NewServer(f.server.Router())
	t.Cleanup(func() {
		f.server.wsHandler.CloseAllConnections()
		ts.Close()
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	read := func() model.WebSocketMessage {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg model.WebSocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() failed: %v", err)
		}
		return msg
	}

	if msg := read(); msg.Type != model.WSMessageTypeSnapshot {
		t.Fatalf("first message = %s, want %s", msg.Type, model.WSMessageTypeSnapshot)
	}
	deadline := time.Now().Add(2 * time.Second)
	for f.shop.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	// Act
	resp, err := http.Post(ts.URL+"/api/v1/days", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	_ = resp.Body.Close()

	// Assert
	msg := read()
	if msg.Type != model.WSMessageTypeDayAdvanced || msg.Report.Day != 1 {
		t.Errorf("message = %s day %v, want day_advanced day 1", msg.Type, msg.Report)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	// Arrange
	cfg := testConfig()
	cfg.ServerPort = 0
	cfg.ProbePort = 0
	f := newFixture(t, cfg, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- f.server.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Act
	err := f.server.Shutdown(ctx)

	// Assert
	if err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Shutdown()")
	}
	if _, err := f.shop.AdvanceDay(context.Background()); !errors.Is(err, shop.ErrClosed) {
		t.Errorf("AdvanceDay() after shutdown error = %v, want %v", err, shop.ErrClosed)
	}
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	// Arrange
	f := newFixture(t, testConfig(), nil)

	// Act
	err := f.server.Shutdown(context.Background())

	// Assert
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
