package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guardline/go-alert-backend/internal/config"
	"github.com/guardline/go-alert-backend/internal/dedup"
	"github.com/guardline/go-alert-backend/internal/domain"
	"github.com/guardline/go-alert-backend/internal/messaging"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Alert{}, &domain.Delivery{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:        "/api/v1",
		RateRPS:            100,
		RateBurst:          50,
		DispatchDelay:      0, // no pacing in tests
		DefaultContactName: "Emergency Contact",
		CORS:               config.CORSConfig{},
		Security:           config.SecurityConfig{},
		OTEL:               config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, db *gorm.DB, sender messaging.Sender, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, db, sender, dedup.New(0, 0, nil), cfg)
	return r
}

func TestRegisterRoutesProbesMetricsAndFallbacks(t *testing.T) {
	r := newRouter(t, newTestDB(t, "routerdb"), &messaging.MemorySender{}, testConfig())

	// /health works and the allow-all CORS branch sets ACAO *.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /status reports history feature wired.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /status = %d", w.Code)
	}
	var status struct {
		Status   string          `json:"status"`
		Features map[string]bool `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("status json: %v", err)
	}
	if status.Status != "operational" || !status.Features["history"] {
		t.Fatalf("unexpected status body: %+v", status)
	}

	// /metrics is wired.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404, NoMethod → 405.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutesCORSOriginEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"http://example.com"}
	r := newRouter(t, nil, &messaging.MemorySender{}, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestAlertEndToEndThroughPipeline(t *testing.T) {
	sender := &messaging.MemorySender{}
	db := newTestDB(t, "routerdb_e2e")
	r := newRouter(t, db, sender, testConfig())

	body := `{
		"contacts": [{"phone": "4155551234", "name": "Bob"}],
		"location": {"lat": 37.4219999, "lng": -122.0840575},
		"timestamp": 1700000000000,
		"userName": "Alice"
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/v1/alert = %d body=%s", w.Code, w.Body.String())
	}
	var out domain.AlertOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !out.Success || out.Message != "Alert sent to 1 of 1 contacts" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	sent := sender.Sent()
	if len(sent) != 1 || sent[0].To != "+14155551234" {
		t.Fatalf("provider saw %+v", sent)
	}

	// The identical request right behind it is debounced.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/alert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("duplicate expected 429, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Duplicate alert detected") {
		t.Fatalf("duplicate body=%s", w.Body.String())
	}

	// The dispatched alert was recorded in the audit log.
	var n int64
	if err := db.Model(&domain.Alert{}).Count(&n).Error; err != nil {
		t.Fatalf("count alerts: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 recorded alert, got %d", n)
	}

	// And /api/v1/alerts serves it back.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/alerts = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user_name":"Alice"`) {
		t.Fatalf("history body=%s", w.Body.String())
	}

	// The recorded row is addressable by ID, deliveries included.
	var recorded domain.Alert
	if err := db.First(&recorded).Error; err != nil {
		t.Fatalf("load recorded alert: %v", err)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/"+recorded.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/alerts/%s = %d body=%s", recorded.ID, w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"phone":"+14155551234"`) {
		t.Fatalf("detail body=%s", w.Body.String())
	}

	// An unknown ID answers 404 with the not-found envelope.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Alert not found") {
		t.Fatalf("not-found body=%s", w.Body.String())
	}
}

func TestAlertsRouteAbsentWithoutDB(t *testing.T) {
	r := newRouter(t, nil, &messaging.MemorySender{}, testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for disabled history, got %d", w.Code)
	}
}

func TestLimitBodyMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB"))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func TestGroupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

func TestAlertRepoShimProxies(t *testing.T) {
	db := newTestDB(t, "routerdb_shim")
	shim := alertRepoShim{}
	ctx := context.Background()

	a := &domain.Alert{
		UserName:   "Alice",
		Lat:        37.422,
		Lng:        -122.084,
		OccurredAt: "1700000000000",
		Successful: 1,
		Deliveries: []domain.Delivery{
			{Phone: "+14155551234", Name: "Bob", Success: true, SID: "SM1", Status: "queued"},
		},
	}
	if err := shim.CreateAlert(ctx, db, a); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}
	if a.ID == "" || a.Deliveries[0].ID == "" {
		t.Fatalf("ids not assigned: %+v", a)
	}

	n, err := shim.CountAlerts(ctx, db)
	if err != nil {
		t.Fatalf("CountAlerts: %v", err)
	}
	if n != 1 {
		t.Fatalf("CountAlerts = %d", n)
	}

	page, err := shim.ListAlertsPage(ctx, db, 0, 10)
	if err != nil {
		t.Fatalf("ListAlertsPage: %v", err)
	}
	if len(page) != 1 || page[0].ID != a.ID || len(page[0].Deliveries) != 1 {
		t.Fatalf("ListAlertsPage = %+v", page)
	}
}
