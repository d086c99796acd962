package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ErlanBelekov/notes-api/internal/metrics"
	"github.com/ErlanBelekov/notes-api/internal/requestid"
	"github.com/ErlanBelekov/notes-api/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		seen = requestid.FromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("context id %q is not a uuid", seen)
	}
	if got := w.Header().Get(requestid.Header); got != seen {
		t.Errorf("header = %q, context = %q", got, seen)
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestid.Header, "trace-123")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(requestid.Header); got != "trace-123" {
		t.Errorf("header = %q, want trace-123", got)
	}
}

func TestSecurity_SetsHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Security())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	r := gin.New()
	r.POST("/login", middleware.RateLimit(middleware.NewIPRateLimiter(2)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	if send("10.0.0.1") != http.StatusOK || send("10.0.0.1") != http.StatusOK {
		t.Fatal("first two requests should pass")
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", code)
	}
}

func TestRateLimit_NilLimiterDisables(t *testing.T) {
	r := gin.New()
	r.POST("/login", middleware.RateLimit(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
}

func TestCORS_AllowsListedOriginOnly(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"http://localhost:5173"}))
	r.GET("/api/notes", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/notes", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "GET")
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		r.ServeHTTP(w, req)
		return w
	}

	ok := preflight("http://localhost:5173")
	if got := ok.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}
	if !strings.Contains(ok.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
		t.Errorf("allow-headers = %q", ok.Header().Get("Access-Control-Allow-Headers"))
	}

	denied := preflight("https://evil.example.com")
	if denied.Code != http.StatusForbidden {
		t.Errorf("foreign origin status = %d, want 403", denied.Code)
	}
}

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Metrics())
	r.DELETE("/api/notes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	series := func(path, status string) float64 {
		return testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodDelete, path, status))
	}
	beforeRoute := series("/api/notes/:id", "200")
	beforeUnmatched := series("unmatched", "404")

	for _, p := range []string{"/api/notes/" + uuid.NewString(), "/api/notes/" + uuid.NewString(), "/nope/" + uuid.NewString()} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, p, nil))
	}

	if got := series("/api/notes/:id", "200") - beforeRoute; got != 2 {
		t.Errorf("route series grew by %v, want 2", got)
	}
	if got := series("unmatched", "404") - beforeUnmatched; got != 1 {
		t.Errorf("unmatched series grew by %v, want 1", got)
	}
}

func TestMetrics_SkipsPreflight(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Metrics())
	r.OPTIONS("/api/notes", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodOptions, "/api/notes", "204"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodOptions, "/api/notes", nil))
	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodOptions, "/api/notes", "204"))

	if after != before {
		t.Errorf("preflight counted: %v -> %v", before, after)
	}
}
