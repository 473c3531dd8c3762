package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
	ObserveFetch("list", "ok")
	ObserveCoalesced("detail")
	ObserveCacheHit("summary")
	SetCachedCameras(2, 1)
}

func TestMiddlewarePassesThroughStatus(t *testing.T) {
	Init()

	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}

func TestMiddlewareExemptsScrapeEndpoint(t *testing.T) {
	Init()

	r := chi.NewRouter()
	r.Use(Middleware)
	r.Method(http.MethodGet, MetricsPath, Handler())
	r.Get("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, `route="`+MetricsPath+`"`) {
		t.Fatal("scrape endpoint instrumented its own requests")
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	Init()
	ObserveFetch("list", "ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
