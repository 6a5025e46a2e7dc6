package console

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerSetsRobotsHeaderOnIndex(t *testing.T) {
	handler := Handler()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(RobotsTagHeader); got != RobotsTagValue {
		t.Fatalf("expected %s header %q, got %q", RobotsTagHeader, RobotsTagValue, got)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
}

func TestHandlerServesDashboardOnNestedPath(t *testing.T) {
	handler := Handler()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/scans", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(RobotsTagHeader); got != RobotsTagValue {
		t.Fatalf("expected %s header %q for nested path, got %q", RobotsTagHeader, RobotsTagValue, got)
	}
	body := rr.Body.String()
	for _, want := range []string{"/analytics", "/model-status"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard does not reference %s", want)
		}
	}
}
