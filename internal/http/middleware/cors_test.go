package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantHandler bool
	}{
		{"listed origin", []string{"https://desk.example.com/"}, http.MethodGet, "https://desk.example.com", false, http.StatusOK, "https://desk.example.com", true},
		{"unknown origin", []string{"https://desk.example.com"}, http.MethodGet, "https://evil.example", false, http.StatusOK, "", true},
		{"wildcard", []string{"*"}, http.MethodGet, "https://random.example", false, http.StatusOK, "https://random.example", true},
		{"no origin header", []string{"https://desk.example.com"}, http.MethodGet, "", false, http.StatusOK, "", true},
		{"preflight allowed", []string{"https://desk.example.com"}, http.MethodOptions, "https://desk.example.com", true, http.StatusNoContent, "https://desk.example.com", false},
		{"preflight refused", []string{"https://desk.example.com"}, http.MethodOptions, "https://evil.example", true, http.StatusForbidden, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(tt.method, "/api/appointments", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rec := httptest.NewRecorder()

			CORS(tt.allowed)(handler).ServeHTTP(rec, req)

			if called != tt.wantHandler {
				t.Fatalf("handler called = %v, want %v", called, tt.wantHandler)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("expected allow origin %q, got %q", tt.wantOrigin, got)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Expose-Headers") == "" {
				t.Fatalf("expected exposed headers for the CSV download")
			}
		})
	}
}
