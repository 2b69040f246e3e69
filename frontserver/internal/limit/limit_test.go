package limit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimit(t *testing.T) {
	h := RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	var codes []int

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest("GET", "/fragments/footer", nil)
		r.RemoteAddr = "10.0.0.1:1234"

		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusNoContent {
		t.Fatal("First request was limited:", codes)
	}

	if codes[2] != http.StatusTooManyRequests {
		t.Fatal("Burst was not limited:", codes)
	}

	t.Run("Disabled", func(t *testing.T) {
		h := RateLimit(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

			if w.Code != http.StatusNoContent {
				t.Fatal("Disabled limiter limited request", i)
			}
		}
	})
}
