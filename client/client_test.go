package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/ethda/chainfront/chainfront"
	"github.com/ethda/chainfront/httperr"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func newTestAPI(t *testing.T, h http.Handler) *API {
	t.Helper()

	s := httptest.NewServer(h)
	t.Cleanup(s.Close)

	a, err := NewAPI(s.URL)
	if err != nil {
		t.Fatal("Failed to create API:", err)
	}

	return a
}

func TestNewClientInvalidHost(t *testing.T) {
	if _, err := NewClient("explorer.local"); err == nil {
		t.Fatal("Unexpected nil error for relative host")
	}
}

func TestBackendVersion(t *testing.T) {
	a := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/config/backend-version" {
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "GoTest" {
			t.Errorf("Unexpected user agent %q", ua)
		}
		w.Write([]byte(`{"backend_version": "v6.0.0.+commit.abc"}`))
	}))

	a.Client.SetUserAgent("GoTest")

	v, err := a.BackendVersion(context.Background())
	if err != nil {
		t.Fatal("Failed to get backend version:", err)
	}

	if v.BackendVersion != "v6.0.0.+commit.abc" {
		t.Fatalf("Unexpected version %q", v.BackendVersion)
	}
}

func TestIndexingStatus(t *testing.T) {
	a := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"finished_indexing": false,
			"indexed_internal_transactions_ratio": "0.5"
		}`))
	}))

	s, err := a.IndexingStatus(context.Background())
	if err != nil {
		t.Fatal("Failed to get indexing status:", err)
	}

	expect := chainfront.IndexingStatus{IndexedInternalTxsRatio: "0.5"}
	if eq := deep.Equal(s, expect); eq != nil {
		t.Fatal("Status mismatch:", eq)
	}
}

func TestFooterLinks(t *testing.T) {
	links := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title": "Team", "links": [{"url": "https://ethda.io", "text": "Site"}]}]`))
	}))
	t.Cleanup(links.Close)

	a := newTestAPI(t, http.NotFoundHandler())

	g, err := a.FooterLinks(context.Background(), links.URL+"/footer.json")
	if err != nil {
		t.Fatal("Failed to get links:", err)
	}

	expect := []chainfront.LinkGroup{{
		Title: "Team",
		Links: []chainfront.LinkItem{{URL: "https://ethda.io", Text: "Site"}},
	}}

	if eq := deep.Equal(g, expect); eq != nil {
		t.Fatal("Links mismatch:", eq)
	}
}

func TestFooterLinksUpstreamError(t *testing.T) {
	links := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(links.Close)

	a := newTestAPI(t, http.NotFoundHandler())

	_, err := a.FooterLinks(context.Background(), links.URL+"/footer.json")
	if err == nil {
		t.Fatal("Unexpected nil error")
	}

	if code := httperr.ErrCode(err); code != http.StatusBadGateway {
		t.Fatal("Unexpected status code:", code)
	}

	var unexp ErrUnexpectedStatusCode
	if !errors.As(err, &unexp) || unexp.Code != http.StatusNotFound {
		t.Fatal("Upstream status is lost:", err)
	}

	if !strings.Contains(err.Error(), "/footer.json") {
		t.Fatal("Error does not name the links URL:", err)
	}
}

func TestUnexpectedStatusCode(t *testing.T) {
	t.Run("Message", func(t *testing.T) {
		a := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"message": "maintenance"}`))
		}))

		_, err := a.BackendVersion(context.Background())

		var unexp ErrUnexpectedStatusCode
		if !errors.As(err, &unexp) {
			t.Fatal("Unexpected error type:", err)
		}
		if unexp.Code != 503 || unexp.ErrMsg != "maintenance" {
			t.Fatalf("Unexpected error: %#v", unexp)
		}
		if code := httperr.ErrCode(err); code != http.StatusBadGateway {
			t.Fatal("Unexpected status code:", code)
		}
	})

	t.Run("TruncatedBody", func(t *testing.T) {
		a := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(strings.Repeat("x", 200)))
		}))

		_, err := a.BackendVersion(context.Background())

		var unexp ErrUnexpectedStatusCode
		if !errors.As(err, &unexp) {
			t.Fatal("Unexpected error type:", err)
		}
		if len(unexp.Body) != 100 || !strings.HasSuffix(unexp.Body, "...") {
			t.Fatalf("Unexpected body %q", unexp.Body)
		}
	})
}

func TestMaxResponseSize(t *testing.T) {
	a := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"backend_version": "` + strings.Repeat("1", 64) + `"}`))
	}))

	a.Client.SetMaxResponseSize(16 * datasize.B)

	_, err := a.BackendVersion(context.Background())

	var tooLarge ErrBodyTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatal("Unexpected error:", err)
	}

	if code := httperr.ErrCode(err); code != http.StatusBadGateway {
		t.Fatal("Unexpected status code:", code)
	}
}
