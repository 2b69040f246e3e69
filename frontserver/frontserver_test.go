package frontserver

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ethda/chainfront/client"
	"github.com/ethda/chainfront/query"
	"github.com/go-chi/chi"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := chi.NewMux()
	mux.Get("/api/v2/config/backend-version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"backend_version":"v6.1.0.+commit.abc123"}`))
	})
	mux.Get("/api/v2/main-page/indexing-status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"finished_indexing": false,
			"indexed_internal_transactions_ratio": "0.5012"
		}`))
	})
	mux.Get("/links.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"title": "Company", "links": [{"url": "https://ethda.io/about", "text": "About"}]},
			{"title": "Developers", "links": [{"url": "https://docs.ethda.io", "text": "Docs"}]}
		]`))
	})

	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

func newFrontend(t *testing.T, mutate func(*FrontConfig)) http.Handler {
	t.Helper()

	backend := newBackend(t)

	api, err := client.NewAPI(backend.URL)
	if err != nil {
		t.Fatal("Failed to create API:", err)
	}

	cache := query.NewCache(query.NewConfig(), nil)
	t.Cleanup(func() { cache.Close() })

	cfg := NewConfig()
	cfg.Footer.Links = backend.URL + "/links.json"
	cfg.Footer.Wait = "5s"
	cfg.Network.Name = "EthDA"
	cfg.Network.ChainID = 177
	cfg.Network.RPCURL = "https://rpc.ethda.io"

	if mutate != nil {
		mutate(&cfg)
	}

	h, err := New(api, cache, cfg)
	if err != nil {
		t.Fatal("Failed to create frontend:", err)
	}

	return h
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

	resp := w.Result()

	b, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		t.Fatal("Failed to read body:", err)
	}

	return resp, string(b)
}

func TestHome(t *testing.T) {
	h := newFrontend(t, nil)

	resp, body := get(t, h, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatal("Unexpected status:", resp.StatusCode)
	}

	var expects = []string{
		"<!DOCTYPE html>",
		`href="/static/components.css"`,
		`class="footer footer--custom"`,
		"--footer-cols: 3",
		"Company",
		"Developers",
		"https://github.com/blockscout/blockscout/commit/abc123",
		"50.12%",
		`data-chain-id="0xb1"`,
	}

	for _, expect := range expects {
		if !strings.Contains(body, expect) {
			t.Errorf("Home page is missing %q", expect)
		}
	}

	if strings.Contains(body, "data-refresh") {
		t.Error("Loaded home page asks for a refresh")
	}
}

func TestFooterFragment(t *testing.T) {
	h := newFrontend(t, nil)

	resp, body := get(t, h, "/fragments/footer")
	if resp.StatusCode != http.StatusOK {
		t.Fatal("Unexpected status:", resp.StatusCode)
	}

	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Fatal("Unexpected Cache-Control:", cc)
	}

	if strings.Contains(body, "<html") {
		t.Fatal("Fragment is rendered inside the page layout")
	}

	if !strings.HasPrefix(strings.TrimSpace(body), "<footer") {
		t.Fatal("Fragment does not start with the footer:", body)
	}
}

func TestFragmentRateLimit(t *testing.T) {
	h := newFrontend(t, func(cfg *FrontConfig) {
		cfg.FragmentRateLimit = 1
	})

	var limited bool

	for i := 0; i < 5; i++ {
		if resp, _ := get(t, h, "/fragments/footer"); resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
	}

	if !limited {
		t.Fatal("Fragments were not rate limited")
	}
}

func TestAssets(t *testing.T) {
	h := newFrontend(t, nil)

	t.Run("Sprite", func(t *testing.T) {
		resp, body := get(t, h, "/icons/sprite.svg")
		if resp.StatusCode != http.StatusOK {
			t.Fatal("Unexpected status:", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
			t.Fatal("Unexpected Content-Type:", ct)
		}
		if !strings.Contains(body, "social/git") {
			t.Fatal("Sprite is missing the social/git symbol")
		}
	})

	t.Run("CSS", func(t *testing.T) {
		resp, body := get(t, h, "/static/components.css")
		if resp.StatusCode != http.StatusOK {
			t.Fatal("Unexpected status:", resp.StatusCode)
		}
		if !strings.Contains(body, ".footer-link") {
			t.Fatal("Components CSS is missing the footer links")
		}
	})

	t.Run("Script", func(t *testing.T) {
		resp, body := get(t, h, "/static/footer.js")
		if resp.StatusCode != http.StatusOK {
			t.Fatal("Unexpected status:", resp.StatusCode)
		}
		if !strings.Contains(body, "data-refresh") {
			t.Fatal("Unexpected footer script:", body)
		}
	})
}

func TestNotFound(t *testing.T) {
	h := newFrontend(t, nil)

	resp, body := get(t, h, "/blocks/1")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatal("Unexpected status:", resp.StatusCode)
	}

	if !strings.Contains(body, "Page not found.") {
		t.Fatal("Error page is missing the message")
	}

	if !strings.Contains(body, `class="footer footer--custom"`) {
		t.Fatal("Error page is missing the footer")
	}
}

func TestTheme(t *testing.T) {
	h := newFrontend(t, nil)

	form := url.Values{
		"theme":    {"dark"},
		"redirect": {"/blocks?page=2"},
	}

	r := httptest.NewRequest("POST", "/theme", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatal("Unexpected status:", w.Code)
	}

	if loc := w.Header().Get("Location"); loc != "/blocks?page=2" {
		t.Fatal("Unexpected redirect:", loc)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "dark" {
		t.Fatal("Unexpected cookies:", cookies)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.AddCookie(cookies[0])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if !strings.Contains(w.Body.String(), `class="theme-dark"`) {
		t.Fatal("Dark theme is not applied")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	cfg.FragmentRateLimit = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("Unexpected nil error")
	}

	cfg = NewConfig()
	cfg.Footer.Links = "/links.json"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Relative links URL was accepted")
	}
}
