package render

import (
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/ethda/chainfront/frontserver/static"
	"github.com/ethda/chainfront/httperr"
	"github.com/go-chi/chi"
)

// Renderer represents a renderable page.
type Renderer = func(r *Request) (Render, error)

// ErrorRenderer represents a renderable page for errors.
type ErrorRenderer = func(r *Request, err error) (Render, error)

type Render struct {
	Title       string // og:title, <title>
	Description string // og:description

	// Partial skips the page layout and writes only the body.
	Partial bool

	Body template.HTML
}

// Empty is a blank page.
var Empty = Render{}

type Config struct {
	SiteName    string `toml:"siteName"`
	Description string `toml:"description"`
}

func NewConfig() Config {
	return Config{
		SiteName:    "Blockscout",
		Description: "Blockchain explorer",
	}
}

func (c *Config) Validate() error {
	return nil
}

type renderCtx struct {
	Theme  Theme
	Render Render
	Config Config
}

func (r renderCtx) FormatTitle() string {
	if r.Render.Title == "" {
		return r.Config.SiteName
	}
	return fmt.Sprintf("%s - %s", r.Render.Title, r.Config.SiteName)
}

func (r renderCtx) FormatDescription() string {
	if r.Render.Description == "" {
		return r.Config.Description
	}
	return r.Render.Description
}

type Request struct {
	*http.Request
	Writer http.ResponseWriter
	pusher http.Pusher
	CommonCtx
}

// Push pushes the resource at url if the connection supports HTTP/2 push.
func (r *Request) Push(url string) {
	if r.pusher == nil {
		ps, ok := r.Writer.(http.Pusher)
		if !ok {
			return
		}
		r.pusher = ps
	}

	if err := r.pusher.Push(url, nil); err != nil && err != http.ErrNotSupported {
		log.Println("Failed to push", url+":", err)
	}
}

type CommonCtx struct {
	Config  Config
	Request *http.Request
	Theme   Theme
}

type Mux struct {
	*chi.Mux
	cfg  Config
	errR ErrorRenderer
}

func NewMux(cfg Config) *Mux {
	ensureInit()

	r := chi.NewMux()
	r.Use(ThemeM)
	r.Post("/theme", handleSetTheme)
	r.Route("/static", func(r chi.Router) {
		r.Get("/components.css", componentsCSSHandler)
		r.Mount("/", http.StripPrefix("/static", http.FileServer(http.FS(static.FS))))
	})

	return &Mux{r, cfg, nil}
}

func (m *Mux) SetErrorRenderer(r ErrorRenderer) {
	m.errR = r
}

func (m *Mux) NewRequest(w http.ResponseWriter, r *http.Request) *Request {
	return &Request{
		Request: r,
		Writer:  w,
		CommonCtx: CommonCtx{
			Config:  m.cfg,
			Request: r,
			Theme:   GetTheme(r.Context()),
		},
	}
}

// M is the middleware wrapper.
func (m *Mux) M(render Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Write the proper headers.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		var request = m.NewRequest(w, r)

		page, err := render(request)
		if err != nil {
			// Copy the status code if available. Else, fallback to 500.
			w.WriteHeader(httperr.ErrCode(err))

			// If there is no error renderer, then we just write the error down
			// in plain text.
			if m.errR == nil {
				fmt.Fprintf(w, "Error: %v", err)
				return
			}

			// Render the error page.
			page, err = m.errR(request, err)
			if err != nil {
				// This shouldn't error out, so we should log it.
				log.Println("Error rendering error page:", err)
				return
			}
		}

		// Don't render anything if an empty page is returned and there is no
		// error.
		if page == Empty {
			return
		}

		if page.Partial {
			w.Write([]byte(page.Body))
			return
		}

		var renderCtx = renderCtx{
			Theme:  request.Theme,
			Render: page,
			Config: m.cfg,
		}

		if err := index.Execute(w, renderCtx); err != nil {
			log.Println("Error rendering index:", err)
			return
		}
	}
}

func (m *Mux) Get(route string, r Renderer) {
	m.Mux.Get(route, m.M(r))
}

// Muxer implements the interface that's passable to pages' mount functions.
type Muxer interface {
	M(Renderer) http.HandlerFunc
}

func (m *Mux) Mount(route string, mounter func(Muxer) http.Handler) {
	m.Mux.Mount(route, mounter(m))
}
