package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/css"
	"github.com/tdewolff/minify/html"
	"github.com/tdewolff/minify/svg"
)

//go:embed index.html style.css
var files embed.FS

// runtime minifier
var minifier = func() (minifier *minify.M) {
	minifier = minify.New()
	minifier.AddFunc("text/css", css.Minify)
	minifier.AddFunc("text/html", html.Minify)
	minifier.AddFunc("image/svg+xml", svg.Minify)
	return
}()

// Minify minifies the given bytes of the given media type. The input is
// returned as-is if the minifier fails.
func Minify(mediatype string, b []byte) []byte {
	m, err := minifier.Bytes(mediatype, b)
	if err != nil {
		log.Println("Failed to minify", mediatype+":", err)
		return b
	}
	return m
}

// Component is a named template that pages and other components can include
// with {{ template "name" . }}.
type Component struct {
	Template   string
	Components map[string]Component
	Functions  template.FuncMap
}

type Page struct {
	Template   string
	Components map[string]Component
	Functions  template.FuncMap
}

// prepareList is the list of templates to call prepare on.
var prepareList []*Template

func prepareAllTemplates() {
	for _, tmpl := range prepareList {
		tmpl.prepare()
	}
}

func BuildPage(n string, p Page) *Template {
	tmpl := &Template{
		name: n,
		page: p,
	}

	prepareList = append(prepareList, tmpl)

	return tmpl
}

// BuildComponent builds a template that renders a single component on its
// own, which is used for partial page updates.
func BuildComponent(n string, c Component) *Template {
	return BuildPage(n+"-partial", Page{
		Template:   fmt.Sprintf(`{{ template %q . }}`, n),
		Components: map[string]Component{n: c},
		Functions:  c.Functions,
	})
}

type Template struct {
	*template.Template
	name string
	page Page
	once sync.Once
}

func (t *Template) prepare() {
	t.once.Do(t.do)
}

// collect flattens the component tree into the given maps. Components and
// functions closer to the page win.
func collect(cs map[string]Component, into map[string]Component, fns template.FuncMap) {
	for n, component := range cs {
		if _, ok := into[n]; !ok {
			into[n] = component
		}

		for n, fn := range component.Functions {
			if _, ok := fns[n]; !ok {
				fns[n] = fn
			}
		}

		if component.Components != nil {
			collect(component.Components, into, fns)
		}
	}
}

func (t *Template) do() {
	var components = map[string]Component{}
	var functions = template.FuncMap{}

	for n, fn := range t.page.Functions {
		functions[n] = fn
	}

	collect(t.page.Components, components, functions)

	tmpl := template.New(t.name)
	tmpl = tmpl.Funcs(functions)
	tmpl = template.Must(tmpl.Parse(t.page.Template))

	// Parse all components' HTMLs.
	for n, component := range components {
		tmpl = template.Must(tmpl.Parse(
			fmt.Sprintf("{{ define %q }}%s{{ end }}", n, component.Template),
		))
	}

	t.Template = tmpl
}

// Execute renders the template with the given argument into HTML.
func (t *Template) Execute(v interface{}) (template.HTML, error) {
	t.prepare()

	var b bytes.Buffer

	if err := t.Template.Execute(&b, v); err != nil {
		return "", err
	}

	return template.HTML(b.String()), nil
}

// Render renders the template with the given argument into HTML. Errors are
// logged and replaced with a short notice.
func (t *Template) Render(v interface{}) template.HTML {
	h, err := t.Execute(v)
	if err != nil {
		log.Println("Template error:", err)
		return template.HTML("oh no")
	}

	return h
}

var (
	componentsCSSList = []string{mustRead("style.css")}
	componentsCSS     = bytes.Buffer{}
	componentModTime  = time.Now()
)

// RegisterCSS adds the CSS to the global CSS file, which can be located in
// /static/components.css. It must be called before the first Mux is created.
func RegisterCSS(css string) {
	componentsCSSList = append(componentsCSSList, css)
}

func initializeCSS() {
	for _, css := range componentsCSSList {
		if err := minifier.Minify("text/css", &componentsCSS, strings.NewReader(css)); err != nil {
			log.Panicln("Failed to add minifying CSS:", err)
		}
	}
}

func componentsCSSHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	http.ServeContent(
		w, r, "components.css", componentModTime,
		bytes.NewReader(componentsCSS.Bytes()),
	)
}

func mustRead(path string) string {
	b, err := files.ReadFile(path)
	if err != nil {
		log.Fatalln("Failed to read embedded file:", err)
	}
	return string(b)
}

var initOnce sync.Once
var index *template.Template

func ensureInit() {
	initOnce.Do(func() {
		index = template.Must(
			template.
				New("index").
				Parse(mustRead("index.html")),
		)

		initializeCSS()
		prepareAllTemplates()
	})
}
