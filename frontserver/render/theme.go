package render

import (
	"context"
	"log"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/schema"
)

type Theme uint8

const (
	LightTheme Theme = iota
	DarkTheme

	// reserved for internal use
	themeLen
)

const DefaultTheme = LightTheme

func ParseTheme(name string) Theme {
	switch name {
	case "light":
		return LightTheme
	case "dark":
		return DarkTheme
	}

	return DefaultTheme
}

func (t Theme) String() string {
	switch t {
	case DarkTheme:
		return "dark"
	case LightTheme:
		fallthrough
	default:
		return "light"
	}
}

// Next returns the theme that the theme toggle switches to.
func (t Theme) Next() Theme {
	return (t + 1) % themeLen
}

type _renderctx struct{}

var renderctxkey = _renderctx{}

func ThemeM(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var theme = DefaultTheme

		if c, err := r.Cookie("theme"); err == nil {
			theme = ParseTheme(c.Value)
		}

		next.ServeHTTP(
			w,
			r.WithContext(context.WithValue(r.Context(), renderctxkey, theme)),
		)
	})
}

func GetTheme(ctx context.Context) Theme {
	if v, ok := ctx.Value(renderctxkey).(Theme); ok {
		return v
	}
	return DefaultTheme
}

func SetThemeCookie(w http.ResponseWriter, theme Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    theme.String(),
		Path:     "/",
		Expires:  time.Unix(math.MaxInt32, 0),
		SameSite: http.SameSiteLaxMode,
	})
}

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

type themeForm struct {
	Theme    string `schema:"theme"`
	Redirect string `schema:"redirect"`
}

// redirectTarget only allows redirects to paths on the same host.
func (f themeForm) redirectTarget(referer string) string {
	for _, target := range []string{f.Redirect, referer} {
		u, err := url.Parse(target)
		if err != nil || target == "" {
			continue
		}
		if u.IsAbs() {
			continue
		}
		if len(u.Path) > 0 && u.Path[0] == '/' && (len(u.Path) == 1 || u.Path[1] != '/') {
			return u.RequestURI()
		}
	}
	return "/"
}

func handleSetTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	var form themeForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		log.Println("Failed to decode theme form:", err)
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	SetThemeCookie(w, ParseTheme(form.Theme))

	// https://developer.mozilla.org/en-US/docs/Web/HTTP/Redirections
	http.Redirect(w, r, form.redirectTarget(r.Referer()), http.StatusSeeOther)
}
