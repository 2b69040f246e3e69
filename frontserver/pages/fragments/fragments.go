// Package fragments serves parts of pages that the browser swaps in once their
// pending queries have resolved.
package fragments

import (
	"net/http"

	"github.com/ethda/chainfront/frontserver/components/footer"
	"github.com/ethda/chainfront/frontserver/internal/middleware"
	"github.com/ethda/chainfront/frontserver/render"
	"github.com/go-chi/chi"
)

var footerTmpl = render.BuildComponent("footer", footer.Component)

// Mount returns the mounter of the fragment routes. Each request is passed
// through limit first.
func Mount(ft *footer.Footer, limit middleware.F) func(render.Muxer) http.Handler {
	return func(muxer render.Muxer) http.Handler {
		mux := chi.NewMux()
		mux.Use(limit)
		mux.Use(middleware.NoCache)
		mux.Get("/footer", muxer.M(Footer(ft)))
		return mux
	}
}

// Footer renders the footer on its own.
func Footer(ft *footer.Footer) render.Renderer {
	return func(r *render.Request) (render.Render, error) {
		body, err := footerTmpl.Execute(ft.Build(r.Context(), r.UserAgent()))
		if err != nil {
			return render.Empty, err
		}

		return render.Render{
			Partial: true,
			Body:    body,
		}, nil
	}
}
