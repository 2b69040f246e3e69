package home

import (
	_ "embed"

	"github.com/ethda/chainfront/frontserver/components/footer"
	"github.com/ethda/chainfront/frontserver/components/nav"
	"github.com/ethda/chainfront/frontserver/render"
)

var (
	//go:embed home.html
	homeHTML string
	//go:embed home.css
	homeCSS string
)

func init() {
	render.RegisterCSS(homeCSS)
}

var tmpl = render.BuildPage("home", render.Page{
	Template: homeHTML,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
	Footer footer.View
}

// New returns the renderer of the home page.
func New(ft *footer.Footer) render.Renderer {
	return func(r *render.Request) (render.Render, error) {
		r.Push("/static/components.css")
		r.Push("/static/footer.js")

		return render.Render{
			Body: tmpl.Render(renderCtx{
				CommonCtx: r.CommonCtx,
				Footer:    ft.Build(r.Context(), r.UserAgent()),
			}),
		}, nil
	}
}
