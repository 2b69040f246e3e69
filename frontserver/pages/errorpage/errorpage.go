package errorpage

import (
	_ "embed"
	"net/http"

	"github.com/ethda/chainfront/frontserver/components/errbox"
	"github.com/ethda/chainfront/frontserver/components/footer"
	"github.com/ethda/chainfront/frontserver/components/nav"
	"github.com/ethda/chainfront/frontserver/render"
	"github.com/ethda/chainfront/httperr"
)

var (
	//go:embed errorpage.html
	errorpageHTML string
	//go:embed errorpage.css
	errorpageCSS string
)

func init() {
	render.RegisterCSS(errorpageCSS)
}

var tmpl = render.BuildPage("errorpage", render.Page{
	Template: errorpageHTML,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"errbox": errbox.Component,
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
	Status int
	Error  error
	Footer footer.View
}

func (r renderCtx) StatusText() string {
	return http.StatusText(r.Status)
}

// New returns the renderer of the error page.
func New(ft *footer.Footer) render.ErrorRenderer {
	return func(r *render.Request, err error) (render.Render, error) {
		var status = httperr.ErrCode(err)

		return render.Render{
			Title: http.StatusText(status),
			Body: tmpl.Render(renderCtx{
				CommonCtx: r.CommonCtx,
				Status:    status,
				Error:     err,
				Footer:    ft.Build(r.Context(), r.UserAgent()),
			}),
		}, nil
	}
}
