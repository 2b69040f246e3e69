// Package nav renders the site header with the theme toggle.
package nav

import (
	_ "embed"

	"github.com/ethda/chainfront/frontserver/components/icon"
	"github.com/ethda/chainfront/frontserver/render"
)

var (
	//go:embed nav.html
	navHTML string
	//go:embed nav.css
	navCSS string
)

func init() {
	render.RegisterCSS(navCSS)
}

// Component renders a render.CommonCtx.
var Component = render.Component{
	Template: navHTML,
	Components: map[string]render.Component{
		"icon": icon.Component,
	},
}
