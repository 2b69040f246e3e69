// Package footerlink renders a single footer link row.
package footerlink

import (
	_ "embed"

	"github.com/ethda/chainfront/chainfront"
	"github.com/ethda/chainfront/frontserver/components/icon"
	"github.com/ethda/chainfront/frontserver/render"
)

var (
	//go:embed footerlink.html
	footerlinkHTML string
	//go:embed footerlink.css
	footerlinkCSS string
)

func init() {
	render.RegisterCSS(footerlinkCSS)
}

var Component = render.Component{
	Template: footerlinkHTML,
	Components: map[string]render.Component{
		"icon": icon.Component,
	},
}

// Item is a link row, optionally still loading.
type Item struct {
	chainfront.LinkItem
	Loading bool
}

// Items wraps the given links into rows with the same loading state.
func Items(links []chainfront.LinkItem, loading bool) []Item {
	var items = make([]Item, len(links))
	for i, link := range links {
		items[i] = Item{LinkItem: link, Loading: loading}
	}
	return items
}

// HasIcon returns true if the row shows an icon cell.
func (i Item) HasIcon() bool {
	return !i.Icon.IsZero()
}

// SpriteIcon returns the sprite icon view of the row.
func (i Item) SpriteIcon() icon.View {
	return icon.New(i.Icon.Name, i.IconSize, false)
}
