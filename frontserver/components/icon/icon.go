// Package icon renders icons from the shared sprite sheet.
package icon

import (
	"bytes"
	_ "embed"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ethda/chainfront/frontserver/render"
	"github.com/ethda/chainfront/frontserver/static"
	"github.com/pkg/errors"
)

var (
	//go:embed icon.html
	iconHTML string
	//go:embed icon.css
	iconCSS string
)

func init() {
	render.RegisterCSS(iconCSS)
}

// SpriteHref is where the sprite sheet is served.
const SpriteHref = "/icons/sprite.svg"

// DefaultSize is the default box size as a spacing token.
const DefaultSize = "5"

var Component = render.Component{
	Template: iconHTML,
	Functions: map[string]interface{}{
		"icon": New,
	},
}

// View is the data of the icon template.
type View struct {
	Name    string
	Size    string
	Loading bool
}

// New creates a new icon view. An empty size means DefaultSize.
func New(name, size string, loading bool) View {
	return View{Name: name, Size: size, Loading: loading}
}

// Href returns the fragment reference of the icon in the sprite sheet.
func (v View) Href() string {
	return Href(v.Name)
}

func (v View) BoxSize() string {
	return BoxSize(v.Size)
}

// Href returns the fragment reference of the named icon in the sprite sheet.
func Href(name string) string {
	return SpriteHref + "#" + name
}

// BoxSize converts a size into a CSS length. Bare numbers are spacing tokens
// of a quarter rem each; anything else is assumed to already be a length.
func BoxSize(size string) string {
	size = strings.TrimSpace(size)
	if size == "" {
		size = DefaultSize
	}

	f, err := strconv.ParseFloat(size, 64)
	if err != nil {
		return size
	}

	return strconv.FormatFloat(f*0.25, 'f', -1, 64) + "rem"
}

// Sprite is the set of symbol names in a sprite sheet.
type Sprite struct {
	names map[string]struct{}
	raw   []byte
}

// ParseSprite reads all symbol IDs from the given sprite sheet.
func ParseSprite(r io.Reader) (*Sprite, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to parse sprite")
	}

	var names = map[string]struct{}{}

	doc.Find("symbol").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok && id != "" {
			names[id] = struct{}{}
		}
	})

	if len(names) == 0 {
		return nil, errors.New("sprite has no symbols")
	}

	return &Sprite{names: names}, nil
}

// Has returns true if the sprite has a symbol with the given name.
func (s *Sprite) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Names returns all symbol names, sorted.
func (s *Sprite) Names() []string {
	var names = make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	sprite        *Sprite
	spriteModTime = time.Now()
)

func init() {
	b := static.Sprite()

	s, err := ParseSprite(bytes.NewReader(b))
	if err != nil {
		panic(err)
	}

	s.raw = render.Minify("image/svg+xml", b)
	sprite = s
}

// Has returns true if the bundled sprite has the named symbol.
func Has(name string) bool {
	return sprite.Has(name)
}

// SpriteHandler serves the minified bundled sprite sheet.
func SpriteHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, "sprite.svg", spriteModTime, bytes.NewReader(sprite.raw))
}
