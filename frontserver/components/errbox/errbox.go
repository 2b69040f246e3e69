package errbox

import (
	_ "embed"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethda/chainfront/frontserver/render"
)

var (
	//go:embed errbox.html
	errboxHTML string
	//go:embed errbox.css
	errboxCSS string
)

func init() {
	render.RegisterCSS(errboxCSS)
}

var Component = render.Component{
	Template: errboxHTML,
	Functions: map[string]interface{}{
		"minifyError": MinifyError,
	},
}

// MinifyError returns the innermost message of a wrapped error, capitalized
// and ending in a period.
func MinifyError(err error) string {
	if err == nil {
		return ""
	}

	var parts = strings.Split(err.Error(), ": ")
	var part = parts[len(parts)-1]

	// Capitalize the first letter.
	f, sz := utf8.DecodeRuneInString(part)
	if sz > 0 {
		f = unicode.ToUpper(f)
		part = string(f) + part[sz:]
	}

	if !strings.HasSuffix(part, ".") {
		part += "."
	}

	return part
}
