// Package static holds the assets served under /static and the shared icon
// sprite sheet.
package static

import (
	"embed"
	"log"
)

//go:embed footer.js wallet.js icons social
var FS embed.FS

// SpritePath is the path of the sprite sheet inside FS.
const SpritePath = "icons/sprite.svg"

// Sprite returns the raw sprite sheet.
func Sprite() []byte {
	return mustRead(SpritePath)
}

// Social returns the inline SVG of a bundled social network icon, such as
// "telegram".
func Social(name string) string {
	return string(mustRead("social/" + name + ".svg"))
}

func mustRead(path string) []byte {
	b, err := FS.ReadFile(path)
	if err != nil {
		log.Panicln("Missing embedded asset:", err)
	}
	return b
}
