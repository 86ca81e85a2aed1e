package assets

import (
	"embed"

	"github.com/benbjohnson/hashfs"
)

//go:embed css
var FS embed.FS

var HashFS = hashfs.NewFS(FS)

const Prefix = "/assets/"

// StylesheetURL is the content-hashed URL of the tree styles.
func StylesheetURL() string {
	return Prefix + HashFS.HashName("css/orgtree.css")
}
