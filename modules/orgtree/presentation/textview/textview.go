package textview

import (
	"bufio"
	"io"
	"strings"

	"github.com/jacksonlee411/orgtree/modules/orgtree/presentation/renderer"
)

var glyphs = map[renderer.Glyph]string{
	renderer.GlyphCollapsed:   "▸",
	renderer.GlyphExpanded:    "▾",
	renderer.GlyphPlaceholder: "•",
}

// Write prints one line per visible row, indented two spaces per depth level.
func Write(w io.Writer, roots []*renderer.RenderedNode) error {
	bw := bufio.NewWriter(w)
	for _, row := range renderer.FlattenForest(roots) {
		line := strings.Repeat("  ", row.Depth) + glyphs[row.Glyph] + " " + row.Node.Name + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
