package host

import (
	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// paletteColor parses a `#rrggbb` string into a tcell.Color via
// go-colorful, the pure colour-string-parsing helper §1 lists as an
// external collaborator of the core. Unparseable or empty input falls
// back to the terminal's default colour rather than erroring, since a
// bad palette entry should degrade the picture, not crash the host.
func paletteColor(hex string) tcell.Color {
	if hex == "" {
		return tcell.ColorDefault
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.ColorDefault
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// defaultPalette assigns a stable colour to an image name by hashing it,
// standing in for real sprite art the reference host doesn't ship.
var defaultPalette = []string{
	"#2d1b4e", "#1b4e2d", "#4e2d1b", "#1b2d4e", "#4e1b2d", "#2d4e1b",
}

func colorForName(name string) tcell.Color {
	if name == "" {
		return tcell.ColorBlack
	}
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*31 + uint32(name[i])
	}
	return paletteColor(defaultPalette[h%uint32(len(defaultPalette))])
}
