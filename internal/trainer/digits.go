package trainer

import "fmt"

// GlyphHeight is the row count of every clock glyph.
const GlyphHeight = 5

// glyphs are drawn with 'X' for a lit cell and ' ' for background. All
// glyphs of a clock string have the same width so the clock never jitters.
var glyphs = map[rune][GlyphHeight]string{
	'0': {"XXXX", "X  X", "X  X", "X  X", "XXXX"},
	'1': {"   X", "   X", "   X", "   X", "   X"},
	'2': {"XXXX", "   X", "XXXX", "X   ", "XXXX"},
	'3': {"XXXX", "   X", "XXXX", "   X", "XXXX"},
	'4': {"X  X", "X  X", "XXXX", "   X", "   X"},
	'5': {"XXXX", "X   ", "XXXX", "   X", "XXXX"},
	'6': {"XXXX", "X   ", "XXXX", "X  X", "XXXX"},
	'7': {"XXXX", "   X", "   X", "   X", "   X"},
	'8': {"XXXX", "X  X", "XXXX", "X  X", "XXXX"},
	'9': {"XXXX", "X  X", "XXXX", "   X", "XXXX"},
	':': {"    ", " XX ", "    ", " XX ", "    "},
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// BigClock returns the GlyphHeight rows of clock as block glyphs, one
// blank column between characters. lit and dark replace 'X' and ' '.
func BigClock(clock string, lit, dark string) []string {
	rows := make([]string, GlyphHeight)
	for i, r := range clock {
		g, ok := glyphs[r]
		if !ok {
			continue
		}
		for row := range rows {
			if i > 0 {
				rows[row] += dark
			}
			for _, cell := range g[row] {
				if cell == 'X' {
					rows[row] += lit
				} else {
					rows[row] += dark
				}
			}
		}
	}
	return rows
}
