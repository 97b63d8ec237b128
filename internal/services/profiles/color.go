package profiles

import "unicode/utf16"

// avatarPalette is the default dashboard theme palette at shade 4, in theme order.
var avatarPalette = []string{
	"#373A40", // dark
	"#ced4da", // gray
	"#ff8787", // red
	"#f783ac", // pink
	"#e599f7", // grape
	"#9775fa", // violet
	"#748ffc", // indigo
	"#4dabf7", // blue
	"#3bc9db", // cyan
	"#38d9a9", // teal
	"#69db7c", // green
	"#a9e34b", // lime
	"#ffd43b", // yellow
	"#ffa94d", // orange
}

// UserColor maps an id to a stable avatar color: the UTF-16 code units of
// the id are summed and the sum indexes the palette.
func UserColor(id string) string {
	seed := 0
	for _, unit := range utf16.Encode([]rune(id)) {
		seed += int(unit)
	}
	return avatarPalette[seed%len(avatarPalette)]
}
