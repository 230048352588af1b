package term

import "fmt"

// Color is an abstract terminal color; the zero value means no color.
type Color uint8

const (
	NoColor = Color(iota)
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	Default
)

var resetColorBytes = []byte("\x1b[0m")
var fgColorBytes [][]byte
var bgColorBytes [][]byte

func init() {
	// NoColor is never written; the slot keeps indexing aligned.
	fgColorBytes = append(fgColorBytes, nil)
	bgColorBytes = append(bgColorBytes, nil)
	for color := Red; color < Default; color++ {
		fgColorBytes = append(fgColorBytes, []byte(fmt.Sprintf("\x1b[%dm", 30+color)))
		bgColorBytes = append(bgColorBytes, []byte(fmt.Sprintf("\x1b[%dm", 40+color)))
	}
	fgColorBytes = append(fgColorBytes, []byte("\x1b[39m"))
	bgColorBytes = append(bgColorBytes, []byte("\x1b[49m"))
}

// FgBgColor is a foreground/background color pair for one output line.
type FgBgColor struct {
	Fg, Bg Color
}

// IsZero reports whether the pair requests no coloring at all.
func (c FgBgColor) IsZero() bool {
	return c.Fg == NoColor && c.Bg == NoColor
}

// ParseColor resolves a color by its lowercase name, as used in
// loom.Config Colors values. Unknown names report false.
func ParseColor(name string) (Color, bool) {
	switch name {
	case "red":
		return Red, true
	case "green":
		return Green, true
	case "yellow":
		return Yellow, true
	case "blue":
		return Blue, true
	case "magenta":
		return Magenta, true
	case "cyan":
		return Cyan, true
	case "white":
		return White, true
	case "default":
		return Default, true
	}
	return NoColor, false
}
