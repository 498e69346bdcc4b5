package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

// ParseColor accepts "#rgb", "#rgba", "#rrggbb", "#rrggbbaa" or an SVG color
// name. Unrecognized input yields opaque black and false.
func ParseColor(s string) (gg.RGBA, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		switch len(hex) {
		case 3, 4, 6, 8:
		default:
			return gg.Black, false
		}
		for _, r := range hex {
			if !isHexDigit(r) {
				return gg.Black, false
			}
		}
		return gg.Hex(hex), true
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return gg.FromColor(c), true
	}
	return gg.Black, false
}

var ErrUnknownColor = errors.New("unknown color")

// CheckColor reports whether s is a color ParseColor understands.
func CheckColor(s string) error {
	if _, ok := ParseColor(s); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// withOpacity scales the alpha of c by opacity.
func withOpacity(c gg.RGBA, opacity float64) gg.RGBA {
	c.A *= opacity
	return c
}

// inkFor picks the color for stamp details drawn over a face of color c.
func inkFor(c gg.RGBA) gg.RGBA {
	lum := 0.299*c.R + 0.587*c.G + 0.114*c.B
	if lum > 0.5 {
		return gg.RGBA2(0.2, 0.2, 0.2, c.A)
	}
	return gg.RGBA2(1, 1, 1, c.A)
}
