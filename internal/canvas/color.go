package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Transparent is the keyword used for shapes without a fill.
const Transparent = "transparent"

// ParseColor resolves a CSS keyword or a #rgb, #rgba, #rrggbb or #rrggbbaa
// string into a color.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	if s == Transparent {
		return color.NRGBA{}, nil
	}
	if strings.HasPrefix(s, "#") {
		c, ok := parseHex(s[1:])
		if !ok {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return c, nil
	}
	c, ok := colornames.Map[s]
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
}

func parseHex(hex string) (color.NRGBA, bool) {
	// Short forms repeat each digit: #f80 is #ff8800.
	if len(hex) == 3 || len(hex) == 4 {
		var long strings.Builder
		for _, r := range hex {
			long.WriteRune(r)
			long.WriteRune(r)
		}
		hex = long.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// mustColor is used while rendering; invalid colors were rejected on the way in.
func mustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return c
}
