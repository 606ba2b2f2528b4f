package main

import (
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/ha1tch/deluxecanvas/internal/canvas"
)

// Tool types
type ToolType int

const (
	ToolPencil ToolType = iota
	ToolBrush
	ToolCircle
	ToolRect
	ToolTriangle
	ToolText
	ToolUndo
	ToolClear
	ToolSave
)

var toolNames = []string{"PENCIL", "BRUSH", "CIRCLE", "RECT", "TRIANGLE", "TEXT", "UNDO", "CLEAR", "SAVE"}

var toolIcons = []rune{'P', 'B', 'C', 'R', 'T', 'A', 'U', 'X', 'S'}

func (t ToolType) String() string {
	if int(t) < len(toolNames) {
		return toolNames[t]
	}
	return "UNKNOWN"
}

// shapeName maps a shape tool onto the editor's shape names.
func (t ToolType) shapeName() (string, bool) {
	switch t {
	case ToolCircle:
		return "circle", true
	case ToolRect:
		return "rectangle", true
	case ToolTriangle:
		return "triangle", true
	}
	return "", false
}

// hexColor renders a palette entry the way the editor accepts colors.
func hexColor(c rl.Color) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// rlColor parses an editor color, falling back to black.
func rlColor(s string) rl.Color {
	c, err := canvas.ParseColor(s)
	if err != nil {
		return rl.Black
	}
	return rl.Color(color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
}

// stroke collects canvas points while the mouse is held down.
type stroke struct {
	points []canvas.Point
}

// add appends p unless it repeats the previous point.
func (s *stroke) add(x, y float32) {
	p := canvas.Point{X: float64(x), Y: float64(y)}
	if n := len(s.points); n > 0 && s.points[n-1] == p {
		return
	}
	s.points = append(s.points, p)
}

// take returns the collected points and resets the stroke.
func (s *stroke) take() []canvas.Point {
	pts := s.points
	s.points = nil
	return pts
}

func (s *stroke) active() bool { return len(s.points) > 0 }

func clamp(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
