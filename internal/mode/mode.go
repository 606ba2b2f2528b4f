// Package mode tracks which freehand tool, if any, is active.
package mode

import "github.com/ha1tch/deluxecanvas/internal/canvas"

// Mode is the active pointer tool.
type Mode int

const (
	Select Mode = iota
	Pencil
	Brush
)

func (m Mode) String() string {
	switch m {
	case Pencil:
		return "pencil"
	case Brush:
		return "brush"
	default:
		return "select"
	}
}

// Drawing reports whether the mode draws freehand strokes.
func (m Mode) Drawing() bool {
	return m == Pencil || m == Brush
}

// PencilBrush is fixed; the brush mode takes its color from the user.
var PencilBrush = canvas.Brush{Color: "black", Width: 2}

// BrushWidth is the stroke width in brush mode.
const BrushWidth = 10.0

// BrushTarget receives the drawing flag and brush.
type BrushTarget interface {
	SetDrawingMode(bool)
	SetBrush(canvas.Brush) error
}

// Machine is the tool state: the current mode and the user's brush color.
type Machine struct {
	mode  Mode
	color string
}

// New returns a machine in Select mode with the given brush color.
func New(color string) (*Machine, error) {
	if _, err := canvas.ParseColor(color); err != nil {
		return nil, err
	}
	return &Machine{color: color}, nil
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Color returns the user's brush color.
func (m *Machine) Color() string { return m.color }

// TogglePencil switches to Pencil, or back to Select if already there.
func (m *Machine) TogglePencil() Mode {
	return m.toggle(Pencil)
}

// ToggleBrush switches to Brush, or back to Select if already there.
func (m *Machine) ToggleBrush() Mode {
	return m.toggle(Brush)
}

func (m *Machine) toggle(to Mode) Mode {
	if m.mode == to {
		m.mode = Select
	} else {
		m.mode = to
	}
	return m.mode
}

// SetColor changes the user's brush color. The pencil stays black.
func (m *Machine) SetColor(color string) error {
	if _, err := canvas.ParseColor(color); err != nil {
		return err
	}
	m.color = color
	return nil
}

// CurrentBrush is the brush strokes are drawn with in the current mode.
func (m *Machine) CurrentBrush() canvas.Brush {
	if m.mode == Pencil {
		return PencilBrush
	}
	return canvas.Brush{Color: m.color, Width: BrushWidth}
}

// Apply writes the drawing flag and brush onto t.
func (m *Machine) Apply(t BrushTarget) error {
	t.SetDrawingMode(m.mode.Drawing())
	return t.SetBrush(m.CurrentBrush())
}
