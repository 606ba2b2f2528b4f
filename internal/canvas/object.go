package canvas

import (
	"fmt"
	"slices"

	"github.com/gogpu/gg"
)

// Kind identifies the type of a drawable object.
type Kind string

const (
	KindCircle   Kind = "circle"
	KindRect     Kind = "rect"
	KindTriangle Kind = "triangle"
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindPath     Kind = "path"
)

func (k Kind) valid() bool {
	switch k {
	case KindCircle, KindRect, KindTriangle, KindText, KindImage, KindPath:
		return true
	}
	return false
}

// Point is a position on the canvas in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Object is a drawable on the surface. Which fields are meaningful depends on
// Kind. Left/Top is the top-left corner of the object's bounding box, except
// for paths whose points are absolute.
type Object struct {
	Kind        Kind    `json:"type"`
	ID          string  `json:"id"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Radius      float64 `json:"radius,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Text        string  `json:"text,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	Points      []Point `json:"points,omitempty"`

	// Src holds PNG-encoded pixels for image objects.
	Src []byte `json:"src,omitempty"`

	img *gg.ImageBuf
}

// Validate checks that the object can be rendered.
func (o *Object) Validate() error {
	if !o.Kind.valid() {
		return fmt.Errorf("unknown object type %q", o.Kind)
	}
	for _, c := range []string{o.Fill, o.Stroke} {
		if c == "" {
			continue
		}
		if _, err := ParseColor(c); err != nil {
			return err
		}
	}
	switch o.Kind {
	case KindCircle:
		if o.Radius <= 0 {
			return fmt.Errorf("circle radius must be > 0")
		}
	case KindRect, KindTriangle:
		if o.Width <= 0 || o.Height <= 0 {
			return fmt.Errorf("%s size must be > 0", o.Kind)
		}
	case KindPath:
		if len(o.Points) == 0 {
			return fmt.Errorf("path has no points")
		}
	case KindImage:
		if len(o.Src) == 0 {
			return fmt.Errorf("image has no data")
		}
	}
	return nil
}

func (o Object) clone() Object {
	o.Points = slices.Clone(o.Points)
	return o
}

// NewCircle returns the default circle: radius 50 at (100,100), red outline.
func NewCircle() Object {
	return Object{
		Kind:        KindCircle,
		Left:        100,
		Top:         100,
		Radius:      50,
		Fill:        Transparent,
		Stroke:      "red",
		StrokeWidth: 1,
	}
}

// NewRect returns the default 100x100 rectangle at (200,100), green outline.
func NewRect() Object {
	return Object{
		Kind:        KindRect,
		Left:        200,
		Top:         100,
		Width:       100,
		Height:      100,
		Fill:        Transparent,
		Stroke:      "green",
		StrokeWidth: 1,
	}
}

// NewTriangle returns the default 100x100 triangle at (300,100), blue outline.
func NewTriangle() Object {
	return Object{
		Kind:        KindTriangle,
		Left:        300,
		Top:         100,
		Width:       100,
		Height:      100,
		Fill:        Transparent,
		Stroke:      "blue",
		StrokeWidth: 1,
	}
}

// NewText returns a black 20px text object at (100,100).
func NewText(s string) Object {
	if s == "" {
		s = "Type here"
	}
	return Object{
		Kind:     KindText,
		Left:     100,
		Top:      100,
		Text:     s,
		FontSize: 20,
		Fill:     "black",
	}
}

// NewPath returns a freehand stroke through points drawn with brush.
func NewPath(points []Point, brush Brush) Object {
	minX, minY := points[0].X, points[0].Y
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
	}
	return Object{
		Kind:        KindPath,
		Left:        minX,
		Top:         minY,
		Fill:        Transparent,
		Stroke:      brush.Color,
		StrokeWidth: brush.Width,
		Points:      slices.Clone(points),
	}
}
