package canvas

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/google/uuid"
	"golang.org/x/image/font/gofont/goregular"
)

// Brush is the stroke used by free-drawing mode.
type Brush struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// Surface is a mutable scene of drawable objects rendered onto a gg context.
//
// A Surface is not safe for concurrent use; the owner serializes access.
// The underlying rendering context is held until Close.
type Surface struct {
	width, height int

	initialBackground string
	background        string
	objects           []Object

	drawingMode bool
	brush       Brush

	dc       *gg.Context
	font     *text.FontSource
	ownsFont bool
	faces    map[float64]text.Face

	dirty   bool
	version uint64
	closed  bool

	logger *slog.Logger
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger used for render diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFont sets the font used for text objects. The caller keeps ownership.
func WithFont(src *text.FontSource) Option {
	return func(s *Surface) {
		if src != nil {
			s.font = src
		}
	}
}

// New creates an empty surface of the given size and background color.
func New(width, height int, background string, opts ...Option) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", width, height)
	}
	if _, err := ParseColor(background); err != nil {
		return nil, err
	}

	s := &Surface{
		width:             width,
		height:            height,
		initialBackground: background,
		background:        background,
		brush:             Brush{Color: "black", Width: 1},
		faces:             make(map[float64]text.Face),
		dirty:             true,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.font == nil {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("canvas: load default font: %w", err)
		}
		s.font = src
		s.ownsFont = true
	}
	s.dc = gg.NewContext(width, height)
	return s, nil
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// Background returns the current background color.
func (s *Surface) Background() string {
	return s.background
}

// Objects returns a copy of the scene in paint order.
func (s *Surface) Objects() []Object {
	out := make([]Object, len(s.objects))
	for i, o := range s.objects {
		out[i] = o.clone()
	}
	return out
}

// Len returns the number of objects on the surface.
func (s *Surface) Len() int {
	return len(s.objects)
}

// Version increases every time the scene changes.
func (s *Surface) Version() uint64 {
	return s.version
}

// Add appends obj to the scene, assigning an id when it has none.
func (s *Surface) Add(obj Object) error {
	if s.closed {
		return ErrClosed
	}
	if err := obj.Validate(); err != nil {
		return err
	}
	if obj.Kind == KindImage {
		if err := obj.decodeSrc(); err != nil {
			return err
		}
	}
	if obj.ID == "" {
		obj.ID = uuid.NewString()
	}
	s.objects = append(s.objects, obj.clone())
	s.changed()
	return nil
}

// Clear removes every object and restores the initial background.
func (s *Surface) Clear() error {
	if s.closed {
		return ErrClosed
	}
	s.objects = nil
	s.background = s.initialBackground
	s.changed()
	return nil
}

// SetBackground changes the background color.
func (s *Surface) SetBackground(c string) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := ParseColor(c); err != nil {
		return err
	}
	s.background = c
	s.changed()
	return nil
}

// SetDrawingMode turns free drawing on or off.
func (s *Surface) SetDrawingMode(on bool) {
	s.drawingMode = on
}

// DrawingMode reports whether free drawing is on.
func (s *Surface) DrawingMode() bool {
	return s.drawingMode
}

// SetBrush replaces the free-drawing brush.
func (s *Surface) SetBrush(b Brush) error {
	if _, err := ParseColor(b.Color); err != nil {
		return err
	}
	if b.Width <= 0 {
		return fmt.Errorf("canvas: brush width must be > 0")
	}
	s.brush = b
	return nil
}

// Brush returns the free-drawing brush.
func (s *Surface) Brush() Brush {
	return s.brush
}

// RequestRender marks the raster as stale; the next Image or export redraws.
func (s *Surface) RequestRender() {
	s.dirty = true
}

func (s *Surface) changed() {
	s.version++
	s.dirty = true
}

// Image renders the scene if needed and returns a copy of the pixels.
func (s *Surface) Image() (*image.RGBA, error) {
	if err := s.ensureRendered(); err != nil {
		return nil, err
	}
	return toRGBA(s.dc.Image()), nil
}

func (s *Surface) ensureRendered() error {
	if s.closed {
		return ErrClosed
	}
	if !s.dirty {
		return nil
	}
	return s.Render()
}

// Close releases the rendering context. It is safe to call more than once.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.objects = nil
	s.faces = nil
	err := s.dc.Close()
	if s.ownsFont {
		if ferr := s.font.Close(); err == nil {
			err = ferr
		}
	}
	return err
}

// Closed reports whether Close has been called.
func (s *Surface) Closed() bool {
	return s.closed
}
