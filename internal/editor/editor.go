// Package editor binds a canvas surface, its undo history and the drawing
// tools into one owner with a method per user action.
//
// Each mutating method changes the surface and records the result while
// holding the editor lock, so the snapshot always belongs to that action.
package editor

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/ha1tch/deluxecanvas/internal/canvas"
	"github.com/ha1tch/deluxecanvas/internal/history"
	"github.com/ha1tch/deluxecanvas/internal/metrics"
	"github.com/ha1tch/deluxecanvas/internal/mode"
)

var (
	// ErrNotDrawing is returned by AddStroke outside pencil and brush modes.
	ErrNotDrawing = errors.New("editor: not in a drawing mode")

	// ErrEmptyStroke is returned by AddStroke without points.
	ErrEmptyStroke = errors.New("editor: stroke has no points")
)

// Config sizes and colors a new editor.
type Config struct {
	Width      int
	Height     int
	Background string
	BrushColor string
	// MaxImagePixels bounds uploaded images; zero uses the canvas default.
	MaxImagePixels int
	Logger         *slog.Logger
}

// DefaultConfig matches the 800x550 light grey canvas with a blue brush.
func DefaultConfig() Config {
	return Config{
		Width:          800,
		Height:         550,
		Background:     "#f0f0f0",
		BrushColor:     "blue",
		MaxImagePixels: canvas.DefaultMaxImagePixels,
	}
}

// Editor owns one surface for its whole lifetime.
type Editor struct {
	mu      sync.Mutex
	surface *canvas.Surface
	history *history.Controller[canvas.Snapshot]
	tools   *mode.Machine
	logger  *slog.Logger

	maxImagePixels int
}

// New creates the surface, records the empty canvas and applies the
// default tool.
func New(cfg Config) (*Editor, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tools, err := mode.New(cfg.BrushColor)
	if err != nil {
		return nil, fmt.Errorf("editor: brush color: %w", err)
	}
	surface, err := canvas.New(cfg.Width, cfg.Height, cfg.Background, canvas.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := tools.Apply(surface); err != nil {
		surface.Close()
		return nil, err
	}
	h, err := history.New[canvas.Snapshot](surface)
	if err != nil {
		surface.Close()
		return nil, err
	}
	return &Editor{
		surface: surface,
		history: h,
		tools:   tools,
		logger:  logger,

		maxImagePixels: cfg.MaxImagePixels,
	}, nil
}

// mutate runs change and records the resulting state. It is the only path
// by which actions modify the surface. If the state cannot be recorded the
// surface is rolled back to the last recorded snapshot.
func (e *Editor) mutate(action string, change func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.mutateLocked(change)
	metrics.Action(action, err)
	if err != nil {
		e.logger.Warn("action failed", "action", action, "error", err)
		return err
	}
	e.logger.Debug("action applied", "action", action,
		"cursor", e.history.Cursor(), "objects", e.surface.Len())
	return nil
}

func (e *Editor) mutateLocked(change func() error) error {
	if e.surface.Closed() {
		return canvas.ErrClosed
	}
	if err := change(); err != nil {
		return err
	}
	if err := e.history.Record(); err != nil {
		// Put the scene back to the last recorded state so the log and the
		// surface stay in step.
		if prev, ok := e.history.Current(); ok {
			if rerr := e.surface.Restore(prev); rerr != nil {
				return errors.Join(err, rerr)
			}
		}
		return err
	}
	return nil
}

// Shape returns the default object for a toolbar shape name.
func Shape(name string) (canvas.Object, bool) {
	switch name {
	case "circle":
		return canvas.NewCircle(), true
	case "rectangle", "rect":
		return canvas.NewRect(), true
	case "triangle":
		return canvas.NewTriangle(), true
	}
	return canvas.Object{}, false
}

// AddShape inserts the named shape. Unknown names are ignored and report
// false.
func (e *Editor) AddShape(name string) (bool, error) {
	obj, ok := Shape(name)
	if !ok {
		e.logger.Debug("unknown shape ignored", "shape", name)
		return false, nil
	}
	if err := e.mutate("shape", func() error { return e.surface.Add(obj) }); err != nil {
		return false, err
	}
	return true, nil
}

// AddText inserts a text object; empty text gets the placeholder.
func (e *Editor) AddText(s string) error {
	return e.mutate("text", func() error { return e.surface.Add(canvas.NewText(s)) })
}

// AddImage decodes r and inserts it at the origin, scaled down to fit.
// Decoding happens before the lock is taken.
func (e *Editor) AddImage(r io.Reader) error {
	w, h := e.surface.Size()
	obj, err := canvas.NewImageObject(r, w, h, e.maxImagePixels)
	if err != nil {
		metrics.Action("image", err)
		e.logger.Warn("image upload rejected", "error", err)
		return err
	}
	return e.mutate("image", func() error { return e.surface.Add(obj) })
}

// AddStroke inserts a freehand stroke drawn with the current brush.
func (e *Editor) AddStroke(points []canvas.Point) error {
	return e.mutate("stroke", func() error {
		if !e.tools.Mode().Drawing() {
			return ErrNotDrawing
		}
		if len(points) == 0 {
			return ErrEmptyStroke
		}
		return e.surface.Add(canvas.NewPath(points, e.tools.CurrentBrush()))
	})
}

// Clear removes every object and records the cleared canvas.
func (e *Editor) Clear() error {
	return e.mutate("clear", e.surface.Clear)
}

// Undo restores the previous snapshot. At the oldest one it does nothing
// and reports false.
func (e *Editor) Undo() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.surface.Closed() {
		return false, canvas.ErrClosed
	}
	undone, err := e.history.Undo()
	metrics.Action("undo", err)
	if err != nil {
		e.logger.Warn("undo failed", "error", err)
		return false, err
	}
	if !undone {
		metrics.UndoNoop()
	}
	e.logger.Debug("undo", "undone", undone, "cursor", e.history.Cursor())
	return undone, nil
}

// TogglePencil switches pencil mode on or back to select.
func (e *Editor) TogglePencil() (mode.Mode, error) {
	return e.setTool(e.tools.TogglePencil)
}

// ToggleBrush switches brush mode on or back to select.
func (e *Editor) ToggleBrush() (mode.Mode, error) {
	return e.setTool(e.tools.ToggleBrush)
}

func (e *Editor) setTool(toggle func() mode.Mode) (mode.Mode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.surface.Closed() {
		return e.tools.Mode(), canvas.ErrClosed
	}
	m := toggle()
	if err := e.tools.Apply(e.surface); err != nil {
		return m, err
	}
	e.logger.Debug("tool changed", "mode", m.String())
	return m, nil
}

// SetBrushColor changes the user's brush color.
func (e *Editor) SetBrushColor(c string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.surface.Closed() {
		return canvas.ErrClosed
	}
	if err := e.tools.SetColor(c); err != nil {
		return err
	}
	return e.tools.Apply(e.surface)
}

// Export renders and encodes the canvas.
func (e *Editor) Export(format string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := e.surface.ExportImage(format)
	metrics.Action("export", err)
	if err != nil {
		e.logger.Warn("export failed", "format", format, "error", err)
		return nil, err
	}
	metrics.Exported(len(data))
	return data, nil
}

// Image returns the rendered canvas and the scene version it shows.
func (e *Editor) Image() (*image.RGBA, uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	img, err := e.surface.Image()
	return img, e.surface.Version(), err
}

// Version increases whenever the scene changes.
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Version()
}

// Objects returns a copy of the scene.
func (e *Editor) Objects() []canvas.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Objects()
}

// Snapshot returns the serialized current scene.
func (e *Editor) Snapshot() (canvas.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Serialize()
}

// Close releases the surface. Later actions return canvas.ErrClosed.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Close()
}
