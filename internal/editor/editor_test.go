package editor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/deluxecanvas/internal/canvas"
	"github.com/ha1tch/deluxecanvas/internal/mode"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func kinds(e *Editor) []canvas.Kind {
	var out []canvas.Kind
	for _, o := range e.Objects() {
		out = append(out, o.Kind)
	}
	return out
}

func TestNewStartsEmpty(t *testing.T) {
	e := newTestEditor(t)
	st := e.State()

	assert.Equal(t, 0, st.Cursor)
	assert.Equal(t, 1, st.History)
	assert.False(t, st.CanUndo)
	assert.Equal(t, "select", st.Mode)
	assert.False(t, st.DrawingMode)
	assert.Equal(t, 800, st.Width)
	assert.Equal(t, 550, st.Height)
	assert.Equal(t, "#f0f0f0", st.Background)
	assert.Equal(t, "blue", st.BrushColor)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BrushColor = "nope"
	_, err := New(cfg)
	assert.ErrorIs(t, err, canvas.ErrInvalidColor)

	cfg = DefaultConfig()
	cfg.Width = 0
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestCircleRectangleUndoScenario(t *testing.T) {
	e := newTestEditor(t)
	empty, err := e.Snapshot()
	require.NoError(t, err)

	added, err := e.AddShape("circle")
	require.NoError(t, err)
	require.True(t, added)
	oneCircle, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, e.State().Cursor)

	_, err = e.AddShape("rectangle")
	require.NoError(t, err)
	assert.Equal(t, 2, e.State().Cursor)
	assert.Equal(t, []canvas.Kind{canvas.KindCircle, canvas.KindRect}, kinds(e))

	undone, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, undone)
	got, _ := e.Snapshot()
	assert.Equal(t, oneCircle, got)

	undone, err = e.Undo()
	require.NoError(t, err)
	assert.True(t, undone)
	got, _ = e.Snapshot()
	assert.Equal(t, empty, got)

	undone, err = e.Undo()
	require.NoError(t, err)
	assert.False(t, undone)
	got, _ = e.Snapshot()
	assert.Equal(t, empty, got)
	assert.Equal(t, 0, e.State().Cursor)
}

func TestUnknownShapeIsNoop(t *testing.T) {
	e := newTestEditor(t)

	added, err := e.AddShape("hexagon")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, e.State().History)
	assert.Zero(t, e.State().Objects)
}

func TestShapeNames(t *testing.T) {
	for name, want := range map[string]canvas.Kind{
		"circle":    canvas.KindCircle,
		"rectangle": canvas.KindRect,
		"rect":      canvas.KindRect,
		"triangle":  canvas.KindTriangle,
	} {
		obj, ok := Shape(name)
		require.True(t, ok, name)
		assert.Equal(t, want, obj.Kind, name)
	}
	_, ok := Shape("")
	assert.False(t, ok)
}

func TestAddTextUsesPlaceholder(t *testing.T) {
	e := newTestEditor(t)

	require.NoError(t, e.AddText(""))
	require.NoError(t, e.AddText("hello"))

	objs := e.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "Type here", objs[0].Text)
	assert.Equal(t, "hello", objs[1].Text)
	assert.Equal(t, 2, e.State().Cursor)
}

func TestClearIsRecorded(t *testing.T) {
	e := newTestEditor(t)
	_, err := e.AddShape("triangle")
	require.NoError(t, err)

	require.NoError(t, e.Clear())
	assert.Zero(t, e.State().Objects)
	assert.Equal(t, 2, e.State().Cursor)

	undone, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, undone)
	assert.Equal(t, []canvas.Kind{canvas.KindTriangle}, kinds(e))
}

func TestRecordAfterUndoTruncates(t *testing.T) {
	e := newTestEditor(t)
	for _, s := range []string{"circle", "rectangle", "triangle"} {
		_, err := e.AddShape(s)
		require.NoError(t, err)
	}
	_, err := e.Undo()
	require.NoError(t, err)
	_, err = e.Undo()
	require.NoError(t, err)
	cursor := e.State().Cursor

	require.NoError(t, e.AddText("x"))

	st := e.State()
	assert.Equal(t, cursor+2, st.History)
	assert.Equal(t, []canvas.Kind{canvas.KindCircle, canvas.KindText}, kinds(e))
}

func TestStrokeRequiresDrawingMode(t *testing.T) {
	e := newTestEditor(t)
	pts := []canvas.Point{{X: 10, Y: 10}, {X: 20, Y: 30}}

	assert.ErrorIs(t, e.AddStroke(pts), ErrNotDrawing)
	assert.Equal(t, 1, e.State().History)

	m, err := e.TogglePencil()
	require.NoError(t, err)
	assert.Equal(t, mode.Pencil, m)
	assert.True(t, e.State().DrawingMode)

	assert.ErrorIs(t, e.AddStroke(nil), ErrEmptyStroke)
	require.NoError(t, e.AddStroke(pts))

	objs := e.Objects()
	require.Len(t, objs, 1)
	assert.Equal(t, canvas.KindPath, objs[0].Kind)
	assert.Equal(t, "black", objs[0].Stroke)
	assert.Equal(t, 2.0, objs[0].StrokeWidth)
}

func TestBrushStrokeUsesSelectedColor(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.SetBrushColor("#ff0000"))
	_, err := e.ToggleBrush()
	require.NoError(t, err)

	require.NoError(t, e.AddStroke([]canvas.Point{{X: 1, Y: 1}}))

	objs := e.Objects()
	require.Len(t, objs, 1)
	assert.Equal(t, "#ff0000", objs[0].Stroke)
	assert.Equal(t, 10.0, objs[0].StrokeWidth)
}

func TestToggleTwiceTurnsDrawingOff(t *testing.T) {
	e := newTestEditor(t)

	_, err := e.TogglePencil()
	require.NoError(t, err)
	m, err := e.TogglePencil()
	require.NoError(t, err)

	assert.Equal(t, mode.Select, m)
	assert.False(t, e.State().DrawingMode)
}

func TestPencilThenBrushKeepsDrawing(t *testing.T) {
	e := newTestEditor(t)

	_, err := e.TogglePencil()
	require.NoError(t, err)
	m, err := e.ToggleBrush()
	require.NoError(t, err)

	assert.Equal(t, mode.Brush, m)
	assert.True(t, e.State().DrawingMode)
}

func TestSetBrushColorRejectsInvalid(t *testing.T) {
	e := newTestEditor(t)
	assert.ErrorIs(t, e.SetBrushColor("nope"), canvas.ErrInvalidColor)
	assert.Equal(t, "blue", e.State().BrushColor)
}

func TestAddImage(t *testing.T) {
	e := newTestEditor(t)
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	require.NoError(t, e.AddImage(&buf))
	assert.Equal(t, []canvas.Kind{canvas.KindImage}, kinds(e))
	assert.Equal(t, 1, e.State().Cursor)
}

func TestAddImageDecodeError(t *testing.T) {
	e := newTestEditor(t)

	err := e.AddImage(strings.NewReader("not an image"))
	var decodeErr *canvas.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 1, e.State().History)
}

func TestExport(t *testing.T) {
	e := newTestEditor(t)

	blank, err := e.Export("png")
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(blank))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 550, cfg.Height)

	_, err = e.AddShape("circle")
	require.NoError(t, err)
	data, err := e.Export("png")
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = e.Export("gif")
	var exportErr *canvas.ExportError
	assert.ErrorAs(t, err, &exportErr)
}

func TestImageTracksVersion(t *testing.T) {
	e := newTestEditor(t)
	_, v0, err := e.Image()
	require.NoError(t, err)

	_, err = e.AddShape("circle")
	require.NoError(t, err)

	img, v1, err := e.Image()
	require.NoError(t, err)
	assert.Greater(t, v1, v0)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestClosedEditorRejectsActions(t *testing.T) {
	e := newTestEditor(t)
	require.NoError(t, e.Close())

	_, err := e.AddShape("circle")
	assert.ErrorIs(t, err, canvas.ErrClosed)
	assert.ErrorIs(t, e.AddText(""), canvas.ErrClosed)
	assert.ErrorIs(t, e.Clear(), canvas.ErrClosed)
	_, err = e.Undo()
	assert.ErrorIs(t, err, canvas.ErrClosed)
	_, err = e.TogglePencil()
	assert.ErrorIs(t, err, canvas.ErrClosed)
	assert.ErrorIs(t, e.SetBrushColor("red"), canvas.ErrClosed)
	_, err = e.Export("png")
	assert.ErrorIs(t, err, canvas.ErrClosed)
	assert.True(t, e.State().Closed)
}

func TestFailedRecordRollsBack(t *testing.T) {
	e := newTestEditor(t)
	_, err := e.AddShape("circle")
	require.NoError(t, err)
	before, err := e.Snapshot()
	require.NoError(t, err)

	// NaN coordinates pass validation but cannot be serialized.
	bad := canvas.NewRect()
	bad.Left = math.NaN()
	err = e.mutate("shape", func() error { return e.surface.Add(bad) })
	require.Error(t, err)

	st := e.State()
	assert.Equal(t, 1, st.Objects)
	assert.Equal(t, 1, st.Cursor)
	assert.Equal(t, 2, st.History)
	got, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, before, got)

	undone, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, undone)
	assert.Zero(t, e.State().Objects)
}

func TestAddImagePixelLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxImagePixels = 32
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	var decodeErr *canvas.DecodeError
	assert.ErrorAs(t, e.AddImage(&buf), &decodeErr)
	assert.Equal(t, 1, e.State().History)
}

func TestConcurrentActionsEachRecordOnce(t *testing.T) {
	e := newTestEditor(t)
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.AddShape("circle")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st := e.State()
	assert.Equal(t, n, st.Objects)
	assert.Equal(t, n, st.Cursor)
	assert.Equal(t, n+1, st.History)

	for i := n; i > 0; i-- {
		undone, err := e.Undo()
		require.NoError(t, err)
		require.True(t, undone)
		assert.Equal(t, i-1, e.State().Objects)
	}
}
