package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gogpu/gg"

	"github.com/ha1tch/deluxecanvas/internal/canvas"
	"github.com/ha1tch/deluxecanvas/internal/editor"
)

const (
	screenWidth  = 1280
	screenHeight = 800
	fontSize     = 8
	leftPanel    = 100
	rightPanel   = 200
	topBar       = 50

	exportFile = "canvas.png"
)

// GUI Control types
type Button struct {
	rect     rl.Rectangle
	text     string
	pressed  bool
	hover    bool
	selected bool
}

// Application state
type App struct {
	editor *editor.Editor
	logger *slog.Logger
	state  editor.State

	// View
	zoom      float32
	panX      float32
	panY      float32
	isPanning bool
	panStartX float32
	panStartY float32

	// UI
	toolButtons  []Button
	colorPalette []rl.Color
	currentColor rl.Color

	// Canvas texture, reloaded when the scene version moves
	texture        rl.Texture2D
	textureLoaded  bool
	textureVersion uint64

	// State
	ink        stroke
	message    string
	messageTTL time.Time
}

// Initialize application
func NewApp(ed *editor.Editor, logger *slog.Logger) *App {
	app := &App{
		editor:       ed,
		logger:       logger,
		zoom:         1.0,
		currentColor: rl.Blue,
	}
	app.state = ed.State()

	x := float32(10)
	y := float32(50)
	for i := range toolNames {
		app.toolButtons = append(app.toolButtons, Button{
			rect: rl.Rectangle{X: x + float32(i%2)*40, Y: y + float32(i/2)*40, Width: 36, Height: 36},
			text: string(toolIcons[i]),
		})
	}

	app.colorPalette = []rl.Color{
		rl.Black, rl.White, rl.Red, rl.Green, rl.Blue,
		rl.Yellow, rl.Orange, rl.Purple, rl.Pink, rl.Brown,
		rl.Gray, rl.DarkGray, rl.LightGray, rl.SkyBlue, rl.Magenta,
		{255, 0, 128, 255}, {128, 255, 0, 255}, {0, 128, 255, 255},
	}

	return app
}

// Screen to canvas coordinates
func (app *App) ScreenToCanvas(screenX, screenY float32) (float32, float32) {
	canvasX := (screenX - leftPanel - app.panX) / app.zoom
	canvasY := (screenY - topBar - app.panY) / app.zoom
	return canvasX, canvasY
}

func (app *App) CanvasToScreen(x, y float64) rl.Vector2 {
	return rl.Vector2{
		X: leftPanel + app.panX + float32(x)*app.zoom,
		Y: topBar + app.panY + float32(y)*app.zoom,
	}
}

func (app *App) notify(format string, args ...any) {
	app.message = fmt.Sprintf(format, args...)
	app.messageTTL = time.Now().Add(3 * time.Second)
}

// report logs a failed action and shows it in the top bar.
func (app *App) report(action string, err error) {
	if err == nil {
		return
	}
	app.logger.Warn("action failed", "action", action, "error", err)
	app.notify("%s FAILED: %v", action, err)
}

// RunTool performs the toolbar action for t.
func (app *App) RunTool(t ToolType) {
	switch t {
	case ToolPencil:
		_, err := app.editor.TogglePencil()
		app.report("PENCIL", err)
	case ToolBrush:
		_, err := app.editor.ToggleBrush()
		app.report("BRUSH", err)
	case ToolCircle, ToolRect, ToolTriangle:
		name, _ := t.shapeName()
		_, err := app.editor.AddShape(name)
		app.report(t.String(), err)
	case ToolText:
		app.report("TEXT", app.editor.AddText(""))
	case ToolUndo:
		undone, err := app.editor.Undo()
		app.report("UNDO", err)
		if err == nil && !undone {
			app.notify("NOTHING TO UNDO")
		}
	case ToolClear:
		app.report("CLEAR", app.editor.Clear())
	case ToolSave:
		app.Save(exportFile)
	}
}

// Save exports the canvas as a PNG file.
func (app *App) Save(filename string) {
	data, err := app.editor.Export(canvas.FormatPNG)
	if err == nil {
		err = os.WriteFile(filename, data, 0o644)
	}
	if err != nil {
		app.report("SAVE", err)
		return
	}
	app.logger.Info("canvas saved", "file", filename, "bytes", len(data))
	app.notify("SAVED %s", filename)
}

// LoadImages inserts every dropped file as an image object.
func (app *App) LoadImages(paths []string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			app.report("IMAGE", err)
			continue
		}
		err = app.editor.AddImage(f)
		f.Close()
		if err != nil {
			app.report("IMAGE", err)
			continue
		}
		app.notify("ADDED %s", filepath.Base(path))
	}
}

// Update application
func (app *App) Update() {
	mousePos := rl.GetMousePosition()

	// Handle space+drag panning
	if rl.IsKeyDown(rl.KeySpace) {
		if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			app.isPanning = true
			app.panStartX = mousePos.X - app.panX
			app.panStartY = mousePos.Y - app.panY
		}
	}

	if app.isPanning && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		app.panX = mousePos.X - app.panStartX
		app.panY = mousePos.Y - app.panStartY
	}

	if rl.IsMouseButtonReleased(rl.MouseLeftButton) || !rl.IsKeyDown(rl.KeySpace) {
		app.isPanning = false
	}

	if app.isPanning {
		return
	}

	// Handle zoom with mouse wheel
	wheel := rl.GetMouseWheelMove()
	if wheel != 0 && mousePos.X > leftPanel && mousePos.X < screenWidth-rightPanel {
		oldZoom := app.zoom
		app.zoom *= 1.0 + wheel*0.1
		app.zoom = clamp(app.zoom, 0.25, 8.0)

		if app.zoom != oldZoom {
			zoomFactor := app.zoom / oldZoom
			app.panX = mousePos.X - leftPanel - (mousePos.X-leftPanel-app.panX)*zoomFactor
			app.panY = mousePos.Y - topBar - (mousePos.Y-topBar-app.panY)*zoomFactor
		}
	}

	// Keyboard shortcuts
	if rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) {
		if rl.IsKeyPressed(rl.KeyZ) {
			app.RunTool(ToolUndo)
		}
		if rl.IsKeyPressed(rl.KeyS) {
			app.RunTool(ToolSave)
		}
	}

	if rl.IsFileDropped() {
		app.LoadImages(rl.LoadDroppedFiles())
		rl.UnloadDroppedFiles()
	}

	// Handle tool buttons
	for i := range app.toolButtons {
		btn := &app.toolButtons[i]
		btn.hover = rl.CheckCollisionPointRec(mousePos, btn.rect)
		btn.pressed = btn.hover && rl.IsMouseButtonDown(rl.MouseLeftButton)

		if btn.hover && rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			app.RunTool(ToolType(i))
		}
	}

	// Handle color palette
	paletteY := float32(300)
	for i, color := range app.colorPalette {
		x := float32(10 + (i%3)*25)
		y := paletteY + float32(i/3)*25
		rect := rl.Rectangle{X: x, Y: y, Width: 20, Height: 20}

		if rl.CheckCollisionPointRec(mousePos, rect) && rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			if err := app.editor.SetBrushColor(hexColor(color)); err != nil {
				app.report("COLOR", err)
			} else {
				app.currentColor = color
			}
		}
	}

	app.state = app.editor.State()
	for i := range app.toolButtons {
		app.toolButtons[i].selected = (i == int(ToolPencil) && app.state.Mode == "pencil") ||
			(i == int(ToolBrush) && app.state.Mode == "brush")
	}

	// Freehand strokes on the canvas
	inCanvas := mousePos.X > leftPanel && mousePos.X < screenWidth-rightPanel && mousePos.Y > topBar
	if app.state.DrawingMode {
		cx, cy := app.ScreenToCanvas(mousePos.X, mousePos.Y)
		if inCanvas && rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			app.ink.add(cx, cy)
		}
		if app.ink.active() && rl.IsMouseButtonDown(rl.MouseLeftButton) {
			app.ink.add(cx, cy)
		}
		if app.ink.active() && rl.IsMouseButtonReleased(rl.MouseLeftButton) {
			app.report("STROKE", app.editor.AddStroke(app.ink.take()))
		}
	} else {
		app.ink.take()
	}

	// Handle panning with middle mouse button
	if rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		delta := rl.GetMouseDelta()
		app.panX += delta.X
		app.panY += delta.Y
	}

	app.refreshTexture()
}

// refreshTexture re-uploads the rendered canvas when the scene changed.
func (app *App) refreshTexture() {
	if app.textureLoaded && app.textureVersion == app.state.Version {
		return
	}
	img, version, err := app.editor.Image()
	if err != nil {
		app.report("RENDER", err)
		return
	}
	rimg := rl.NewImageFromImage(img)
	if app.textureLoaded {
		rl.UnloadTexture(app.texture)
	}
	app.texture = rl.LoadTextureFromImage(rimg)
	rl.UnloadImage(rimg)
	app.textureLoaded = true
	app.textureVersion = version
}

// Draw application
func (app *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{40, 40, 40, 255})

	mousePos := rl.GetMousePosition()

	// Draw left toolbar
	rl.DrawRectangle(0, 0, leftPanel, screenHeight, rl.Color{50, 50, 50, 255})

	rl.DrawText("DELUXE CANVAS", 10, 10, fontSize, rl.White)
	rl.DrawText("TOOLS", 10, 35, fontSize, rl.LightGray)

	for i, btn := range app.toolButtons {
		color := rl.Color{70, 70, 70, 255}
		if btn.selected {
			color = rl.Color{100, 100, 150, 255}
		} else if btn.pressed {
			color = rl.Color{90, 90, 120, 255}
		} else if btn.hover {
			color = rl.Color{80, 80, 80, 255}
		}

		rl.DrawRectangleRec(btn.rect, color)
		rl.DrawRectangleLinesEx(btn.rect, 1, rl.Color{90, 90, 90, 255})

		textX := int32(btn.rect.X + btn.rect.Width/2 - 4)
		textY := int32(btn.rect.Y + btn.rect.Height/2 - 4)
		rl.DrawText(btn.text, textX, textY, fontSize, rl.White)

		if btn.hover {
			rl.DrawText(ToolType(i).String(), int32(mousePos.X+10), int32(mousePos.Y), fontSize, rl.Yellow)
		}
	}

	// Draw color palette
	rl.DrawText("COLORS", 10, 285, fontSize, rl.LightGray)
	paletteY := float32(300)
	for i, color := range app.colorPalette {
		x := float32(10 + (i%3)*25)
		y := paletteY + float32(i/3)*25
		rect := rl.Rectangle{X: x, Y: y, Width: 20, Height: 20}

		rl.DrawRectangleRec(rect, color)
		if app.currentColor == color {
			rl.DrawRectangleLinesEx(rect, 2, rl.White)
		} else {
			rl.DrawRectangleLinesEx(rect, 1, rl.Color{70, 70, 70, 255})
		}
	}

	rl.DrawRectangle(10, 460, 40, 30, rlColor(app.state.BrushColor))
	rl.DrawRectangleLines(10, 460, 40, 30, rl.White)

	app.drawObjectPanel()

	// Draw top bar
	rl.DrawRectangle(leftPanel, 0, screenWidth-leftPanel-rightPanel, topBar, rl.Color{60, 60, 60, 255})
	panStatus := ""
	if app.isPanning {
		panStatus = " | PANNING"
	}
	info := fmt.Sprintf("ZOOM: %.0f%% | SIZE: %dX%d | MODE: %s | HISTORY: %d/%d%s",
		app.zoom*100, app.state.Width, app.state.Height, app.state.Mode,
		app.state.Cursor+1, app.state.History, panStatus)
	rl.DrawText(info, leftPanel+10, 14, fontSize, rl.White)
	if app.message != "" && time.Now().Before(app.messageTTL) {
		rl.DrawText(app.message, leftPanel+10, 30, fontSize, rl.Yellow)
	}

	// Draw canvas viewport
	rl.BeginScissorMode(leftPanel, topBar, screenWidth-leftPanel-rightPanel, screenHeight-topBar)

	if app.textureLoaded {
		srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(app.state.Width), Height: float32(app.state.Height)}
		dstRect := rl.Rectangle{
			X:      leftPanel + app.panX,
			Y:      topBar + app.panY,
			Width:  float32(app.state.Width) * app.zoom,
			Height: float32(app.state.Height) * app.zoom,
		}
		rl.DrawTexturePro(app.texture, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
		rl.DrawRectangleLinesEx(dstRect, 2, rl.Color{100, 100, 100, 255})
	}

	// Draw the stroke in progress
	if app.ink.active() {
		ink := rlColor(app.state.BrushColor)
		width := float32(app.state.BrushWidth) * app.zoom
		if app.state.Mode == "pencil" {
			ink = rl.Black
		}
		pts := app.ink.points
		for i := 1; i < len(pts); i++ {
			rl.DrawLineEx(app.CanvasToScreen(pts[i-1].X, pts[i-1].Y), app.CanvasToScreen(pts[i].X, pts[i].Y), width, ink)
		}
	}

	// Draw cursor
	if app.state.DrawingMode && mousePos.X > leftPanel && mousePos.X < screenWidth-rightPanel && !app.isPanning {
		radius := float32(app.state.BrushWidth) * app.zoom / 2
		rl.DrawCircleLines(int32(mousePos.X), int32(mousePos.Y), radius+1, rl.White)
	}

	if app.isPanning {
		rl.DrawText("HAND", int32(mousePos.X+10), int32(mousePos.Y-10), fontSize, rl.Yellow)
	}

	if rl.IsKeyDown(rl.KeySpace) && !app.isPanning {
		rl.DrawText("CLICK AND DRAG TO PAN", int32(mousePos.X+10), int32(mousePos.Y+10), fontSize, rl.Yellow)
	}

	rl.EndScissorMode()

	rl.EndDrawing()
}

// drawObjectPanel lists scene objects, newest first.
func (app *App) drawObjectPanel() {
	rl.DrawRectangle(screenWidth-rightPanel, 0, rightPanel, screenHeight, rl.Color{50, 50, 50, 255})
	rl.DrawText("OBJECTS", screenWidth-rightPanel+10, 10, fontSize, rl.White)

	objects := app.editor.Objects()
	y := float32(40)
	for i := len(objects) - 1; i >= 0 && y < screenHeight-40; i-- {
		obj := objects[i]
		rl.DrawRectangle(screenWidth-rightPanel+10, int32(y), rightPanel-20, 24, rl.Color{60, 60, 60, 255})

		swatch := obj.Fill
		if swatch == "" || swatch == canvas.Transparent {
			swatch = obj.Stroke
		}
		rl.DrawRectangle(screenWidth-rightPanel+15, int32(y+4), 16, 16, rlColor(swatch))
		rl.DrawRectangleLines(screenWidth-rightPanel+15, int32(y+4), 16, 16, rl.White)

		label := string(obj.Kind)
		if obj.Kind == canvas.KindText {
			label = fmt.Sprintf("text %q", obj.Text)
		}
		rl.DrawText(label, screenWidth-rightPanel+40, int32(y+8), fontSize, rl.White)
		y += 28
	}
	rl.DrawText(fmt.Sprintf("%d OBJECTS", len(objects)), screenWidth-rightPanel+10, screenHeight-20, fontSize, rl.LightGray)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	gg.SetLogger(logger.With("component", "gg"))

	cfg := editor.DefaultConfig()
	cfg.Logger = logger
	ed, err := editor.New(cfg)
	if err != nil {
		logger.Error("create editor", "error", err)
		os.Exit(1)
	}
	defer ed.Close()

	rl.InitWindow(screenWidth, screenHeight, "Canvas Drawing App")
	rl.SetTargetFPS(60)

	app := NewApp(ed, logger)

	for !rl.WindowShouldClose() {
		app.Update()
		app.Draw()
	}

	// Clean up
	if app.textureLoaded {
		rl.UnloadTexture(app.texture)
	}
	rl.CloseWindow()
}
