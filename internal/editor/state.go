package editor

// State is a read-only summary of an editor for front ends.
type State struct {
	Mode        string  `json:"mode"`
	DrawingMode bool    `json:"drawingMode"`
	BrushColor  string  `json:"brushColor"`
	BrushWidth  float64 `json:"brushWidth"`
	Background  string  `json:"background"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Objects     int     `json:"objects"`
	Cursor      int     `json:"cursor"`
	History     int     `json:"history"`
	CanUndo     bool    `json:"canUndo"`
	Version     uint64  `json:"version"`
	Closed      bool    `json:"closed"`
}

// State returns the current summary.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, h := e.surface.Size()
	brush := e.tools.CurrentBrush()
	return State{
		Mode:        e.tools.Mode().String(),
		DrawingMode: e.surface.DrawingMode(),
		BrushColor:  e.tools.Color(),
		BrushWidth:  brush.Width,
		Background:  e.surface.Background(),
		Width:       w,
		Height:      h,
		Objects:     e.surface.Len(),
		Cursor:      e.history.Cursor(),
		History:     e.history.Len(),
		CanUndo:     e.history.Cursor() > 0,
		Version:     e.surface.Version(),
		Closed:      e.surface.Closed(),
	}
}
