package canvas

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Render rasterizes the background and every object in paint order.
func (s *Surface) Render() error {
	if s.closed {
		return ErrClosed
	}
	s.dc.ClearWithColor(gg.FromColor(mustColor(s.background)))
	for i := range s.objects {
		if err := s.draw(&s.objects[i]); err != nil {
			return fmt.Errorf("canvas: render %s %s: %w", s.objects[i].Kind, s.objects[i].ID, err)
		}
	}
	s.dirty = false
	s.logger.Debug("surface rendered", "objects", len(s.objects), "version", s.version)
	return nil
}

func (s *Surface) draw(o *Object) error {
	dc := s.dc
	switch o.Kind {
	case KindCircle:
		dc.DrawCircle(o.Left+o.Radius, o.Top+o.Radius, o.Radius)
		return s.paint(o)
	case KindRect:
		dc.DrawRectangle(o.Left, o.Top, o.Width, o.Height)
		return s.paint(o)
	case KindTriangle:
		dc.MoveTo(o.Left, o.Top+o.Height)
		dc.LineTo(o.Left+o.Width/2, o.Top)
		dc.LineTo(o.Left+o.Width, o.Top+o.Height)
		dc.ClosePath()
		return s.paint(o)
	case KindPath:
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		defer func() {
			dc.SetLineCap(gg.LineCapButt)
			dc.SetLineJoin(gg.LineJoinMiter)
		}()
		if len(o.Points) == 1 {
			// A click without movement leaves a dot.
			p := o.Points[0]
			dc.SetColor(mustColor(o.Stroke))
			dc.DrawCircle(p.X, p.Y, max(o.StrokeWidth/2, 0.5))
			return dc.Fill()
		}
		dc.MoveTo(o.Points[0].X, o.Points[0].Y)
		for _, p := range o.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		return s.paint(o)
	case KindText:
		dc.SetFont(s.face(o.FontSize))
		dc.SetColor(mustColor(o.Fill))
		// Top is the top of the line box; anchor at the baseline below it.
		dc.DrawStringAnchored(o.Text, o.Left, o.Top, 0, 1)
		return nil
	case KindImage:
		if err := o.decodeSrc(); err != nil {
			return err
		}
		dc.DrawImage(o.img, o.Left, o.Top)
		return nil
	}
	return fmt.Errorf("unknown object type %q", o.Kind)
}

// paint fills then strokes the current path using the object's colors.
func (s *Surface) paint(o *Object) error {
	dc := s.dc
	fill := mustColor(o.Fill)
	stroke := mustColor(o.Stroke)
	hasFill := o.Fill != "" && fill.A > 0
	hasStroke := o.Stroke != "" && stroke.A > 0 && o.StrokeWidth > 0

	if hasFill {
		dc.SetColor(fill)
		if hasStroke {
			if err := dc.FillPreserve(); err != nil {
				return err
			}
		} else {
			return dc.Fill()
		}
	}
	if hasStroke {
		dc.SetColor(stroke)
		dc.SetLineWidth(o.StrokeWidth)
		return dc.Stroke()
	}
	dc.ClearPath()
	return nil
}

func (s *Surface) face(size float64) text.Face {
	if size <= 0 {
		size = 20
	}
	f, ok := s.faces[size]
	if !ok {
		f = s.font.Face(size)
		s.faces[size] = f
	}
	return f
}
