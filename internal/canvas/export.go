package canvas

import (
	"bytes"
	"errors"
	"strings"
)

// Export formats accepted by ExportImage.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// jpegQuality matches the quality browsers use for canvas JPEG exports.
const jpegQuality = 92

// ExportImage renders the scene and encodes it. An empty format means PNG.
func (s *Surface) ExportImage(format string) ([]byte, error) {
	format = strings.ToLower(format)
	switch format {
	case "":
		format = FormatPNG
	case "jpg":
		format = FormatJPEG
	}
	if format != FormatPNG && format != FormatJPEG {
		return nil, &ExportError{Format: format, Err: errors.New("unsupported format")}
	}
	if err := s.ensureRendered(); err != nil {
		return nil, &ExportError{Format: format, Err: err}
	}

	var buf bytes.Buffer
	var err error
	if format == FormatPNG {
		err = s.dc.EncodePNG(&buf)
	} else {
		err = s.dc.EncodeJPEG(&buf, jpegQuality)
	}
	if err != nil {
		return nil, &ExportError{Format: format, Err: err}
	}
	return buf.Bytes(), nil
}
