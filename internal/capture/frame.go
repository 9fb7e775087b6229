package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"time"
)

// PNGMIMEType is the transport encoding for frames sent to the model.
const PNGMIMEType = "image/png"

// Frame is one captured screen image. Frames are never mutated after capture.
type Frame struct {
	Image      image.Image
	CapturedAt time.Time
}

// EncodePNG serializes the frame losslessly for transmission.
func EncodePNG(f Frame) ([]byte, error) {
	if f.Image == nil {
		return nil, fmt.Errorf("encode frame captured at %s: no image", f.CapturedAt.Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, f.Image); err != nil {
		return nil, fmt.Errorf("encode frame png: %w", err)
	}
	return buf.Bytes(), nil
}
