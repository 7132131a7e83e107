package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Rotate returns the image rotated clockwise by degrees (90, 180, or 270),
// re-encoded as PNG. Shop-floor photos arrive in whatever orientation the
// camera was held; identifier text is only readable to OCR when upright.
func Rotate(data []byte, degrees int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	var dst *image.RGBA
	switch degrees {
	case 90, 270:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	case 180:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	default:
		return nil, fmt.Errorf("unsupported rotation %d", degrees)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px, py := x-b.Min.X, y-b.Min.Y
			switch degrees {
			case 90:
				dst.Set(b.Dy()-1-py, px, src.At(x, y))
			case 180:
				dst.Set(b.Dx()-1-px, b.Dy()-1-py, src.At(x, y))
			case 270:
				dst.Set(py, b.Dx()-1-px, src.At(x, y))
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode rotated image: %w", err)
	}
	return buf.Bytes(), nil
}
