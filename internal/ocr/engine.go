// Package ocr wraps the Tesseract engine via gosseract. It requires Tesseract
// to be installed on the system.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/mfg-qc/crosscheck/internal/common"
)

// Engine is one Tesseract session. Not safe for concurrent use; the analysis
// pool opens one engine per worker and closes it when the worker drains.
type Engine struct {
	client *gosseract.Client
	logger *slog.Logger
}

// NewEngine opens a Tesseract session configured from cfg. The engine must be
// closed to release the underlying native resources.
func NewEngine(cfg common.OCRConfig, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := gosseract.NewClient()
	if cfg.Language != "" {
		if err := client.SetLanguage(strings.Split(cfg.Language, "+")...); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set language %q: %w", cfg.Language, err)
		}
	}
	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata dir: %w", err)
		}
	}
	if cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set psm %d: %w", cfg.PSM, err)
		}
	}
	return &Engine{client: client, logger: logger}, nil
}

// Close releases the Tesseract session.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// ExtractText runs OCR over the image rotated by rotationDegrees (0, 90, 180,
// 270, clockwise). Confidence is the mean word confidence in 0..1; an image
// where Tesseract found no words reads as zero confidence, not an error.
func (e *Engine) ExtractText(ctx context.Context, image []byte, rotationDegrees int) (string, float32, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	data := image
	if rotationDegrees != 0 {
		rotated, err := Rotate(image, rotationDegrees)
		if err != nil {
			return "", 0, fmt.Errorf("rotate %d: %w", rotationDegrees, err)
		}
		data = rotated
	}

	if err := e.client.SetImageFromBytes(data); err != nil {
		return "", 0, fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("tesseract: %w", err)
	}

	text = strings.TrimSpace(text)
	conf := blendConfidence(e.meanWordConfidence(), text)
	e.logger.Debug("ocr pass complete",
		"rotation", rotationDegrees, "chars", len(text), "confidence", conf)
	return text, conf, nil
}

func (e *Engine) meanWordConfidence() float32 {
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return float32(sum / float64(len(boxes)))
}
