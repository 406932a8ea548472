// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/container"
)

// pdfMagic starts every PDF file.
var pdfMagic = []byte("%PDF-")

// Converter turns a PDF into text. Implementations must honour ctx.
type Converter interface {
	Convert(ctx context.Context, pdf io.Reader) (string, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, pdf io.Reader) (string, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, pdf io.Reader) (string, error) {
	return f(ctx, pdf)
}

// MarkitdownConverter pipes PDFs through a markitdown container image.
type MarkitdownConverter struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdownConverter checks that image exists in rt and returns a
// converter that runs it.
func NewMarkitdownConverter(ctx context.Context, rt container.Runtime, image string) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdf converter image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt, image: image}, nil
}

// Convert runs the container with pdf on stdin and returns its stdout.
func (m *MarkitdownConverter) Convert(ctx context.Context, pdf io.Reader) (string, error) {
	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, pdf, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", ErrEmptyConversion
	}
	return out.String(), nil
}

// NewConverter returns the converter named by image, or nil when image is
// empty or no container runtime is usable. PDFs then yield metadata only.
func NewConverter(ctx context.Context, image string) (Converter, error) {
	if image == "" {
		return nil, nil
	}
	rt, err := container.Detect(ctx)
	if err != nil {
		return nil, err
	}
	return NewMarkitdownConverter(ctx, rt, image)
}

// isPDF reports whether the payload is a PDF by content type, URL suffix
// or magic bytes.
func isPDF(contentType, url string, data []byte) bool {
	return strings.Contains(contentType, "application/pdf") ||
		strings.HasSuffix(strings.ToLower(url), ".pdf") ||
		bytes.HasPrefix(data, pdfMagic)
}

// pdfBody returns the text for a PDF payload. A converter supplies the
// full text; without one, or when it fails, the body is a metadata line
// built from the page count.
func (f *Fetcher) pdfBody(ctx context.Context, url string, data []byte) (string, int) {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		f.logger.Debug("pdf page count failed", zap.String("url", url), zap.Error(err))
		pages = 0
	}
	if f.converter != nil {
		text, err := f.converter.Convert(ctx, bytes.NewReader(data))
		if err == nil {
			return text, pages
		}
		f.logger.Warn("pdf conversion failed", zap.String("url", url), zap.Error(err))
	}
	if pages > 0 {
		return fmt.Sprintf("PDF document, %d pages.", pages), pages
	}
	return "", pages
}
