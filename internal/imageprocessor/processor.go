package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Processor строит миниатюры загруженных картинок
type Processor struct {
	quality int // JPEG quality (1-100)
	width   int // ширина миниатюры
}

// NewProcessor creates a new image processor
func NewProcessor(quality, thumbnailWidth int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if thumbnailWidth <= 0 {
		thumbnailWidth = 320
	}
	return &Processor{
		quality: quality,
		width:   thumbnailWidth,
	}
}

// Thumbnail декодирует картинку и возвращает уменьшенную копию.
// JPEG остается JPEG, остальные форматы кодируются в PNG.
func (p *Processor) Thumbnail(data []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	resized := p.resize(img)

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}

	if err := png.Encode(&buf, resized); err != nil {
		return nil, "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

// resize сохраняет пропорции; картинки уже миниатюры не увеличиваются
func (p *Processor) resize(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= p.width || width == 0 || height == 0 {
		return img
	}

	newWidth := p.width
	newHeight := height * newWidth / width
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// DetectFormat возвращает "jpeg", "png", "gif" или "webp", не декодируя пиксели
func DetectFormat(r io.Reader) (string, error) {
	_, format, err := image.DecodeConfig(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return format, nil
}
