package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func GetImageDimensions(r io.ReadSeeker) (*ImageDimensions, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	config, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	return &ImageDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// FitDimensions scales width/height down to fit inside maxWidth x maxHeight
// while keeping the aspect ratio. ok is false when no scaling is needed.
func FitDimensions(width, height, maxWidth, maxHeight uint) (newWidth, newHeight uint, ok bool) {
	if width <= maxWidth && height <= maxHeight {
		return width, height, false
	}

	widthRatio := float64(maxWidth) / float64(width)
	heightRatio := float64(maxHeight) / float64(height)

	if widthRatio < heightRatio {
		return maxWidth, uint(float64(height) * widthRatio), true
	}
	return uint(float64(width) * heightRatio), maxHeight, true
}

// DownscaleImage re-encodes the image only when it exceeds the bounds.
// The returned reader is nil when the original can be stored as is.
func DownscaleImage(r io.ReadSeeker, filename string, maxWidth, maxHeight uint) (*bytes.Reader, error) {
	dims, err := GetImageDimensions(r)
	if err != nil {
		return nil, err
	}

	newWidth, newHeight, ok := FitDimensions(uint(dims.Width), uint(dims.Height), maxWidth, maxHeight)
	if !ok {
		return nil, nil
	}

	format := strings.TrimPrefix(GetFileExtension(filename), ".")
	if format != "jpg" && format != "jpeg" && format != "png" {
		// gif and webp are stored untouched; there is no encoder for them here
		return nil, nil
	}

	img, err := decodeImage(r, filename)
	if err != nil {
		return nil, err
	}

	resized := resize.Resize(newWidth, newHeight, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := EncodeImage(resized, format, &buf, DefaultJPEGQuality); err != nil {
		return nil, err
	}

	return bytes.NewReader(buf.Bytes()), nil
}

func decodeImage(r io.Reader, filename string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	default:
		img, _, err := image.Decode(r)
		return img, err
	}
}

func EncodeImage(img image.Image, format string, writer io.Writer, quality int) error {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(writer, img)
	default:
		return errors.New("unsupported image format")
	}
}
