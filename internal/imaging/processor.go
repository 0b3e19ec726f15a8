// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging processes uploaded post header images using pure Go libraries.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/goblog/internal/util"
)

// MaxHeaderWidth is the maximum width of a stored header image.
// Larger uploads are scaled down preserving aspect ratio.
const MaxHeaderWidth = 1600

// jpegQuality is the encode quality for processed images.
const jpegQuality = 90

// Result contains the outcome of processing an uploaded image.
type Result struct {
	// Filename is the stored file name within the uploads directory.
	Filename string
	Width    int
	Height   int
	Size     int64
}

// Processor handles header image uploads.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a new image processor writing to uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// ProcessHeaderImage reads an uploaded image, fixes EXIF orientation,
// scales it down to MaxHeaderWidth, and saves it under a slugified,
// collision-free name. Returns metadata about the stored file.
func (p *Processor) ProcessHeaderImage(reader io.Reader, originalFilename string) (*Result, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	// Auto-rotate per EXIF before the encoder drops the metadata
	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	if img.Bounds().Dx() > MaxHeaderWidth {
		img = imaging.Resize(img, MaxHeaderWidth, 0, imaging.Lanczos)
	}

	encoded, err := encodeImage(img, format)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	filename := storedFilename(originalFilename, format)
	if err := p.save(filename, encoded); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &Result{
		Filename: filename,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     int64(len(encoded)),
	}, nil
}

// Delete removes a stored image by filename. Missing files are not an error.
func (p *Processor) Delete(filename string) error {
	safe := filepath.Base(filename)
	if safe == "." || safe == ".." || safe == "" {
		return fmt.Errorf("invalid filename")
	}
	if err := os.Remove(filepath.Join(p.uploadDir, safe)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// storedFilename builds a slugified, unique name for an uploaded file.
func storedFilename(originalFilename, format string) string {
	base := strings.TrimSuffix(filepath.Base(originalFilename), filepath.Ext(originalFilename))
	slug := util.Slugify(base)
	if slug == "" {
		slug = "image"
	}

	ext := "." + format
	if format == "jpeg" || format == "webp" {
		// WebP is re-encoded as JPEG; pure Go has no WebP encoder
		ext = ".jpg"
	}

	return fmt.Sprintf("%s-%s%s", slug, uuid.NewString()[:8], ext)
}

// save writes image data into the uploads directory, refusing path escapes.
func (p *Processor) save(filename string, data []byte) error {
	safe := filepath.Base(filename)
	if safe == "." || safe == ".." || safe == "" {
		return fmt.Errorf("invalid filename")
	}

	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(p.uploadDir, safe), data, 0o644); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies an EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes an image to bytes in the given format.
// WebP input is re-encoded as JPEG.
func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
