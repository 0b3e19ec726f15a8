// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testPNG encodes a solid-color PNG of the given dimensions.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcessHeaderImage_ResizesWideImages(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := testPNG(t, MaxHeaderWidth*2, 400)
	result, err := p.ProcessHeaderImage(bytes.NewReader(data), "Vacation Photo.png")
	if err != nil {
		t.Fatalf("ProcessHeaderImage: %v", err)
	}

	if result.Width != MaxHeaderWidth {
		t.Errorf("Width = %d, want %d", result.Width, MaxHeaderWidth)
	}
	if result.Height != 200 {
		t.Errorf("Height = %d, want 200 (aspect preserved)", result.Height)
	}
	if !strings.HasPrefix(result.Filename, "vacation-photo-") {
		t.Errorf("Filename = %q, want slugified prefix", result.Filename)
	}
	if !strings.HasSuffix(result.Filename, ".png") {
		t.Errorf("Filename = %q, want .png extension", result.Filename)
	}

	if _, err := os.Stat(filepath.Join(dir, result.Filename)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestProcessHeaderImage_KeepsSmallImages(t *testing.T) {
	p := NewProcessor(t.TempDir())

	data := testPNG(t, 800, 600)
	result, err := p.ProcessHeaderImage(bytes.NewReader(data), "small.png")
	if err != nil {
		t.Fatalf("ProcessHeaderImage: %v", err)
	}

	if result.Width != 800 || result.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600 unchanged", result.Width, result.Height)
	}
}

func TestProcessHeaderImage_RejectsNonImages(t *testing.T) {
	p := NewProcessor(t.TempDir())

	_, err := p.ProcessHeaderImage(strings.NewReader("<html>not an image</html>"), "page.html")
	if err == nil {
		t.Fatal("ProcessHeaderImage should reject non-image data")
	}
}

func TestDelete_MissingFileIsNotAnError(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if err := p.Delete("does-not-exist.jpg"); err != nil {
		t.Errorf("Delete of missing file: %v", err)
	}
}

func TestDelete_RejectsPathEscapes(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	// filepath.Base strips the traversal; the resolved name simply
	// does not exist inside the uploads directory
	if err := p.Delete("../../etc/passwd"); err != nil {
		t.Errorf("Delete with traversal input: %v", err)
	}

	if err := p.Delete(""); err == nil {
		t.Error("Delete with empty filename should fail")
	}
}

func TestStoredFilename(t *testing.T) {
	name := storedFilename("Mürren Sunrise.webp", "webp")
	if !strings.HasPrefix(name, "murren-sunrise-") {
		t.Errorf("name = %q, want transliterated slug prefix", name)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Errorf("name = %q, want .jpg (webp is re-encoded)", name)
	}

	fallback := storedFilename("???.jpeg", "jpeg")
	if !strings.HasPrefix(fallback, "image-") {
		t.Errorf("fallback name = %q, want image- prefix", fallback)
	}
}
