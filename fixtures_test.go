package yoloset

// Shared fixture helpers for the package tests.

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestImage encodes a solid-color image of the given size at path. The encoding follows the
// file extension (.png or .jpg).
func writeTestImage(t *testing.T, path string, width, height int, c color.Color) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".png") {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// writeFile writes content to path.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeLabeledPair creates an image and a matching labelme document in dir.
func writeLabeledPair(t *testing.T, dir, base string, width, height int, annotationJSON string) {
	t.Helper()
	writeTestImage(t, filepath.Join(dir, base+".jpg"), width, height, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	writeFile(t, filepath.Join(dir, base+".json"), annotationJSON)
}
