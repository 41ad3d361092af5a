package yoloset

import (
	"image/color"
	"path/filepath"
	"reflect"
	"testing"
)

func TestResolvePairs(t *testing.T) {
	dir := t.TempDir()

	writeTestImage(t, filepath.Join(dir, "b.jpg"), 10, 10, color.White)
	writeFile(t, filepath.Join(dir, "b.json"), `{"shapes":[]}`)
	writeTestImage(t, filepath.Join(dir, "a.png"), 10, 10, color.White)
	writeFile(t, filepath.Join(dir, "a.json"), `{"shapes":[]}`)
	writeTestImage(t, filepath.Join(dir, "lonely.jpg"), 10, 10, color.White)
	writeFile(t, filepath.Join(dir, "ghost.json"), `{"shapes":[]}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	pairs, orphanImages, orphanAnnotations, err := ResolvePairs(dir)
	if err != nil {
		t.Fatalf("ResolvePairs failed: %v", err)
	}

	if got := len(pairs); got != 2 {
		t.Fatalf("got %d pairs, want 2", got)
	}
	// Sorted by base name regardless of enumeration order.
	if pairs[0].Base != "a" || pairs[1].Base != "b" {
		t.Errorf("pair order: got %s,%s, want a,b", pairs[0].Base, pairs[1].Base)
	}
	if pairs[0].ImagePath != filepath.Join(dir, "a.png") {
		t.Errorf("image path: got %s", pairs[0].ImagePath)
	}
	if pairs[0].AnnotationPath != filepath.Join(dir, "a.json") {
		t.Errorf("annotation path: got %s", pairs[0].AnnotationPath)
	}

	if !reflect.DeepEqual(orphanImages, []string{"lonely.jpg"}) {
		t.Errorf("orphan images: got %v", orphanImages)
	}
	if !reflect.DeepEqual(orphanAnnotations, []string{"ghost.json"}) {
		t.Errorf("orphan annotations: got %v", orphanAnnotations)
	}
}

func TestResolvePairsCaseSensitiveBase(t *testing.T) {
	dir := t.TempDir()

	// Base names must match exactly; extensions are matched case-insensitively.
	writeTestImage(t, filepath.Join(dir, "Cat.jpg"), 10, 10, color.White)
	writeFile(t, filepath.Join(dir, "cat.json"), `{"shapes":[]}`)

	pairs, orphanImages, orphanAnnotations, err := ResolvePairs(dir)
	if err != nil {
		t.Fatalf("ResolvePairs failed: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("got %d pairs, want 0 for case-mismatched base names", len(pairs))
	}
	if len(orphanImages) != 1 || len(orphanAnnotations) != 1 {
		t.Errorf("got %v / %v orphans, want one of each", orphanImages, orphanAnnotations)
	}
}

func TestResolvePairsExtensionInsensitive(t *testing.T) {
	dir := t.TempDir()

	writeTestImage(t, filepath.Join(dir, "a.JPG"), 10, 10, color.White)
	writeFile(t, filepath.Join(dir, "a.json"), `{"shapes":[]}`)

	pairs, _, _, err := ResolvePairs(dir)
	if err != nil {
		t.Fatalf("ResolvePairs failed: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1 for upper-case image extension", len(pairs))
	}
}

func TestResolvePairsMissingDir(t *testing.T) {
	if _, _, _, err := ResolvePairs(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestResolvePairsEmptyDir(t *testing.T) {
	pairs, _, _, err := ResolvePairs(t.TempDir())
	if err != nil {
		t.Fatalf("ResolvePairs failed: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("got %d pairs from an empty directory", len(pairs))
	}
}
