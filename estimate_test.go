package yoloset

import (
	"errors"
	"image/color"
	"math"
	"path/filepath"
	"testing"
)

func TestJudgeComplexity(t *testing.T) {
	tests := []struct {
		name string
		want Complexity
	}{
		{"car", ComplexitySimple},
		{"red_car", ComplexitySimple},
		{"Person", ComplexitySimple},
		{"screw_m3", ComplexityComplex},
		{"text_region", ComplexityComplex},
		{"chair", ComplexityMedium},
		{"unknown_thing", ComplexityMedium},
	}
	for _, tt := range tests {
		if got := JudgeComplexity(tt.name); got != tt.want {
			t.Errorf("JudgeComplexity(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEstimateDataset(t *testing.T) {
	dir := t.TempDir()

	// Two labeled images with three car boxes total plus one polygon (not counted), and one
	// unlabeled image.
	writeLabeledPair(t, dir, "a", 100, 100, `{
		"imageWidth": 100, "imageHeight": 100,
		"shapes": [
			{"label": "car", "shape_type": "rectangle", "points": [[10, 10], [50, 50]]},
			{"label": "car", "shape_type": "rectangle", "points": [[60, 60], [90, 90]]},
			{"label": "road", "shape_type": "polygon", "points": [[0, 0], [5, 0], [5, 5]]}
		]
	}`)
	writeLabeledPair(t, dir, "b", 100, 100, `{
		"imageWidth": 100, "imageHeight": 100,
		"shapes": [{"label": "car", "shape_type": "rectangle", "points": [[10, 10], [50, 50]]}]
	}`)
	writeTestImage(t, filepath.Join(dir, "extra.jpg"), 10, 10, color.White)

	est, err := EstimateDataset(dir, 70, 640)
	if err != nil {
		t.Fatalf("EstimateDataset failed: %v", err)
	}

	if est.LabeledImages != 2 || est.UnlabeledImages != 1 {
		t.Errorf("images: got %d/%d labeled/unlabeled, want 2/1", est.LabeledImages, est.UnlabeledImages)
	}
	if want := 2.0 / 3.0 * 100; math.Abs(est.LabelRate-want) > 1e-9 {
		t.Errorf("label rate: got %v, want %v", est.LabelRate, want)
	}

	if len(est.Classes) != 1 {
		t.Fatalf("got %d classes, want 1 (polygons do not count)", len(est.Classes))
	}
	c := est.Classes[0]
	if c.Label != "car" || c.Complexity != ComplexitySimple {
		t.Errorf("class: got %+v", c)
	}
	// Simple at 70% accuracy and size 640 is the 120-sample baseline unscaled.
	if c.Current != 3 || c.Needed != 120 || c.Shortage != 117 {
		t.Errorf("counts: got current=%d needed=%d shortage=%d, want 3/120/117", c.Current, c.Needed, c.Shortage)
	}
	if want := 3.0 / 120.0 * 100; math.Abs(c.Progress-want) > 1e-9 {
		t.Errorf("progress: got %v, want %v", c.Progress, want)
	}
}

func TestEstimateImageSizeScaling(t *testing.T) {
	dir := t.TempDir()
	writeLabeledPair(t, dir, "a", 100, 100, `{
		"imageWidth": 100, "imageHeight": 100,
		"shapes": [{"label": "chair", "shape_type": "rectangle", "points": [[10, 10], [50, 50]]}]
	}`)

	// Medium at 80% accuracy: 400 baseline, scaled by the image size factor.
	tests := []struct {
		imageSize  int
		wantNeeded int
	}{
		{320, 320},  // 400 * 0.8
		{640, 400},  // 400 * 1.0
		{1280, 560}, // 400 * 1.4
	}
	for _, tt := range tests {
		est, err := EstimateDataset(dir, 80, tt.imageSize)
		if err != nil {
			t.Fatalf("size %d: %v", tt.imageSize, err)
		}
		if got := est.Classes[0].Needed; got != tt.wantNeeded {
			t.Errorf("size %d: needed = %d, want %d", tt.imageSize, got, tt.wantNeeded)
		}
	}
}

func TestEstimateProgressCapped(t *testing.T) {
	dir := t.TempDir()

	// 80 dog boxes against a 56-sample target (simple, 60%, size 320) exceeds the goal; progress
	// caps at 100 and shortage at 0.
	shapes := ""
	for i := 0; i < 80; i++ {
		if i > 0 {
			shapes += ","
		}
		shapes += `{"label": "dog", "shape_type": "rectangle", "points": [[1, 1], [9, 9]]}`
	}
	writeLabeledPair(t, dir, "a", 100, 100,
		`{"imageWidth": 100, "imageHeight": 100, "shapes": [`+shapes+`]}`)

	est, err := EstimateDataset(dir, 60, 320)
	if err != nil {
		t.Fatalf("EstimateDataset failed: %v", err)
	}
	c := est.Classes[0]
	if c.Needed != 56 || c.Shortage != 0 || c.Progress != 100 {
		t.Errorf("got needed=%d shortage=%d progress=%v, want 56/0/100", c.Needed, c.Shortage, c.Progress)
	}
}

func TestEstimateInvalidParameters(t *testing.T) {
	dir := t.TempDir()
	writeLabeledPair(t, dir, "a", 100, 100, `{
		"imageWidth": 100, "imageHeight": 100,
		"shapes": [{"label": "car", "shape_type": "rectangle", "points": [[10, 10], [50, 50]]}]
	}`)

	for _, tt := range []struct{ target, size int }{{75, 640}, {0, 640}, {70, 512}, {70, 0}} {
		_, err := EstimateDataset(dir, tt.target, tt.size)
		var configErr *ConfigError
		if !errors.As(err, &configErr) {
			t.Errorf("target=%d size=%d: got err %v, want a ConfigError", tt.target, tt.size, err)
		}
	}
}

func TestEstimateEmptyDir(t *testing.T) {
	_, err := EstimateDataset(t.TempDir(), 70, 640)
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("got err %v, want a ConfigError for a directory without pairs", err)
	}
}
