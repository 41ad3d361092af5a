package yoloset

// Heuristic estimation of how many labeled examples a class still needs.

import (
	"fmt"
	"sort"
	"strings"
)

// Complexity buckets an object class by how hard it is to learn.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"  // Cars, people, animals.
	ComplexityMedium  Complexity = "medium"  // Furniture, signs, tools.
	ComplexityComplex Complexity = "complex" // Small parts, components, text.
)

// baseSamples is the baseline number of labeled examples a lightweight detector needs per class,
// by complexity and target accuracy percentage. The numbers are empirical rules of thumb.
var baseSamples = map[Complexity]map[int]int{
	ComplexitySimple:  {60: 70, 70: 120, 80: 200},
	ComplexityMedium:  {60: 150, 70: 250, 80: 400},
	ComplexityComplex: {60: 300, 70: 500, 80: 800},
}

// imageSizeFactor corrects the baseline for the training image size: smaller inputs train on
// less detail and need less data, larger inputs the opposite.
var imageSizeFactor = map[int]float64{
	320:  0.8,
	640:  1.0,
	1280: 1.4,
}

var (
	simpleKeywords  = []string{"person", "car", "truck", "dog", "cat", "bird"}
	complexKeywords = []string{"screw", "component", "part", "text", "label", "character"}
)

// JudgeComplexity buckets a class by keyword matching on its name. Unknown names default to
// medium.
func JudgeComplexity(className string) Complexity {
	lower := strings.ToLower(className)
	for _, k := range simpleKeywords {
		if strings.Contains(lower, k) {
			return ComplexitySimple
		}
	}
	for _, k := range complexKeywords {
		if strings.Contains(lower, k) {
			return ComplexityComplex
		}
	}
	return ComplexityMedium
}

// ClassEstimate is the recommendation for one class.
type ClassEstimate struct {
	Label      string     `json:"label"`
	Complexity Complexity `json:"complexity"`
	Current    int        `json:"current"`  // Labeled examples present.
	Needed     int        `json:"needed"`   // Recommended total.
	Shortage   int        `json:"shortage"` // max(0, Needed-Current).
	Progress   float64    `json:"progress"` // min(100, Current/Needed*100).
}

// Estimate is the dataset-level recommendation.
type Estimate struct {
	TargetAccuracy  int             `json:"targetAccuracy"`
	ImageSize       int             `json:"imageSize"`
	Classes         []ClassEstimate `json:"classes"`
	TotalCurrent    int             `json:"totalCurrent"`
	TotalNeeded     int             `json:"totalNeeded"`
	LabeledImages   int             `json:"labeledImages"`
	UnlabeledImages int             `json:"unlabeledImages"`
	LabelRate       float64         `json:"labelRate"` // Percentage of images with annotations.
}

// EstimateDataset scans the mixed image/annotation directory at dirPath and recommends, per
// class, how many labeled examples are still needed for the given accuracy target (60, 70 or 80
// percent) at the given training image size (320, 640 or 1280).
//
// The estimate is a closed-form heuristic over the observed class counts; it keeps no state and
// reads nothing but the annotation documents.
func EstimateDataset(dirPath string, targetAccuracy, imageSize int) (*Estimate, error) {
	if _, ok := baseSamples[ComplexitySimple][targetAccuracy]; !ok {
		return nil, configErrorf("unsupported target accuracy %d, want one of 60, 70, 80", targetAccuracy)
	}
	sizeFactor, ok := imageSizeFactor[imageSize]
	if !ok {
		return nil, configErrorf("unsupported image size %d, want one of 320, 640, 1280", imageSize)
	}

	pairs, orphanImages, _, err := ResolvePairs(dirPath)
	if err != nil {
		return nil, configErrorf("cannot scan input directory: %v", err)
	}
	if len(pairs) == 0 {
		return nil, configErrorf("no labeled images found in %q", dirPath)
	}

	// Count rectangle labels per class over all matched annotations.
	counts := make(map[string]int)
	for _, p := range pairs {
		doc, err := ParseLabelMe(p.AnnotationPath)
		if err != nil {
			// Estimation is advisory; unreadable documents just do not contribute.
			continue
		}
		for _, s := range doc.Shapes {
			if s.ShapeType != shapeTypeRectangle {
				continue
			}
			if label := strings.TrimSpace(s.Label); label != "" {
				counts[label]++
			}
		}
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no rectangle labels found in %q", dirPath)
	}

	est := &Estimate{
		TargetAccuracy:  targetAccuracy,
		ImageSize:       imageSize,
		LabeledImages:   len(pairs),
		UnlabeledImages: len(orphanImages),
	}
	totalImages := len(pairs) + len(orphanImages)
	est.LabelRate = float64(len(pairs)) / float64(totalImages) * 100

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		complexity := JudgeComplexity(label)
		needed := int(float64(baseSamples[complexity][targetAccuracy]) * sizeFactor)
		current := counts[label]

		shortage := needed - current
		if shortage < 0 {
			shortage = 0
		}
		progress := float64(current) / float64(needed) * 100
		if progress > 100 {
			progress = 100
		}

		est.Classes = append(est.Classes, ClassEstimate{
			Label:      label,
			Complexity: complexity,
			Current:    current,
			Needed:     needed,
			Shortage:   shortage,
			Progress:   progress,
		})
		est.TotalCurrent += current
		est.TotalNeeded += needed
	}

	return est, nil
}
