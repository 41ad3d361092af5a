package yoloset

// Matching of image files to their annotation documents.

import (
	"fmt"
	"path/filepath"
	"sort"
)

// imageExtensions are the supported image file extensions (lower case).
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

const annotationExt = ".json"

// Pair is an image file and its matching annotation document, sharing a base name.
type Pair struct {
	Base           string `json:"base"`           // The shared base name without extension.
	ImagePath      string `json:"imagePath"`      // The image file.
	AnnotationPath string `json:"annotationPath"` // The annotation document.
}

// ResolvePairs scans dirPath and matches image files to annotation documents by identical base
// name. The base name comparison is case-sensitive, the extension match is not.
//
// The returned pairs are sorted by base name, independent of the directory enumeration order.
// Image files without a matching annotation and annotation files without a matching image are
// returned as orphans (also sorted), not as errors.
func ResolvePairs(dirPath string) (pairs []Pair, orphanImages, orphanAnnotations []string, err error) {
	names, err := filesInDir(dirPath)
	if err != nil {
		return nil, nil, nil, err
	}

	// Index annotation files by base name.
	annotationByBase := make(map[string]string)
	var imageNames []string
	for _, name := range names {
		base, ext := splitBaseExt(name)
		switch {
		case ext == annotationExt:
			annotationByBase[base] = name
		case imageExtensions[ext]:
			imageNames = append(imageNames, name)
		}
	}

	// Match each image to its annotation.
	matchedAnnotations := make(map[string]bool, len(annotationByBase))
	for _, name := range imageNames {
		base, _ := splitBaseExt(name)
		annotationName, found := annotationByBase[base]
		if !found {
			orphanImages = append(orphanImages, name)
			continue
		}
		matchedAnnotations[base] = true
		pairs = append(pairs, Pair{
			Base:           base,
			ImagePath:      filepath.Join(dirPath, name),
			AnnotationPath: filepath.Join(dirPath, annotationName),
		})
	}

	for base, name := range annotationByBase {
		if !matchedAnnotations[base] {
			orphanAnnotations = append(orphanAnnotations, name)
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Base < pairs[j].Base })
	sort.Strings(orphanImages)
	sort.Strings(orphanAnnotations)

	return pairs, orphanImages, orphanAnnotations, nil
}

// ConfigError reports an invalid conversion configuration, such as a missing input directory or
// an input directory with no usable image/annotation pairs.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
