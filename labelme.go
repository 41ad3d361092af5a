package yoloset

// labelme specific functionality.

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// The shape kinds that may appear in a labelme document. Only rectangles are converted.
const shapeTypeRectangle = "rectangle"

// LabelMeShape is a single shape within a labelme file.
type LabelMeShape struct {
	Label     string       `json:"label"`
	Points    [][2]float64 `json:"points"`
	ShapeType string       `json:"shape_type"`
}

// LabelMeFile defines the labelme annotation structure for a single image.
type LabelMeFile struct {
	Shapes      []LabelMeShape `json:"shapes"`
	ImagePath   string         `json:"imagePath,omitempty"`
	ImageWidth  int            `json:"imageWidth,omitempty"`
	ImageHeight int            `json:"imageHeight,omitempty"`
}

// ParseLabelMe reads and parses a labelme annotation document from the file at path.
func ParseLabelMe(path string) (LabelMeFile, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return LabelMeFile{}, err
	}

	var doc LabelMeFile
	if err := json.Unmarshal(enc, &doc); err != nil {
		return LabelMeFile{}, fmt.Errorf("failed to parse labelme input from %q: %v", path, err)
	}

	return doc, nil
}

// FromLabelMe converts the labelme document at annotationPath into the intermediate
// representation for the image at imagePath.
//
// Non-rectangle shapes, shapes without exactly two points and shapes with an empty label are
// skipped with a warning; their count is returned in skippedShapes. Labels are taken verbatim,
// so labels differing only by case or whitespace become distinct classes.
//
// If the document does not carry positive image dimensions, they are read from the image file
// itself.
func FromLabelMe(annotationPath, imagePath string) (fileData AnnotatedFile, skippedShapes int, err error) {
	doc, err := ParseLabelMe(annotationPath)
	if err != nil {
		return AnnotatedFile{}, 0, err
	}

	width, height := doc.ImageWidth, doc.ImageHeight
	if width <= 0 || height <= 0 {
		config, _, err := decodeImageConfig(imagePath)
		if err != nil {
			return AnnotatedFile{}, 0,
				fmt.Errorf("missing dimensions in %q and cannot decode %q: %v", annotationPath, imagePath, err)
		}
		width, height = config.Width, config.Height
	}
	if width <= 0 || height <= 0 {
		return AnnotatedFile{}, 0, fmt.Errorf("non-positive image dimensions for %q", imagePath)
	}

	fileData = AnnotatedFile{
		Annotations: make([]Annotation, 0, len(doc.Shapes)),
		FilePath:    imagePath,
		ImageWidth:  width,
		ImageHeight: height,
	}
	for _, s := range doc.Shapes {
		if s.ShapeType != shapeTypeRectangle {
			log.Printf("Skipping unsupported shape type %q in %q", s.ShapeType, annotationPath)
			skippedShapes++
			continue
		}
		if len(s.Points) != 2 {
			log.Printf("Skipping rectangle with %d points in %q", len(s.Points), annotationPath)
			skippedShapes++
			continue
		}
		if strings.TrimSpace(s.Label) == "" {
			log.Printf("Skipping unlabeled rectangle in %q", annotationPath)
			skippedShapes++
			continue
		}

		fileData.Annotations = append(fileData.Annotations, Annotation{
			Coords: [4]float64{s.Points[0][0], s.Points[0][1], s.Points[1][0], s.Points[1][1]},
			Label:  s.Label,
		})
	}

	return fileData, skippedShapes, nil
}
