package yoloset

// The intermediate annotation metadata representation.

// Annotation is the intermediate representation of one labeled rectangle.
type Annotation struct {
	Coords [4]float64 // Absolute x1, y1, x2, y2 offsets from the top-left corner.
	Label  string
}

// Width is the object width from a.Coords.
func (a Annotation) Width() float64 {
	return a.Coords[2] - a.Coords[0]
}

// Height is the object height from a.Coords.
func (a Annotation) Height() float64 {
	return a.Coords[3] - a.Coords[1]
}

// AnnotatedFile is the intermediate representation of one image and its labels.
type AnnotatedFile struct {
	Annotations []Annotation // The rectangle annotations.
	FilePath    string       // The annotated image file.
	ImageWidth  int          // Image width in pixels. Always > 0 after parsing.
	ImageHeight int          // Image height in pixels. Always > 0 after parsing.
}
