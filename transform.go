package yoloset

// Rectangle coordinate normalization.

import (
	"errors"
	"fmt"
)

// ErrZeroArea marks a rectangle whose corner points span no area. Such boxes are untrainable and
// are dropped from the output.
var ErrZeroArea = errors.New("zero-area rectangle")

// NormalizeRect converts a rectangle given by two corner points (in either diagonal order) into
// normalized center-x, center-y, width and height for an image of width x height pixels.
//
// Each value is divided by the image width or height and then clamped to [0,1], so annotations
// that extend slightly past the image bounds still produce valid output.
func NormalizeRect(x1, y1, x2, y2 float64, width, height int) (cx, cy, w, h float64, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, 0, 0, fmt.Errorf("non-positive image dimensions %dx%d", width, height)
	}

	xmin, xmax := x1, x2
	if xmin > xmax {
		xmin, xmax = xmax, xmin
	}
	ymin, ymax := y1, y2
	if ymin > ymax {
		ymin, ymax = ymax, ymin
	}
	if xmin == xmax || ymin == ymax {
		return 0, 0, 0, 0, ErrZeroArea
	}

	fw, fh := float64(width), float64(height)
	cx = clamp01((xmin + xmax) / 2 / fw)
	cy = clamp01((ymin + ymax) / 2 / fh)
	w = clamp01((xmax - xmin) / fw)
	h = clamp01((ymax - ymin) / fh)

	return cx, cy, w, h, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
