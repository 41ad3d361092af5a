package yoloset

import (
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	// Decoders for the non-stdlib image formats accepted as input.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeImageConfig opens the file at path and returns the results of image.DecodeConfig.
func decodeImageConfig(path string) (config image.Config, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer file.Close()

	return image.DecodeConfig(file)
}

// loadImage reads and decodes the image at path and returns the results of image.Decode.
func loadImage(path string) (img image.Image, format string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	return image.Decode(f)
}

// saveImage saves the image to path, encoding it as PNG or JPG, depending on the file extension
// of path.
func saveImage(path string, img image.Image, jpegQuality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	}
	return err
}

// resizeToLongerSide resamples the image so that its longer side matches longerSide, preserving
// the aspect ratio. Downsampling uses a box filter, upsampling bilinear interpolation.
//
// Since the aspect ratio is preserved, normalized annotation coordinates remain valid for the
// resized image.
func resizeToLongerSide(img image.Image, longerSide int) image.Image {
	bounds := img.Bounds()
	imgWidth := bounds.Dx()
	imgHeight := bounds.Dy()

	imgLonger := imgWidth
	if imgHeight > imgWidth {
		imgLonger = imgHeight
	}
	if imgLonger == longerSide {
		return img
	}

	filter := imaging.Box
	if longerSide > imgLonger {
		filter = imaging.Linear
	}

	scale := float64(longerSide) / float64(imgLonger)
	width := int(math.Round(float64(imgWidth) * scale))
	height := int(math.Round(float64(imgHeight) * scale))

	return imaging.Resize(img, width, height, filter)
}
