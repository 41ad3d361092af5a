package yoloset

// Image quality screening for training datasets.

import (
	"image"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/lucasb-eyer/go-colorful"
)

// QualityThresholds are the limits an image is screened against. Brightness and contrast are on
// a 0-255 scale, sharpness is the variance of the Laplacian response.
type QualityThresholds struct {
	MinWidth, MinHeight int
	BrightnessMin       float64
	BrightnessMax       float64
	ContrastMin         float64
	SharpnessMin        float64
	FileSizeMin         int64
	FileSizeMax         int64
	AspectRatioMin      float64
	AspectRatioMax      float64
}

// DefaultQualityThresholds mirror the screening rules of the dataset analysis tool this
// converter grew out of.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinWidth:       320,
		MinHeight:      320,
		BrightnessMin:  30,
		BrightnessMax:  225,
		ContrastMin:    20,
		SharpnessMin:   100,
		FileSizeMin:    5 * 1024,
		FileSizeMax:    10 * 1024 * 1024,
		AspectRatioMin: 0.5,
		AspectRatioMax: 2.0,
	}
}

// Issue identifiers reported by the quality checks.
const (
	IssueLowResolution = "low-resolution"
	IssueTooDark       = "too-dark"
	IssueTooBright     = "too-bright"
	IssueLowContrast   = "low-contrast"
	IssueBlurry        = "blurry"
	IssueFileTooSmall  = "file-too-small"
	IssueFileTooLarge  = "file-too-large"
	IssueBadAspect     = "bad-aspect-ratio"
	IssueUnreadable    = "unreadable"
)

// ImageQuality is the screening result for one image.
type ImageQuality struct {
	Name       string   `json:"name"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	FileSize   int64    `json:"fileSize"`
	Brightness float64  `json:"brightness"`
	Contrast   float64  `json:"contrast"`
	Sharpness  float64  `json:"sharpness"`
	Issues     []string `json:"issues,omitempty"`
}

// QualityReport is the screening result for a directory of images.
type QualityReport struct {
	Checked     int            `json:"checked"`
	WithIssues  int            `json:"withIssues"`
	IssueCounts map[string]int `json:"issueCounts"`
	Images      []ImageQuality `json:"images"`
}

// CheckDatasetQuality screens every supported image directly in dirPath against the thresholds.
// Unreadable images are reported as an issue, not as an error.
func CheckDatasetQuality(dirPath string, t QualityThresholds) (*QualityReport, error) {
	names, err := filesInDir(dirPath)
	if err != nil {
		return nil, configErrorf("cannot scan directory: %v", err)
	}

	var imageNames []string
	for _, name := range names {
		if _, ext := splitBaseExt(name); imageExtensions[ext] {
			imageNames = append(imageNames, name)
		}
	}
	if len(imageNames) == 0 {
		return nil, configErrorf("no image files found in %q", dirPath)
	}
	sort.Strings(imageNames)
	log.Printf("Checking quality of %d images in %q", len(imageNames), dirPath)

	report := &QualityReport{IssueCounts: make(map[string]int)}
	for _, name := range imageNames {
		q := CheckImageQuality(filepath.Join(dirPath, name), t)
		q.Name = name
		report.Checked++
		if len(q.Issues) > 0 {
			report.WithIssues++
			for _, issue := range q.Issues {
				report.IssueCounts[issue]++
			}
		}
		report.Images = append(report.Images, q)
	}

	return report, nil
}

// CheckImageQuality screens a single image file.
func CheckImageQuality(path string, t QualityThresholds) ImageQuality {
	var q ImageQuality

	if info, err := os.Stat(path); err == nil {
		q.FileSize = info.Size()
		if q.FileSize < t.FileSizeMin {
			q.Issues = append(q.Issues, IssueFileTooSmall)
		} else if q.FileSize > t.FileSizeMax {
			q.Issues = append(q.Issues, IssueFileTooLarge)
		}
	}

	img, _, err := loadImage(path)
	if err != nil {
		q.Issues = append(q.Issues, IssueUnreadable)
		return q
	}

	bounds := img.Bounds()
	q.Width = bounds.Dx()
	q.Height = bounds.Dy()
	if q.Width < t.MinWidth || q.Height < t.MinHeight {
		q.Issues = append(q.Issues, IssueLowResolution)
	}
	if q.Height > 0 {
		aspect := float64(q.Width) / float64(q.Height)
		if aspect < t.AspectRatioMin || aspect > t.AspectRatioMax {
			q.Issues = append(q.Issues, IssueBadAspect)
		}
	}

	q.Brightness, q.Contrast = luminanceStats(img)
	if q.Brightness < t.BrightnessMin {
		q.Issues = append(q.Issues, IssueTooDark)
	} else if q.Brightness > t.BrightnessMax {
		q.Issues = append(q.Issues, IssueTooBright)
	}
	if q.Contrast < t.ContrastMin {
		q.Issues = append(q.Issues, IssueLowContrast)
	}

	q.Sharpness = laplacianVariance(img)
	if q.Sharpness < t.SharpnessMin {
		q.Issues = append(q.Issues, IssueBlurry)
	}

	return q
}

// luminanceSampleLimit caps the number of sampled pixels per axis so large images do not
// dominate the screening time.
const luminanceSampleLimit = 256

// luminanceStats returns the mean and standard deviation of the perceptual lightness (CIE L*)
// over a sampled pixel grid, both scaled to 0-255.
func luminanceStats(img image.Image) (mean, stddev float64) {
	bounds := img.Bounds()

	strideX := bounds.Dx()/luminanceSampleLimit + 1
	strideY := bounds.Dy()/luminanceSampleLimit + 1

	var sum, sumSq float64
	var n int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += strideY {
		for x := bounds.Min.X; x < bounds.Max.X; x += strideX {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			v := l * 255
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}

	mean = sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// laplacianKernel is the 4-neighbour Laplacian used for sharpness estimation.
func laplacianKernel() *convolution.Kernel {
	k := convolution.NewKernel(3, 3)
	k.Matrix = []float64{
		0, 1, 0,
		1, -4, 1,
		0, 1, 0,
	}
	return k
}

// laplacianVariance estimates sharpness as the variance of the Laplacian response over the
// grayscale image. Blurry images have weak edges and therefore a low variance.
func laplacianVariance(img image.Image) float64 {
	gray := effect.Grayscale(img)
	// The bias keeps negative responses representable in the 8-bit result.
	lap := convolution.Convolve(gray, laplacianKernel(), &convolution.Options{Bias: 128})

	bounds := lap.Bounds()
	var sum, sumSq float64
	var n int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(lap.RGBAAt(x, y).R)
			sum += v
			sumSq += v * v
			n++
		}
	}
	if n == 0 {
		return 0
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}
