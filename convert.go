package yoloset

// Dataset conversion orchestration.

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Options configures a conversion run.
type Options struct {
	InputDir   string  `json:"inputDir"`   // Flat directory with images and labelme documents.
	OutputDir  string  `json:"outputDir"`  // Root of the generated dataset tree.
	TrainRatio float64 `json:"trainRatio"` // Fraction of pairs assigned to training, in (0,1).
	Seed       int64   `json:"seed"`       // Seed for the split shuffle.

	// ResizeLongerSide, when > 0, resizes each copied image so its longer side matches this
	// length. Aspect ratios are preserved, so the normalized labels stay valid.
	ResizeLongerSide int `json:"resizeLongerSide,omitempty"`
	JPEGQuality      int `json:"jpegQuality,omitempty"` // Quality for re-encoded JPEGs. Default 90.

	Workers int `json:"workers,omitempty"` // Per-pair worker count. Default 2 * NumCPU.

	TFRecords      bool `json:"tfRecords,omitempty"`      // Also export each split as TFRecord files.
	TFRecordShards int  `json:"tfRecordShards,omitempty"` // Shard files per split. Default 1.
}

// Reasons a pair can be skipped.
const (
	ReasonBadAnnotation = "bad-annotation" // The annotation document could not be read or parsed.
	ReasonBadImage      = "bad-image"      // The image file could not be read or decoded.
)

// PairError records one skipped pair and why it was skipped.
type PairError struct {
	Base   string `json:"base"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// PairResult records one successfully converted pair.
type PairResult struct {
	Base          string `json:"base"`
	Split         string `json:"split"`
	ValidShapes   int    `json:"validShapes"`
	SkippedShapes int    `json:"skippedShapes"`
}

// Report is the structured outcome of a conversion run.
type Report struct {
	RunID     string `json:"runId"`
	InputDir  string `json:"inputDir"`
	OutputDir string `json:"outputDir"`

	TotalPairs   int          `json:"totalPairs"`
	Converted    int          `json:"converted"`
	Skipped      int          `json:"skipped"`
	SkippedPairs []PairError  `json:"skippedPairs,omitempty"`
	Results      []PairResult `json:"results"`

	ShapesWritten int `json:"shapesWritten"`
	ShapesSkipped int `json:"shapesSkipped"`

	ClassCount int      `json:"classCount"`
	Classes    []string `json:"classes"`

	TrainCount int `json:"trainCount"`
	ValCount   int `json:"valCount"`

	OrphanImages      []string `json:"orphanImages,omitempty"`
	OrphanAnnotations []string `json:"orphanAnnotations,omitempty"`

	Validation *ValidationReport `json:"validation,omitempty"`
}

// Convert converts the labelme dataset in opts.InputDir into a YOLO dataset under opts.OutputDir.
//
// The input directory is never modified; images are copied, not moved. Pairs that fail to load
// are skipped and recorded, and the run succeeds as partial if at least one pair converts. The
// class list and manifest are written last, only after a successful conversion, so a manifest
// never describes a dataset that failed to materialize. Output write failures abort the run.
func Convert(opts Options) (*Report, error) {
	if opts.TrainRatio <= 0 || opts.TrainRatio >= 1 {
		return nil, configErrorf("train ratio must be in (0,1), got %v", opts.TrainRatio)
	}
	if opts.JPEGQuality < 1 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 90
	}

	pairs, orphanImages, orphanAnnotations, err := ResolvePairs(opts.InputDir)
	if err != nil {
		return nil, configErrorf("cannot scan input directory: %v", err)
	}
	if len(pairs) == 0 {
		return nil, configErrorf("no image/annotation pairs found in %q", opts.InputDir)
	}
	log.Printf("Found %d pairs, %d unlabeled images, %d orphan annotations in %q",
		len(pairs), len(orphanImages), len(orphanAnnotations), opts.InputDir)

	report := &Report{
		RunID:             uuid.NewString(),
		InputDir:          opts.InputDir,
		OutputDir:         opts.OutputDir,
		TotalPairs:        len(pairs),
		OrphanImages:      orphanImages,
		OrphanAnnotations: orphanAnnotations,
	}

	// Parse every annotation document up front so the class registry is complete and frozen
	// before any label file is written. Pairs that fail to parse are recorded now and skipped
	// during conversion.
	docs := make(map[string]AnnotatedFile, len(pairs))
	parsed := make([]AnnotatedFile, 0, len(pairs))
	for _, p := range pairs {
		fileData, skippedShapes, err := FromLabelMe(p.AnnotationPath, p.ImagePath)
		if err != nil {
			log.Printf("Error while parsing, skipping %q: %v", p.AnnotationPath, err)
			report.SkippedPairs = append(report.SkippedPairs,
				PairError{Base: p.Base, Reason: ReasonBadAnnotation, Detail: err.Error()})
			continue
		}
		report.ShapesSkipped += skippedShapes
		docs[p.Base] = fileData
		parsed = append(parsed, fileData)
	}

	registry := BuildClassRegistry(parsed)
	report.ClassCount = registry.Len()
	report.Classes = registry.Names()

	// The split covers the full pair list, including pairs that later fail to convert, so the
	// assignment depends only on (pairs, ratio, seed).
	split, err := PlanSplit(pairs, opts.TrainRatio, opts.Seed)
	if err != nil {
		return nil, err
	}

	for _, sub := range []string{ImagesDir, LabelsDir} {
		for _, name := range []string{SplitTrain, SplitVal} {
			if err := os.MkdirAll(filepath.Join(opts.OutputDir, sub, name), 0755); err != nil {
				return nil, fmt.Errorf("cannot create output directory: %v", err)
			}
		}
	}

	state := &convertState{
		opts:     opts,
		registry: registry,
		docs:     docs,
		report:   report,
		tfFiles:  map[string][]AnnotatedFile{},
	}

	type task struct {
		pair  Pair
		split string
	}
	tasks := make([]task, 0, len(pairs))
	for _, p := range split.Train {
		tasks = append(tasks, task{pair: p, split: SplitTrain})
	}
	for _, p := range split.Val {
		tasks = append(tasks, task{pair: p, split: SplitVal})
	}

	// Convert pairs concurrently from a work queue. The registry is frozen and every pair writes
	// only its own output files, so workers share nothing but the report, guarded by a mutex.
	numTasks := opts.Workers
	if numTasks <= 0 {
		numTasks = 2 * runtime.NumCPU()
	}
	if len(tasks) < numTasks {
		numTasks = len(tasks)
	}
	workQueue := make(chan task, 2*numTasks)
	fatal := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		go func() {
			defer wg.Done()
			for t := range workQueue {
				if err := state.convertPair(t.pair, t.split); err != nil {
					select {
					case fatal <- err:
					default:
					}
				}
			}
		}()
	}
	for _, t := range tasks {
		workQueue <- t
	}
	close(workQueue)
	wg.Wait()

	close(fatal)
	if err := <-fatal; err != nil {
		return nil, fmt.Errorf("output write failed: %v", err)
	}

	sort.Slice(report.Results, func(i, j int) bool { return report.Results[i].Base < report.Results[j].Base })
	sort.Slice(report.SkippedPairs, func(i, j int) bool {
		return report.SkippedPairs[i].Base < report.SkippedPairs[j].Base
	})
	report.Converted = len(report.Results)
	report.Skipped = len(report.SkippedPairs)
	for _, r := range report.Results {
		if r.Split == SplitTrain {
			report.TrainCount++
		} else {
			report.ValCount++
		}
	}

	if report.Converted == 0 {
		return report, fmt.Errorf("conversion failed: none of the %d pairs converted", report.TotalPairs)
	}

	if err := registry.WriteNames(filepath.Join(opts.OutputDir, ClassNamesFile)); err != nil {
		return nil, fmt.Errorf("output write failed: %v", err)
	}
	if err := WriteManifest(opts.OutputDir, registry.Names()); err != nil {
		return nil, fmt.Errorf("output write failed: %v", err)
	}

	if opts.TFRecords {
		if err := state.exportTFRecords(); err != nil {
			return nil, fmt.Errorf("TFRecord export failed: %v", err)
		}
	}

	report.Validation = ValidateDataset(opts.OutputDir, report.Results)

	log.Printf("Converted %d of %d pairs (%d train, %d val, %d classes)",
		report.Converted, report.TotalPairs, report.TrainCount, report.ValCount, report.ClassCount)
	return report, nil
}

// convertState is the shared state of one conversion run.
type convertState struct {
	opts     Options
	registry *ClassRegistry
	docs     map[string]AnnotatedFile

	mu      sync.Mutex
	report  *Report
	tfFiles map[string][]AnnotatedFile // Per split, for the optional TFRecord export.
}

func (s *convertState) recordSkip(e PairError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.SkippedPairs = append(s.report.SkippedPairs, e)
}

// convertPair writes the image copy and label file for one pair. Read failures on the input side
// skip the pair; write failures on the output side are returned and abort the run.
func (s *convertState) convertPair(p Pair, splitName string) error {
	fileData, parsed := s.docs[p.Base]
	if !parsed {
		// Recorded as skipped during the parse phase.
		return nil
	}

	outImagePath := filepath.Join(s.opts.OutputDir, ImagesDir, splitName, filepath.Base(p.ImagePath))

	// Place the image first. A pair whose image cannot be read leaves no output at all.
	tfFile := fileData
	if s.opts.ResizeLongerSide > 0 {
		img, _, err := loadImage(p.ImagePath)
		if err != nil {
			log.Printf("Cannot decode image, skipping %q: %v", p.ImagePath, err)
			s.recordSkip(PairError{Base: p.Base, Reason: ReasonBadImage, Detail: err.Error()})
			return nil
		}
		// Resized copies are re-encoded, so force a matching extension.
		if ext := strings.ToLower(filepath.Ext(p.ImagePath)); ext != ".png" {
			outImagePath = filepath.Join(s.opts.OutputDir, ImagesDir, splitName, p.Base+".jpg")
		}
		scale := resizeScale(img.Bounds().Dx(), img.Bounds().Dy(), s.opts.ResizeLongerSide)
		img = resizeToLongerSide(img, s.opts.ResizeLongerSide)
		if err := saveImage(outImagePath, img, s.opts.JPEGQuality); err != nil {
			return err
		}
		// The normalized labels are scale-invariant; only the TFRecord export, which carries
		// absolute coordinates, needs the scaled copy.
		tfFile = scaleAnnotated(fileData, scale)
	} else {
		in, err := os.Open(p.ImagePath)
		if err != nil {
			log.Printf("Cannot read image, skipping %q: %v", p.ImagePath, err)
			s.recordSkip(PairError{Base: p.Base, Reason: ReasonBadImage, Detail: err.Error()})
			return nil
		}
		in.Close()
		if err := copyFile(p.ImagePath, outImagePath); err != nil {
			return err
		}
	}

	// Transform and write the label lines. Degenerate rectangles are dropped, not written.
	records := make([]TargetRecord, 0, len(fileData.Annotations))
	skippedShapes := 0
	for _, a := range fileData.Annotations {
		id, ok := s.registry.ID(a.Label)
		if !ok {
			// Cannot happen: the registry was built from these documents.
			continue
		}
		cx, cy, w, h, err := NormalizeRect(a.Coords[0], a.Coords[1], a.Coords[2], a.Coords[3],
			fileData.ImageWidth, fileData.ImageHeight)
		if errors.Is(err, ErrZeroArea) {
			log.Printf("Dropping zero-area rectangle %q in %q", a.Label, p.AnnotationPath)
			skippedShapes++
			continue
		} else if err != nil {
			log.Printf("Dropping rectangle %q in %q: %v", a.Label, p.AnnotationPath, err)
			skippedShapes++
			continue
		}
		records = append(records, TargetRecord{ClassID: id, CX: cx, CY: cy, W: w, H: h})
	}

	labelPath := filepath.Join(s.opts.OutputDir, LabelsDir, splitName, p.Base+".txt")
	if err := writeLabelFile(labelPath, records); err != nil {
		return err
	}

	tfFile.FilePath = outImagePath

	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.Results = append(s.report.Results, PairResult{
		Base:          p.Base,
		Split:         splitName,
		ValidShapes:   len(records),
		SkippedShapes: skippedShapes,
	})
	s.report.ShapesWritten += len(records)
	s.report.ShapesSkipped += skippedShapes
	s.tfFiles[splitName] = append(s.tfFiles[splitName], tfFile)
	return nil
}

func (s *convertState) exportTFRecords() error {
	recordDir := filepath.Join(s.opts.OutputDir, "tfrecords")
	if err := os.MkdirAll(recordDir, 0755); err != nil {
		return err
	}
	for _, splitName := range []string{SplitTrain, SplitVal} {
		files := s.tfFiles[splitName]
		if len(files) == 0 {
			continue
		}
		path := filepath.Join(recordDir, splitName+".record")
		if err := WriteTFRecords(path, files, s.registry, s.opts.TFRecordShards); err != nil {
			return err
		}
	}
	return nil
}

// resizeScale is the uniform scale factor applied by resizeToLongerSide.
func resizeScale(width, height, longerSide int) float64 {
	longer := width
	if height > width {
		longer = height
	}
	return float64(longerSide) / float64(longer)
}

// scaleAnnotated returns a copy of f with all coordinates and dimensions scaled uniformly.
func scaleAnnotated(f AnnotatedFile, scale float64) AnnotatedFile {
	out := f
	out.Annotations = make([]Annotation, len(f.Annotations))
	for i, a := range f.Annotations {
		for j := range a.Coords {
			a.Coords[j] *= scale
		}
		out.Annotations[i] = a
	}
	out.ImageWidth = int(float64(f.ImageWidth)*scale + 0.5)
	out.ImageHeight = int(float64(f.ImageHeight)*scale + 0.5)
	return out
}
