package yoloset

// Post-conversion dataset validation.

import (
	"fmt"
	"os"
	"path/filepath"
)

// CheckResult is the verdict of one validation check.
type CheckResult struct {
	Name      string   `json:"name"`
	Passed    bool     `json:"passed"`
	Anomalies int      `json:"anomalies"`
	Details   []string `json:"details,omitempty"`
}

// ValidationReport is the combined verdict over all checks. Anomalies are data, not errors;
// validation never fails a run.
type ValidationReport struct {
	Passed    bool          `json:"passed"`
	Anomalies int           `json:"anomalies"`
	Checks    []CheckResult `json:"checks"`
}

// maxDetails caps the per-check detail list so a badly broken dataset does not balloon the
// report. The anomaly count is always exact.
const maxDetails = 20

func (c *CheckResult) addAnomaly(format string, args ...interface{}) {
	c.Anomalies++
	if len(c.Details) < maxDetails {
		c.Details = append(c.Details, fmt.Sprintf(format, args...))
	}
}

// ValidateDataset re-reads the dataset under outDir and checks its structural and numeric
// integrity: required files and directories exist, every image has a label file and vice versa,
// label line counts match the shape counts recorded during conversion, class ids are within
// range of the written class list, and all coordinates are normalized.
//
// results may be nil when validating a dataset without its conversion report; the line-count
// check then only verifies that label files parse. An empty split is not an anomaly.
func ValidateDataset(outDir string, results []PairResult) *ValidationReport {
	structure := CheckResult{Name: "structure", Passed: true}
	correspondence := CheckResult{Name: "image-label-correspondence", Passed: true}
	lineCounts := CheckResult{Name: "label-line-counts", Passed: true}
	classIDs := CheckResult{Name: "class-id-range", Passed: true}
	coords := CheckResult{Name: "coordinate-range", Passed: true}

	// Structure: split directories, manifest and class list.
	for _, sub := range []string{ImagesDir, LabelsDir} {
		for _, splitName := range []string{SplitTrain, SplitVal} {
			dir := filepath.Join(outDir, sub, splitName)
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				structure.addAnomaly("missing directory %s", filepath.Join(sub, splitName))
			}
		}
	}
	var classNames []string
	if names, err := ReadClassNames(filepath.Join(outDir, ClassNamesFile)); err != nil {
		structure.addAnomaly("unreadable class list: %v", err)
	} else {
		classNames = names
	}
	if _, err := ReadManifest(filepath.Join(outDir, ManifestFile)); err != nil {
		structure.addAnomaly("unreadable manifest: %v", err)
	}

	recorded := make(map[string]PairResult, len(results))
	for _, r := range results {
		recorded[r.Split+"/"+r.Base] = r
	}

	for _, splitName := range []string{SplitTrain, SplitVal} {
		imageDir := filepath.Join(outDir, ImagesDir, splitName)
		labelDir := filepath.Join(outDir, LabelsDir, splitName)

		imageNames, _ := filesInDir(imageDir)
		labelNames, _ := filesInDir(labelDir)

		labelBases := make(map[string]bool, len(labelNames))
		for _, name := range labelNames {
			base, _ := splitBaseExt(name)
			labelBases[base] = true
		}
		imageBases := make(map[string]bool, len(imageNames))

		// Every image needs a label file; a zero-shape pair has an empty one.
		for _, name := range imageNames {
			base, _ := splitBaseExt(name)
			imageBases[base] = true
			if !labelBases[base] {
				correspondence.addAnomaly("%s/%s has no label file", splitName, name)
			}
		}
		for _, name := range labelNames {
			base, _ := splitBaseExt(name)
			if !imageBases[base] {
				correspondence.addAnomaly("%s/%s has no image", splitName, name)
			}
		}

		for _, name := range labelNames {
			base, _ := splitBaseExt(name)
			records, err := readLabelFile(filepath.Join(labelDir, name))
			if err != nil {
				lineCounts.addAnomaly("%s/%s: %v", splitName, name, err)
				continue
			}

			if r, ok := recorded[splitName+"/"+base]; ok && len(records) != r.ValidShapes {
				lineCounts.addAnomaly("%s/%s has %d lines, conversion recorded %d valid shapes",
					splitName, name, len(records), r.ValidShapes)
			}

			for i, rec := range records {
				if classNames != nil && (rec.ClassID < 0 || rec.ClassID >= len(classNames)) {
					classIDs.addAnomaly("%s/%s line %d: class id %d outside [0,%d)",
						splitName, name, i+1, rec.ClassID, len(classNames))
				}
				for _, v := range []float64{rec.CX, rec.CY, rec.W, rec.H} {
					if v < 0 || v > 1 {
						coords.addAnomaly("%s/%s line %d: value %v outside [0,1]", splitName, name, i+1, v)
						break
					}
				}
			}
		}
	}

	report := &ValidationReport{Passed: true}
	for _, c := range []CheckResult{structure, correspondence, lineCounts, classIDs, coords} {
		c.Passed = c.Anomalies == 0
		report.Checks = append(report.Checks, c)
		report.Anomalies += c.Anomalies
		if !c.Passed {
			report.Passed = false
		}
	}
	return report
}

