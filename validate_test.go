package yoloset

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// convertFixture runs a small conversion and returns the output directory and results.
func convertFixture(t *testing.T) (string, []PairResult) {
	t.Helper()
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	for _, base := range []string{"a", "b", "c"} {
		writeLabeledPair(t, in, base, 100, 100, `{
			"imageWidth": 100, "imageHeight": 100,
			"shapes": [{"label": "car", "shape_type": "rectangle", "points": [[10, 10], [50, 50]]}]
		}`)
	}
	report, err := Convert(convertOpts(in, out))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	return out, report.Results
}

func checkByName(t *testing.T, report *ValidationReport, name string) CheckResult {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no check named %q in %+v", name, report.Checks)
	return CheckResult{}
}

func TestValidateCleanDataset(t *testing.T) {
	out, results := convertFixture(t)

	report := ValidateDataset(out, results)

	if !report.Passed || report.Anomalies != 0 {
		t.Fatalf("clean dataset: got %+v", report)
	}
	if len(report.Checks) != 5 {
		t.Errorf("got %d checks, want 5", len(report.Checks))
	}
}

func TestValidateMissingLabelFile(t *testing.T) {
	out, results := convertFixture(t)

	// Remove one label file; its image is now unaccounted for.
	removed := false
	for _, r := range results {
		path := filepath.Join(out, LabelsDir, r.Split, r.Base+".txt")
		if err := os.Remove(path); err == nil {
			removed = true
			break
		}
	}
	if !removed {
		t.Fatal("could not remove a label file")
	}

	report := ValidateDataset(out, results)
	if report.Passed {
		t.Fatal("expected the report to fail")
	}
	if c := checkByName(t, report, "image-label-correspondence"); c.Anomalies != 1 {
		t.Errorf("correspondence: got %+v, want 1 anomaly", c)
	}
}

func TestValidateOrphanLabelFile(t *testing.T) {
	out, results := convertFixture(t)

	writeFile(t, filepath.Join(out, LabelsDir, SplitTrain, "stray.txt"), "")

	report := ValidateDataset(out, results)
	if c := checkByName(t, report, "image-label-correspondence"); c.Anomalies != 1 {
		t.Errorf("correspondence: got %+v, want 1 anomaly for the stray label", c)
	}
}

func TestValidateLineCountMismatch(t *testing.T) {
	out, results := convertFixture(t)

	// Append a second, well-formed line to one label file. The recorded shape count no longer
	// matches.
	r := results[0]
	path := filepath.Join(out, LabelsDir, r.Split, r.Base+".txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	if _, err := f.WriteString("0 0.500000 0.500000 0.100000 0.100000\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	report := ValidateDataset(out, results)
	if c := checkByName(t, report, "label-line-counts"); c.Anomalies != 1 {
		t.Errorf("line counts: got %+v, want 1 anomaly", c)
	}
}

func TestValidateClassIDOutOfRange(t *testing.T) {
	out, results := convertFixture(t)

	// The dataset has one class, so id 7 is out of range.
	r := results[0]
	path := filepath.Join(out, LabelsDir, r.Split, r.Base+".txt")
	writeFile(t, path, "7 0.300000 0.300000 0.400000 0.400000\n")

	report := ValidateDataset(out, results)
	if c := checkByName(t, report, "class-id-range"); c.Anomalies != 1 {
		t.Errorf("class ids: got %+v, want 1 anomaly", c)
	}
}

func TestValidateCoordinateOutOfRange(t *testing.T) {
	out, results := convertFixture(t)

	r := results[0]
	path := filepath.Join(out, LabelsDir, r.Split, r.Base+".txt")
	writeFile(t, path, "0 1.300000 0.300000 0.400000 0.400000\n")

	report := ValidateDataset(out, results)
	if c := checkByName(t, report, "coordinate-range"); c.Anomalies != 1 {
		t.Errorf("coordinates: got %+v, want 1 anomaly", c)
	}
	// One anomaly per line, not per value.
	writeFile(t, path, "0 1.300000 -0.300000 0.400000 0.400000\n")
	report = ValidateDataset(out, results)
	if c := checkByName(t, report, "coordinate-range"); c.Anomalies != 1 {
		t.Errorf("coordinates: got %+v, want 1 anomaly for a line with two bad values", c)
	}
}

func TestValidateMissingStructure(t *testing.T) {
	out, results := convertFixture(t)

	if err := os.Remove(filepath.Join(out, ClassNamesFile)); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(out, ImagesDir, SplitVal)); err != nil {
		t.Fatal(err)
	}

	report := ValidateDataset(out, results)
	c := checkByName(t, report, "structure")
	if c.Anomalies != 2 {
		t.Errorf("structure: got %+v, want 2 anomalies (class list + val directory)", c)
	}
}

func TestValidateWithoutResults(t *testing.T) {
	out, _ := convertFixture(t)

	// Validating without the conversion report skips the recorded-count comparison but still
	// checks everything else.
	report := ValidateDataset(out, nil)
	if !report.Passed {
		t.Errorf("got %+v, want passed", report)
	}
}

func TestValidateDetailCap(t *testing.T) {
	out, results := convertFixture(t)

	// Flood one check with anomalies; the count stays exact while details are capped.
	for i := 0; i < maxDetails+10; i++ {
		writeFile(t, filepath.Join(out, LabelsDir, SplitTrain, "stray-"+strconv.Itoa(i)+".txt"), "")
	}

	report := ValidateDataset(out, results)
	c := checkByName(t, report, "image-label-correspondence")
	if c.Anomalies != maxDetails+10 {
		t.Errorf("anomalies: got %d, want %d", c.Anomalies, maxDetails+10)
	}
	if len(c.Details) != maxDetails {
		t.Errorf("details: got %d, want cap of %d", len(c.Details), maxDetails)
	}
}
