package yoloset

// YOLO label file reading and writing.

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TargetRecord is one output label line: a class id and a normalized bounding box.
type TargetRecord struct {
	ClassID int     `json:"classId"`
	CX      float64 `json:"cx"`
	CY      float64 `json:"cy"`
	W       float64 `json:"w"`
	H       float64 `json:"h"`
}

// writeLabelFile writes one line per record to path, space-separated with six decimal digits,
// newline-terminated. A pair with no valid shapes produces an empty file.
func writeLabelFile(path string, records []TargetRecord) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(file, &err)

	for _, r := range records {
		_, err = fmt.Fprintf(file, "%d %.6f %.6f %.6f %.6f\n", r.ClassID, r.CX, r.CY, r.W, r.H)
		if err != nil {
			return err
		}
	}

	return nil
}

// readLabelFile parses a label file written by writeLabelFile.
func readLabelFile(path string) ([]TargetRecord, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	records := make([]TargetRecord, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) != 5 {
			return nil, fmt.Errorf("%q line %d: expected 5 tokens, got %d", path, i+1, len(tokens))
		}

		var r TargetRecord
		r.ClassID, err = strconv.Atoi(tokens[0])
		if err != nil {
			return nil, fmt.Errorf("%q line %d: invalid class id %q", path, i+1, tokens[0])
		}
		values := [4]*float64{&r.CX, &r.CY, &r.W, &r.H}
		for j, v := range values {
			*v, err = strconv.ParseFloat(tokens[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%q line %d: invalid value %q", path, i+1, tokens[j+1])
			}
		}
		records = append(records, r)
	}

	return records, nil
}
