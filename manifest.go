package yoloset

// Dataset manifest generation.

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Names of the generated dataset files and directories.
const (
	ManifestFile   = "dataset.yaml"
	ClassNamesFile = "classes.names"
	ImagesDir      = "images"
	LabelsDir      = "labels"
)

// Manifest describes a converted dataset: the class list and the relative paths to each split's
// image directory, in the layout YOLO training pipelines consume.
type Manifest struct {
	Path  string   `yaml:"path" json:"path"`
	Train string   `yaml:"train" json:"train"`
	Val   string   `yaml:"val" json:"val"`
	NC    int      `yaml:"nc" json:"nc"`
	Names []string `yaml:"names" json:"names"`
}

// WriteManifest writes dataset.yaml to outDir. It is the final step of a conversion and must only
// be called after at least one pair has been written, so a manifest never describes an empty or
// partially created dataset tree.
func WriteManifest(outDir string, classNames []string) error {
	absPath, err := filepath.Abs(outDir)
	if err != nil {
		absPath = outDir
	}

	m := Manifest{
		Path:  absPath,
		Train: filepath.Join(ImagesDir, SplitTrain),
		Val:   filepath.Join(ImagesDir, SplitVal),
		NC:    len(classNames),
		Names: classNames,
	}

	enc, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, ManifestFile)
	if err := os.WriteFile(path, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", path, err)
	}
	return nil
}

// ReadManifest reads and parses a dataset.yaml file.
func ReadManifest(path string) (Manifest, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := yaml.Unmarshal(enc, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest %q: %v", path, err)
	}
	return m, nil
}
