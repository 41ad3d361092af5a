package yoloset

// Class label to integer id mapping.

import (
	"fmt"
	"os"
	"strings"
)

// ClassRegistry maps class labels to zero-based integer ids, assigned in strict first-occurrence
// order over all annotations of a conversion run.
//
// Labels are compared by exact string equality. Labels that differ only by case or surrounding
// whitespace are distinct classes; normalize labels before conversion if that is not wanted.
type ClassRegistry struct {
	ids   map[string]int
	names []string
}

// BuildClassRegistry folds over files in order, and over annotations in document order within
// each file, assigning each previously unseen label the next id. The result is frozen; the same
// input in the same order always yields the same mapping.
func BuildClassRegistry(files []AnnotatedFile) *ClassRegistry {
	r := &ClassRegistry{ids: make(map[string]int)}
	for _, f := range files {
		for _, a := range f.Annotations {
			if _, seen := r.ids[a.Label]; !seen {
				r.ids[a.Label] = len(r.names)
				r.names = append(r.names, a.Label)
			}
		}
	}
	return r
}

// ID returns the id assigned to label.
func (r *ClassRegistry) ID(label string) (int, bool) {
	id, ok := r.ids[label]
	return id, ok
}

// Len is the number of distinct classes.
func (r *ClassRegistry) Len() int {
	return len(r.names)
}

// Names returns the class labels in id order. The returned slice must not be modified.
func (r *ClassRegistry) Names() []string {
	return r.names
}

// WriteNames writes the class list to path, one label per line in id order.
func (r *ClassRegistry) WriteNames(path string) error {
	var b strings.Builder
	for _, name := range r.names {
		b.WriteString(name)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", path, err)
	}
	return nil
}

// ReadClassNames reads a class list written by WriteNames. Line order determines the ids.
func ReadClassNames(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	// A trailing empty line is not a class.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
