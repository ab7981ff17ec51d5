package baseline

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type xmlBaseline struct {
	XMLName    xml.Name       `xml:"leapmd-baseline"`
	Violations []xmlViolation `xml:"violation"`
}

type xmlViolation struct {
	Rule   string `xml:"rule,attr"`
	File   string `xml:"file,attr"`
	Method string `xml:"method,attr,omitempty"`
}

// Read parses a baseline document. Relative file attributes are resolved
// against baseDir.
func Read(r io.Reader, baseDir string) (*Set, error) {
	var doc xmlBaseline
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse baseline: %w", err)
	}

	s := NewSet()
	for _, v := range doc.Violations {
		if v.Rule == "" || v.File == "" {
			continue
		}
		file := filepath.FromSlash(v.File)
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}
		s.Add(Entry{Rule: v.Rule, File: file, Signature: v.Method})
	}
	return s, nil
}

// Write serializes s. Files below baseDir are written relative to it with
// forward slashes.
func Write(w io.Writer, s *Set, baseDir string) error {
	doc := xmlBaseline{}
	for _, e := range s.Entries() {
		doc.Violations = append(doc.Violations, xmlViolation{
			Rule:   e.Rule,
			File:   relativePath(baseDir, e.File),
			Method: e.Signature,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode baseline: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func relativePath(baseDir, file string) string {
	if baseDir == "" {
		return filepath.ToSlash(file)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(absBase, normalizePath(file))
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

// Load reads the baseline at path for mode. A missing file is an error
// only in ModeValidate; otherwise it yields an empty set.
func Load(path string, mode Mode) (*Validator, error) {
	if mode == ModeNone || path == "" {
		return NewValidator(mode, nil), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && mode != ModeValidate {
			return NewValidator(mode, nil), nil
		}
		return nil, fmt.Errorf("failed to open baseline: %w", err)
	}
	defer f.Close()

	s, err := Read(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewValidator(mode, s), nil
}

// Save writes s to path, replacing any existing file.
func Save(path string, s *Set) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create baseline: %w", err)
	}
	if err := Write(f, s, filepath.Dir(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
