// Package yamlfile reads and writes journal snapshots as YAML documents.
package yamlfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tradejournal/internal/domain"
)

// CurrentVersion is the snapshot format written by Save.
const CurrentVersion = 1

// Document is a journal snapshot: strategies first so trades can reference them.
type Document struct {
	Version    int                `yaml:"version"`
	Capital    string             `yaml:"capital,omitempty"`
	Strategies []*domain.Strategy `yaml:"strategies,omitempty"`
	Trades     []*domain.Trade    `yaml:"trades"`
}

// Validate checks the document header and that every trade has an ID.
func (d *Document) Validate() error {
	if d.Version != CurrentVersion {
		return fmt.Errorf("unsupported snapshot version %d (want %d)", d.Version, CurrentVersion)
	}
	for i, t := range d.Trades {
		if t == nil {
			return fmt.Errorf("trades[%d] is empty", i)
		}
		if t.ID == "" {
			return fmt.Errorf("trades[%d] (%s) has no id", i, t.SymbolName)
		}
	}
	return nil
}

// Load reads and validates a snapshot file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Read decodes and validates a snapshot. A missing version is treated as the current one.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty snapshot")
		}
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save writes the snapshot to path, creating parent directories.
func Save(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes the snapshot with two-space indentation.
func Write(w io.Writer, doc *Document) error {
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}
