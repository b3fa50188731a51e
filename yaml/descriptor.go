// Package yaml loads source descriptors from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/docsynth"
	"gopkg.in/yaml.v3"
)

// descriptor is the file format. Pointer fields distinguish an absent key,
// which takes the default, from an explicit zero, which fails validation.
type descriptor struct {
	Name        string   `yaml:"name"`
	BaseURL     string   `yaml:"base_url"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	MaxPages    *int     `yaml:"max_pages"`
	RateLimit   *float64 `yaml:"rate_limit"`
	Concurrency *int     `yaml:"concurrency"`

	Repo *struct {
		Path    string   `yaml:"path"`
		Include []string `yaml:"include"`
		Exclude []string `yaml:"exclude"`
	} `yaml:"repo"`

	PDF string `yaml:"pdf"`

	Categories docsynth.CategoryMap `yaml:"categories"`
	MergeMode  string               `yaml:"merge_mode"`
}

// LoadDescriptor reads and validates the descriptor at path. Relative repo
// and pdf paths are resolved against the descriptor's directory.
func LoadDescriptor(path string) (*docsynth.SourceDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, docsynth.Errorf(docsynth.EINVALID, "read descriptor: %v", err)
	}

	d, err := ParseDescriptor(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if d.RepoPath != "" && !filepath.IsAbs(d.RepoPath) {
		d.RepoPath = filepath.Join(dir, d.RepoPath)
	}
	if d.PDFPath != "" && !filepath.IsAbs(d.PDFPath) {
		d.PDFPath = filepath.Join(dir, d.PDFPath)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseDescriptor decodes a descriptor and applies defaults. Unknown keys
// are rejected. The result is not validated.
func ParseDescriptor(data []byte) (*docsynth.SourceDescriptor, error) {
	var raw descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, docsynth.Errorf(docsynth.EINVALID, "descriptor is empty")
		}
		return nil, docsynth.Errorf(docsynth.EINVALID, "parse descriptor: %v", err)
	}

	d := &docsynth.SourceDescriptor{
		Name:        raw.Name,
		BaseURL:     raw.BaseURL,
		Include:     raw.Include,
		Exclude:     raw.Exclude,
		MaxPages:    docsynth.DefaultMaxPages,
		RateLimit:   docsynth.DefaultRateLimit,
		Concurrency: docsynth.DefaultConcurrency,
		PDFPath:     raw.PDF,
		Categories:  raw.Categories,
		MergeMode:   docsynth.MergeRuleBased,
	}
	if raw.MaxPages != nil {
		d.MaxPages = *raw.MaxPages
	}
	if raw.RateLimit != nil {
		d.RateLimit = *raw.RateLimit
	}
	if raw.Concurrency != nil {
		d.Concurrency = *raw.Concurrency
	}
	if raw.Repo != nil {
		d.RepoPath = raw.Repo.Path
		d.RepoInclude = raw.Repo.Include
		d.RepoExclude = raw.Repo.Exclude
	}
	if raw.MergeMode != "" {
		d.MergeMode = docsynth.MergeMode(raw.MergeMode)
	}
	return d, nil
}
