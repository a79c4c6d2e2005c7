// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/outreach/pkg/types"
)

// ResultFile is the on-disk representation of one search and its
// extracted candidates. A saved file can be reloaded later to save
// candidates without calling the AI service again.
type ResultFile struct {
	Criteria   types.Criteria          `yaml:"criteria"`
	RawText    string                  `yaml:"raw_text"`
	Sources    []types.GroundingSource `yaml:"sources,omitempty"`
	Candidates []types.Candidate       `yaml:"candidates"`
	Summary    ResultSummary           `yaml:"summary"`
}

// ResultSummary stores result counts and a timestamp.
type ResultSummary struct {
	Candidates int       `yaml:"candidates"`
	Sources    int       `yaml:"sources"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// WriteResultFile saves the criteria, search output and candidates to a
// YAML file at path.
func WriteResultFile(path string, c types.Criteria, res types.SearchResult, candidates []types.Candidate) error {
	rf := ResultFile{
		Criteria:   c,
		RawText:    res.RawText,
		Sources:    res.Sources,
		Candidates: candidates,
		Summary: ResultSummary{
			Candidates: len(candidates),
			Sources:    len(res.Sources),
			Timestamp:  time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}

// SearchResult returns the stored raw text and sources.
func (rf *ResultFile) SearchResult() types.SearchResult {
	return types.SearchResult{RawText: rf.RawText, Sources: rf.Sources}
}
