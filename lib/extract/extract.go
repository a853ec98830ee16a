// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Zuuber/infopath-extractor/lib/clock"
	"github.com/Zuuber/infopath-extractor/lib/infopath"
	"github.com/Zuuber/infopath-extractor/lib/sink"
	"github.com/Zuuber/infopath-extractor/lib/xmlscan"
)

// Options configures an Extractor. It is passed in explicitly; the
// extractor reads no global state.
type Options struct {
	// Source is a directory searched recursively for .xml files
	// (case-insensitive), or a single file.
	Source string

	// Destination receives one directory per document.
	Destination string

	// Selector chooses candidate attachment elements.
	Selector xmlscan.Selector

	// Strict rejects containers with an unexpected header size.
	Strict bool

	// PrefixDocumentName names attachments "<document> - <filename>"
	// instead of "<filename>".
	PrefixDocumentName bool

	// CopySource copies each XML file into its output directory.
	CopySource bool

	// Manifest writes a CBOR manifest into each output directory.
	Manifest bool

	// Workers is the number of documents processed concurrently.
	// Values below 1 mean 1.
	Workers int

	// DryRun decodes everything and reports what would be written, but
	// creates no files or directories.
	DryRun bool

	// Writer stores attachment content. Nil means plain files.
	Writer *sink.Writer
}

// Extractor runs extractions. Create one with New.
type Extractor struct {
	options Options
	decoder *infopath.Decoder
	logger  *slog.Logger
	clock   clock.Clock
}

// Report is the outcome for one document.
type Report struct {
	Source      string `json:"source"`
	Document    string `json:"document"`
	OutputDir   string `json:"output_dir"`
	Attachments int    `json:"attachments"`
	Skipped     int    `json:"skipped"`
	Bytes       int64  `json:"bytes"`
	Error       string `json:"error,omitempty"`
}

// Summary aggregates the reports of a run, ordered by source path.
type Summary struct {
	Documents   int      `json:"documents"`
	Failed      int      `json:"failed"`
	Attachments int      `json:"attachments"`
	Skipped     int      `json:"skipped"`
	Bytes       int64    `json:"bytes"`
	Reports     []Report `json:"reports"`
}

// New returns an Extractor. logger receives progress and diagnostics;
// clock stamps manifests.
func New(options Options, logger *slog.Logger, clk clock.Clock) (*Extractor, error) {
	if options.Source == "" {
		return nil, errors.New("extract: source is required")
	}
	if options.Destination == "" {
		return nil, errors.New("extract: destination is required")
	}
	if options.Selector.Pattern == nil {
		return nil, errors.New("extract: selector has no field pattern")
	}
	if options.Workers < 1 {
		options.Workers = 1
	}
	if options.Writer == nil {
		options.Writer = &sink.Writer{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.Real()
	}

	return &Extractor{
		options: options,
		decoder: &infopath.Decoder{Logger: logger, Strict: options.Strict},
		logger:  logger,
		clock:   clk,
	}, nil
}

// Run processes every document under the source. Per-document failures
// are reported in the Summary, not returned. The returned error is
// non-nil only if the source cannot be enumerated or ctx is cancelled;
// in the latter case the Summary covers the documents finished before
// cancellation.
func (e *Extractor) Run(ctx context.Context) (Summary, error) {
	paths, err := e.discover()
	if err != nil {
		return Summary{}, err
	}
	e.logger.Info("discovered documents", "count", len(paths), "source", e.options.Source)

	jobs := make(chan string)
	results := make(chan Report)

	var workers sync.WaitGroup
	for range min(e.options.Workers, max(len(paths), 1)) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for path := range jobs {
				results <- e.processReport(ctx, path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		workers.Wait()
		close(results)
	}()

	var summary Summary
	for report := range results {
		summary.add(report)
	}
	sort.Slice(summary.Reports, func(i, j int) bool {
		return summary.Reports[i].Source < summary.Reports[j].Source
	})

	e.logger.Info("extraction complete",
		"documents", summary.Documents,
		"failed", summary.Failed,
		"attachments", summary.Attachments,
		"skipped", summary.Skipped,
		"size", formatSize(summary.Bytes),
	)
	return summary, ctx.Err()
}

func (s *Summary) add(report Report) {
	s.Documents++
	if report.Error != "" {
		s.Failed++
	}
	s.Attachments += report.Attachments
	s.Skipped += report.Skipped
	s.Bytes += report.Bytes
	s.Reports = append(s.Reports, report)
}

func (e *Extractor) processReport(ctx context.Context, path string) Report {
	document := DocumentName(path)
	report := Report{
		Source:    path,
		Document:  document,
		OutputDir: filepath.Join(e.options.Destination, document),
	}

	result, err := e.ProcessFile(ctx, path)
	if result != nil {
		report.Attachments = len(result.Entries)
		report.Skipped = len(result.Skipped)
		report.Bytes = result.TotalSize()
	}
	if err != nil {
		report.Error = err.Error()
		e.logger.Error("document failed", "source", path, "error", err)
	}
	return report
}

// discover lists the XML files under the source in lexical order. The
// destination tree is skipped when it lies inside the source so that
// copied documents are not processed again. Unreadable directories are
// logged and skipped.
func (e *Extractor) discover() ([]string, error) {
	info, err := os.Stat(e.options.Source)
	if err != nil {
		return nil, fmt.Errorf("extract: source: %w", err)
	}
	if !info.IsDir() {
		return []string{e.options.Source}, nil
	}

	destination, err := filepath.Abs(e.options.Destination)
	if err != nil {
		return nil, fmt.Errorf("extract: destination: %w", err)
	}

	var paths []string
	err = filepath.WalkDir(e.options.Source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Warn("cannot read directory entry", "path", path, "error", err)
			return nil
		}
		if entry.IsDir() {
			if absolute, err := filepath.Abs(path); err == nil && absolute == destination {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extract: walking %s: %w", e.options.Source, err)
	}
	return paths, nil
}

// DocumentName returns the base name of path without its extension:
// "forms/O.81.xml" is document "O.81".
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
