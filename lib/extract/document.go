// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/Zuuber/infopath-extractor/lib/infopath"
	"github.com/Zuuber/infopath-extractor/lib/manifest"
	"github.com/Zuuber/infopath-extractor/lib/sink"
	"github.com/Zuuber/infopath-extractor/lib/xmlscan"
)

// Skip reasons recorded for fields that yield no attachment.
const (
	reasonEmpty         = "empty content"
	reasonInvalidBase64 = "invalid base64"
)

// leadingBytes is how many decoded bytes are logged per field at debug
// level.
const leadingBytes = 10

// ProcessFile extracts the attachments of one document. The returned
// manifest describes everything done before any error, and is non-nil
// unless ctx was already cancelled or the output directory could not
// be created.
func (e *Extractor) ProcessFile(ctx context.Context, path string) (*manifest.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	document := DocumentName(path)
	outputDir := filepath.Join(e.options.Destination, document)
	logger := e.logger.With("source", path, "document", document)
	logger.Info("processing document")

	if !e.options.DryRun {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	result := &manifest.Manifest{
		Document:    document,
		Source:      path,
		ExtractedAt: e.clock.Now().UTC(),
	}

	if e.options.CopySource && !e.options.DryRun {
		copied, err := sink.CopyFile(path, outputDir)
		if err != nil {
			return result, fmt.Errorf("copying source: %w", err)
		}
		result.SourceCopy = filepath.Base(copied)
		logger.Debug("copied source document", "destination", copied)
	}

	file, err := os.Open(path)
	if err != nil {
		return result, err
	}
	defer file.Close()

	scanErr := xmlscan.Scan(file, e.options.Selector, func(field xmlscan.Field) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return e.processField(logger, result, outputDir, field)
	})

	// The manifest is written even when the scan stopped early, so
	// the attachments already written are accounted for.
	if e.options.Manifest && !e.options.DryRun {
		if err := e.writeManifest(outputDir, result); err != nil {
			logger.Error("writing manifest failed", "error", err)
			if scanErr == nil {
				scanErr = err
			}
		}
	}
	if scanErr != nil {
		return result, scanErr
	}

	logger.Info("document done",
		"attachments", len(result.Entries),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// processField decodes one candidate field and writes its attachment.
// Malformed fields are recorded as skips and return nil; only output
// failures are returned.
func (e *Extractor) processField(logger *slog.Logger, result *manifest.Manifest, outputDir string, field xmlscan.Field) error {
	logger = logger.With("field", field.Name, "line", field.Line)

	skip := func(reason string, kind infopath.Kind) {
		entry := manifest.Skip{Field: field.Name, Line: field.Line, Reason: reason}
		if kind != 0 {
			entry.Kind = kind.String()
		}
		result.Skipped = append(result.Skipped, entry)
		logger.Warn("skipping field", "reason", reason)
	}

	if field.Text == "" {
		skip(reasonEmpty, 0)
		return nil
	}

	buffer, err := DecodeBase64(field.Text)
	if err != nil {
		skip(fmt.Sprintf("%s: %v", reasonInvalidBase64, err), 0)
		return nil
	}
	logger.Debug("decoded field",
		"length", len(buffer),
		"leading_bytes", hex.EncodeToString(buffer[:min(len(buffer), leadingBytes)]),
	)

	attachment, err := e.decoder.Decode(buffer)
	if err != nil {
		skip(err.Error(), infopath.KindOf(err))
		return nil
	}

	entry := manifest.Entry{
		Field:    field.Name,
		Line:     field.Line,
		Filename: attachment.Filename,
		Size:     int64(len(attachment.Content)),
		Digest:   manifest.Digest(attachment.Content),
	}
	if e.options.Writer.Compression != sink.CompressionNone {
		entry.Compression = e.options.Writer.Compression.String()
	}
	entry.Encrypted = e.options.Writer.Encrypted()

	name := sink.SanitizeFilename(attachment.Filename)
	if e.options.PrefixDocumentName {
		name = result.Document + " - " + name
	}

	if e.options.DryRun {
		logger.Info("would save attachment", "name", name, "size", formatSize(entry.Size))
		result.Entries = append(result.Entries, entry)
		return nil
	}

	written, err := e.options.Writer.Write(outputDir, name, attachment.Content)
	if err != nil {
		return fmt.Errorf("writing attachment from %s: %w", field.Name, err)
	}
	entry.Path = filepath.Base(written.Path)
	result.Entries = append(result.Entries, entry)
	logger.Info("saved attachment", "path", written.Path, "size", formatSize(entry.Size))
	return nil
}

func (e *Extractor) writeManifest(outputDir string, result *manifest.Manifest) error {
	path, err := sink.Reserve(outputDir, result.Document+manifest.Extension, "")
	if err != nil {
		return err
	}
	if err := manifest.Write(path, result); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

// DecodeBase64 decodes standard base64, ignoring the line breaks and
// indentation that XML serializers insert into long text nodes.
func DecodeBase64(text string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return base64.StdEncoding.DecodeString(compact)
}

func formatSize(size int64) string {
	return humanize.Bytes(uint64(size))
}
