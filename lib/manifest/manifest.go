// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest records what was extracted from one form document:
// every attachment written, with its BLAKE3 digest, and every candidate
// field that was skipped, with the reason. Manifests are stored as
// deterministic CBOR next to the extracted files.
package manifest

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/Zuuber/infopath-extractor/lib/codec"
)

// Extension is the filename suffix of manifest files.
const Extension = ".manifest.cbor"

// Manifest describes the extraction of one document.
type Manifest struct {
	// Document is the document name: the XML file's base name without
	// its extension. It names the output directory and prefixes
	// attachment filenames.
	Document string `json:"document"`

	// Source is the path of the XML file that was processed.
	Source string `json:"source"`

	// SourceCopy is the name the source was copied to, if it was,
	// relative to the manifest's directory.
	SourceCopy string `json:"source_copy,omitempty"`

	ExtractedAt time.Time `json:"extracted_at"`

	Entries []Entry `json:"entries"`
	Skipped []Skip  `json:"skipped,omitempty"`
}

// Entry is one extracted attachment.
type Entry struct {
	// Field is the element the attachment came from, e.g. "felt31".
	Field string `json:"field"`

	// Line is the source line of the element.
	Line int `json:"line,omitempty"`

	// Filename is the filename recorded in the container.
	Filename string `json:"filename"`

	// Path is where the attachment was written, relative to the
	// manifest's directory. Empty in dry runs.
	Path string `json:"path,omitempty"`

	// Size is the decoded content length in bytes.
	Size int64 `json:"size"`

	// Digest is the hex BLAKE3-256 digest of the decoded content.
	Digest string `json:"digest"`

	// Compression is the frame format of the file on disk.
	Compression string `json:"compression,omitempty"`

	Encrypted bool `json:"encrypted,omitempty"`
}

// Skip is a candidate field that produced no attachment.
type Skip struct {
	Field  string `json:"field"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`

	// Kind is the decode failure kind, when the container itself was
	// malformed.
	Kind string `json:"kind,omitempty"`
}

// Digest returns the hex BLAKE3-256 digest of content.
func Digest(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// DigestReader returns the hex BLAKE3-256 digest of everything read
// from r, and the number of bytes read.
func DigestReader(r io.Reader) (string, int64, error) {
	hasher := blake3.New()
	size, err := io.Copy(hasher, r)
	if err != nil {
		return "", size, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// Resolve returns path, as recorded in a manifest stored in dir, as a
// path usable from the current directory. Absolute and empty paths are
// returned unchanged.
func Resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Path returns the manifest path for document inside dir.
func Path(dir, document string) string {
	return filepath.Join(dir, document+Extension)
}

// Write stores m at path as CBOR, replacing any existing file.
func Write(path string, m *Manifest) error {
	data, err := codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	temporary := path + ".tmp"
	if err := os.WriteFile(temporary, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(temporary, path); err != nil {
		os.Remove(temporary)
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Read loads the manifest at path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	return &m, nil
}

// TotalSize sums the decoded sizes of all entries.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, entry := range m.Entries {
		total += entry.Size
	}
	return total
}
