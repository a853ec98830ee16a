// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"fmt"

	"filippo.io/age"

	"github.com/Zuuber/infopath-extractor/lib/manifest"
	"github.com/Zuuber/infopath-extractor/lib/sink"
)

// Problem is an attachment whose file no longer matches its manifest
// entry.
type Problem struct {
	Field  string `json:"field"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Verify re-reads every attachment listed in m, undoing compression and
// encryption, and compares its size and BLAKE3 digest with the manifest.
// dir is the directory holding the manifest; recorded paths are
// resolved against it. identities decrypt encrypted entries. Entries
// without a path (dry runs) are not checked.
func Verify(m *manifest.Manifest, dir string, identities []age.Identity) []Problem {
	var problems []Problem
	for _, entry := range m.Entries {
		if entry.Path == "" {
			continue
		}
		path := manifest.Resolve(dir, entry.Path)
		if reason := verifyEntry(entry, path, identities); reason != "" {
			problems = append(problems, Problem{Field: entry.Field, Path: path, Reason: reason})
		}
	}
	return problems
}

func verifyEntry(entry manifest.Entry, path string, identities []age.Identity) string {
	compression, err := sink.ParseCompression(entry.Compression)
	if err != nil {
		return err.Error()
	}
	reader, err := sink.Open(path, compression, identities)
	if err != nil {
		return err.Error()
	}
	defer reader.Close()

	digest, size, err := manifest.DigestReader(reader)
	if err != nil {
		return fmt.Sprintf("reading: %v", err)
	}
	if size != entry.Size {
		return fmt.Sprintf("size %d, manifest records %d", size, entry.Size)
	}
	if digest != entry.Digest {
		return "digest mismatch"
	}
	return ""
}
