// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxCandidates bounds the collision-suffix search.
const maxCandidates = 100000

// fallbackFilename replaces names that sanitize to nothing.
const fallbackFilename = "attachment"

// SanitizeFilename reduces an attachment's recorded filename to a
// single safe path element. Directory components are dropped (InfoPath
// records whatever path the uploader's browser reported, sometimes a
// full Windows path), characters that are invalid in filenames on
// common platforms become '_', and names that are empty or consist only
// of dots become "attachment".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if index := strings.LastIndexByte(name, '/'); index >= 0 {
		name = name[index+1:]
	}

	var builder strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7F:
			builder.WriteRune('_')
		case strings.ContainsRune(`:*?"<>|`, r):
			builder.WriteRune('_')
		default:
			builder.WriteRune(r)
		}
	}

	sanitized := strings.TrimSpace(builder.String())
	if strings.Trim(sanitized, ".") == "" {
		return fallbackFilename
	}
	return sanitized
}

// CandidateName returns the n-th collision candidate for name: name
// itself for n == 0, otherwise "<base>_<n><ext>". Leading dots do not
// start an extension, so ".bashrc" becomes ".bashrc_1".
func CandidateName(name string, n int) string {
	if n == 0 {
		return name
	}
	base, extension := splitExtension(name)
	return fmt.Sprintf("%s_%d%s", base, n, extension)
}

// splitExtension splits name before its last dot, ignoring dots that
// lead the name.
func splitExtension(name string) (string, string) {
	leading := len(name) - len(strings.TrimLeft(name, "."))
	index := strings.LastIndexByte(name[leading:], '.')
	if index < 0 {
		return name, ""
	}
	return name[:leading+index], name[leading+index:]
}

// Reserve creates an empty file named by the first collision candidate
// of name followed by suffix that does not exist in dir yet, and
// returns its path. The suffix is never split: "a.pdf" with suffix
// ".zst" reserves "a.pdf.zst", then "a_1.pdf.zst". The caller owns the
// reserved path and must either replace it or remove it.
func Reserve(dir, name, suffix string) (string, error) {
	for n := range maxCandidates {
		path := filepath.Join(dir, CandidateName(name, n)+suffix)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reserving %s: %w", path, err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("reserving %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("reserving %s in %s: %d candidate names already exist", name+suffix, dir, maxCandidates)
}
