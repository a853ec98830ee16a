// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"
)

// Writer writes attachment content into a directory. The zero value
// writes plain, unencrypted files. A Writer is safe for concurrent use.
type Writer struct {
	Compression Compression

	// Recipients, when non-empty, encrypt every file to all of them.
	Recipients []age.Recipient
}

// Written describes a file produced by Writer.
type Written struct {
	// Path is the final path, including collision suffix and format
	// extensions.
	Path string

	// Size is the number of bytes on disk.
	Size int64
}

// Encrypted reports whether the writer encrypts its output.
func (w *Writer) Encrypted() bool {
	return len(w.Recipients) > 0
}

// Extension returns the suffix this writer appends to every filename.
func (w *Writer) Extension() string {
	extension := w.Compression.Extension()
	if w.Encrypted() {
		extension += EncryptedExtension
	}
	return extension
}

// Write stores content in dir under name plus the writer's extension,
// choosing a collision-free final name.
func (w *Writer) Write(dir, name string, content []byte) (Written, error) {
	temporary, err := os.CreateTemp(dir, ".infopath-*")
	if err != nil {
		return Written{}, fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}
	temporaryPath := temporary.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(temporaryPath)
		}
	}()

	if err := w.encode(temporary, content); err != nil {
		temporary.Close()
		return Written{}, err
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		return Written{}, fmt.Errorf("syncing %s: %w", temporaryPath, err)
	}
	info, err := temporary.Stat()
	if err != nil {
		temporary.Close()
		return Written{}, fmt.Errorf("stat %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return Written{}, fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		return Written{}, fmt.Errorf("chmod %s: %w", temporaryPath, err)
	}

	path, err := commit(temporaryPath, dir, name, w.Extension())
	if err != nil {
		return Written{}, err
	}
	committed = true
	return Written{Path: path, Size: info.Size()}, nil
}

// encode runs content through compression then encryption into
// destination.
func (w *Writer) encode(destination io.Writer, content []byte) error {
	encrypting, err := encryptor(destination, w.Recipients)
	if err != nil {
		return err
	}
	compressing, err := w.Compression.compressor(encrypting)
	if err != nil {
		return err
	}
	if _, err := compressing.Write(content); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}
	if err := compressing.Close(); err != nil {
		return fmt.Errorf("finalizing %s frame: %w", w.Compression, err)
	}
	if err := encrypting.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Open returns a reader over the original content of a file produced
// by a Writer with the given compression. identities are required when
// the file is encrypted.
func Open(path string, compression Compression, identities []age.Identity) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var source io.Reader = file
	if filepath.Ext(path) == EncryptedExtension {
		if len(identities) == 0 {
			file.Close()
			return nil, fmt.Errorf("%s is encrypted and no identity was provided", path)
		}
		decrypted, err := age.Decrypt(file, identities...)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("decrypting %s: %w", path, err)
		}
		source = decrypted
	}

	decompressing, err := compression.decompressor(source)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &readCloser{Reader: decompressing, closers: []io.Closer{decompressing, file}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, closer := range r.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CopyFile copies the file at source into dir under its own base name,
// with a collision suffix if needed, preserving its permission bits and
// modification time.
func CopyFile(source, dir string) (string, error) {
	input, err := os.Open(source)
	if err != nil {
		return "", err
	}
	defer input.Close()

	info, err := input.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", source, err)
	}

	temporary, err := os.CreateTemp(dir, ".infopath-*")
	if err != nil {
		return "", fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}
	temporaryPath := temporary.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(temporaryPath)
		}
	}()

	if _, err := io.Copy(temporary, input); err != nil {
		temporary.Close()
		return "", fmt.Errorf("copying %s: %w", source, err)
	}
	if err := temporary.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("chmod %s: %w", temporaryPath, err)
	}
	modified := info.ModTime()
	if err := os.Chtimes(temporaryPath, time.Time{}, modified); err != nil {
		return "", fmt.Errorf("setting times on %s: %w", temporaryPath, err)
	}

	path, err := commit(temporaryPath, dir, filepath.Base(source), "")
	if err != nil {
		return "", err
	}
	committed = true
	return path, nil
}

// commit reserves a final name for name plus suffix in dir and renames
// the temporary file over the reservation.
func commit(temporaryPath, dir, name, suffix string) (string, error) {
	path, err := Reserve(dir, name, suffix)
	if err != nil {
		return "", err
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("moving %s into place: %w", path, err)
	}
	return path, nil
}
