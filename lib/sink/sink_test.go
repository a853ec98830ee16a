// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"filippo.io/age"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"report.pdf", "report.pdf"},
		{`C:\Users\kari\Desktop\søknad.docx`, "søknad.docx"},
		{"../../etc/passwd", "passwd"},
		{"a:b*c?.txt", "a_b_c_.txt"},
		{"tab\there.txt", "tab_here.txt"},
		{"  spaced.txt  ", "spaced.txt"},
		{"..", "attachment"},
		{"dir/", "attachment"},
		{"", "attachment"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCandidateName(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{"O.81 - scan.pdf", 0, "O.81 - scan.pdf"},
		{"O.81 - scan.pdf", 1, "O.81 - scan_1.pdf"},
		{"O.81 - scan.pdf", 12, "O.81 - scan_12.pdf"},
		{"noext", 2, "noext_2"},
		{"archive.tar.gz", 1, "archive.tar_1.gz"},
		{".bashrc", 1, ".bashrc_1"},
		{"..hidden", 3, "..hidden_3"},
		{".config.yaml", 1, ".config_1.yaml"},
		{"trailing.", 1, "trailing_1."},
	}

	for _, tt := range tests {
		if got := CandidateName(tt.name, tt.n); got != tt.want {
			t.Errorf("CandidateName(%q, %d) = %q, want %q", tt.name, tt.n, got, tt.want)
		}
	}
}

func TestReserve_Collisions(t *testing.T) {
	dir := t.TempDir()

	var paths []string
	for range 3 {
		path, err := Reserve(dir, "scan.pdf", "")
		if err != nil {
			t.Fatalf("Reserve: %v", err)
		}
		paths = append(paths, filepath.Base(path))
	}

	want := []string{"scan.pdf", "scan_1.pdf", "scan_2.pdf"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("reservation %d = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestReserve_SuffixStaysWhole(t *testing.T) {
	dir := t.TempDir()

	var names []string
	for range 2 {
		path, err := Reserve(dir, "report", ".manifest.cbor")
		if err != nil {
			t.Fatalf("Reserve: %v", err)
		}
		names = append(names, filepath.Base(path))
	}

	if names[0] != "report.manifest.cbor" || names[1] != "report_1.manifest.cbor" {
		t.Errorf("reservations = %v, want [report.manifest.cbor report_1.manifest.cbor]", names)
	}
}

func TestWriter_CollisionSuffixPrecedesFormatExtension(t *testing.T) {
	dir := t.TempDir()
	writer := &Writer{Compression: CompressionZstd}

	var names []string
	for _, content := range []string{"first", "second"} {
		written, err := writer.Write(dir, "a.pdf", []byte(content))
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		names = append(names, filepath.Base(written.Path))
	}

	if names[0] != "a.pdf.zst" || names[1] != "a_1.pdf.zst" {
		t.Errorf("written = %v, want [a.pdf.zst a_1.pdf.zst]", names)
	}
	if got := string(readBack(t, filepath.Join(dir, "a_1.pdf.zst"), CompressionZstd, nil)); got != "second" {
		t.Errorf("a_1.pdf.zst = %q, want second", got)
	}
}

func TestWriter_DotfileCollision(t *testing.T) {
	dir := t.TempDir()
	writer := &Writer{}

	var names []string
	for range 2 {
		written, err := writer.Write(dir, ".bashrc", []byte("x"))
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		names = append(names, filepath.Base(written.Path))
	}

	if names[0] != ".bashrc" || names[1] != ".bashrc_1" {
		t.Errorf("written = %v, want [.bashrc .bashrc_1]", names)
	}
}

func TestWriter_Plain(t *testing.T) {
	dir := t.TempDir()
	var writer Writer

	written, err := writer.Write(dir, "a.pdf", []byte("HELLO"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(written.Path) != "a.pdf" {
		t.Errorf("Path = %s, want a.pdf", written.Path)
	}
	if written.Size != 5 {
		t.Errorf("Size = %d, want 5", written.Size)
	}

	data, err := os.ReadFile(written.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "HELLO" {
		t.Errorf("content = %q, want HELLO", data)
	}

	second, err := writer.Write(dir, "a.pdf", []byte("AGAIN"))
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if filepath.Base(second.Path) != "a_1.pdf" {
		t.Errorf("second Path = %s, want a_1.pdf", second.Path)
	}
}

func TestWriter_EmptyContent(t *testing.T) {
	dir := t.TempDir()
	var writer Writer

	written, err := writer.Write(dir, "empty.txt", nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(written.Path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("size = %d, want 0", info.Size())
	}
}

func TestWriter_LeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	writer := Writer{Compression: CompressionZstd}

	if _, err := writer.Write(dir, "a.txt", []byte("content")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".infopath-") {
			t.Errorf("temporary file %s left behind", entry.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestWriter_CompressionRoundTrip(t *testing.T) {
	content := bytes.Repeat([]byte("InfoPath attachment payload. "), 200)

	for _, compression := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(compression.String(), func(t *testing.T) {
			dir := t.TempDir()
			writer := Writer{Compression: compression}

			written, err := writer.Write(dir, "notes.txt", content)
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if want := "notes.txt" + compression.Extension(); filepath.Base(written.Path) != want {
				t.Errorf("Path = %s, want %s", filepath.Base(written.Path), want)
			}
			if compression != CompressionNone && written.Size >= int64(len(content)) {
				t.Errorf("compressed size %d not smaller than %d", written.Size, len(content))
			}

			got := readBack(t, written.Path, compression, nil)
			if !bytes.Equal(got, content) {
				t.Error("content differs after round trip")
			}
		})
	}
}

func TestWriter_Encrypted(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}
	recipients, err := ParseRecipients([]string{identity.Recipient().String()})
	if err != nil {
		t.Fatalf("ParseRecipients: %v", err)
	}

	dir := t.TempDir()
	writer := Writer{Compression: CompressionZstd, Recipients: recipients}
	if writer.Extension() != ".zst.age" {
		t.Errorf("Extension() = %q, want .zst.age", writer.Extension())
	}

	written, err := writer.Write(dir, "secret.pdf", []byte("classified"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(written.Path) != "secret.pdf.zst.age" {
		t.Errorf("Path = %s, want secret.pdf.zst.age", written.Path)
	}

	raw, err := os.ReadFile(written.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if bytes.Contains(raw, []byte("classified")) {
		t.Error("encrypted file contains plaintext")
	}

	got := readBack(t, written.Path, CompressionZstd, []age.Identity{identity})
	if string(got) != "classified" {
		t.Errorf("decrypted content = %q, want classified", got)
	}

	if _, err := Open(written.Path, CompressionZstd, nil); err == nil {
		t.Error("Open without identities should fail for an encrypted file")
	}
}

func TestWriter_ConcurrentSameName(t *testing.T) {
	dir := t.TempDir()
	var writer Writer

	const writers = 8
	var waitGroup sync.WaitGroup
	paths := make(chan string, writers)
	for i := range writers {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			written, err := writer.Write(dir, "same.bin", []byte{byte(i)})
			if err != nil {
				t.Errorf("Write: %v", err)
				return
			}
			paths <- written.Path
		}()
	}
	waitGroup.Wait()
	close(paths)

	seen := make(map[string]bool)
	for path := range paths {
		if seen[path] {
			t.Errorf("path %s written twice", path)
		}
		seen[path] = true
	}
	if len(seen) != writers {
		t.Errorf("got %d distinct files, want %d", len(seen), writers)
	}
}

func TestCopyFile(t *testing.T) {
	sourceDir := t.TempDir()
	destinationDir := t.TempDir()
	source := filepath.Join(sourceDir, "O.81.xml")
	if err := os.WriteFile(source, []byte("<root/>"), 0o640); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	modified := time.Date(2020, 5, 17, 8, 0, 0, 0, time.UTC)
	if err := os.Chtimes(source, modified, modified); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	copied, err := CopyFile(source, destinationDir)
	if err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	if filepath.Base(copied) != "O.81.xml" {
		t.Errorf("copied to %s, want O.81.xml", copied)
	}

	info, err := os.Stat(copied)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(modified) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), modified)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("Mode = %v, want 0640", info.Mode().Perm())
	}

	again, err := CopyFile(source, destinationDir)
	if err != nil {
		t.Fatalf("second CopyFile: %v", err)
	}
	if filepath.Base(again) != "O.81_1.xml" {
		t.Errorf("second copy = %s, want O.81_1.xml", again)
	}
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"none", "zstd", "lz4"} {
		compression, err := ParseCompression(name)
		if err != nil {
			t.Fatalf("ParseCompression(%q): %v", name, err)
		}
		if compression.String() != name {
			t.Errorf("ParseCompression(%q).String() = %q", name, compression.String())
		}
	}
	if compression, err := ParseCompression(""); err != nil || compression != CompressionNone {
		t.Errorf("ParseCompression(\"\") = %v, %v; want none", compression, err)
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(\"gzip\") should fail")
	}
}

func TestParseRecipients_Invalid(t *testing.T) {
	if _, err := ParseRecipients([]string{"not-a-key"}); err == nil {
		t.Fatal("ParseRecipients should reject malformed keys")
	}
}

func TestLoadIdentities(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("GenerateX25519Identity: %v", err)
	}
	path := filepath.Join(t.TempDir(), "key.txt")
	content := "# created for test\n" + identity.String() + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	identities, err := LoadIdentities(path)
	if err != nil {
		t.Fatalf("LoadIdentities: %v", err)
	}
	if len(identities) != 1 {
		t.Errorf("got %d identities, want 1", len(identities))
	}
}

func readBack(t *testing.T, path string, compression Compression, identities []age.Identity) []byte {
	t.Helper()
	reader, err := Open(path, compression, identities)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return data
}
