// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/Zuuber/infopath-extractor/lib/infopath"
)

func TestAttachmentText_Decodes(t *testing.T) {
	content := bytes.Repeat([]byte{0xAB}, 200)
	text := AttachmentText(t, "scan.png", content)

	if !strings.Contains(text, "\n") {
		t.Error("long attachment text is not wrapped")
	}
	buffer, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	attachment, err := infopath.Decode(buffer)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if attachment.Filename != "scan.png" || attachment.FilenameLength != 9 {
		t.Errorf("attachment = %q (length %d)", attachment.Filename, attachment.FilenameLength)
	}
	if !bytes.Equal(attachment.Content, content) {
		t.Error("content differs")
	}
}

func TestWrap(t *testing.T) {
	text := strings.Repeat("A", 160)
	lines := strings.Split(Wrap(text), "\n\t\t")
	if len(lines) != 3 || len(lines[0]) != 76 || len(lines[1]) != 76 || len(lines[2]) != 8 {
		t.Errorf("Wrap produced line lengths %d", len(lines))
	}
	if Wrap("short") != "short" {
		t.Error("short text should not be wrapped")
	}
}

func TestFormDocument(t *testing.T) {
	document := FormDocument(Field{Name: "felt1", Text: "abc"}, Field{Name: "felt2"})
	for _, want := range []string{
		`xmlns:my="` + FormNamespace + `"`,
		"<my:felt1>abc</my:felt1>",
		"<my:felt2></my:felt2>",
	} {
		if !strings.Contains(document, want) {
			t.Errorf("document missing %q:\n%s", want, document)
		}
	}
	if strings.Index(document, "felt1") > strings.Index(document, "felt2") {
		t.Error("fields out of order")
	}
}
