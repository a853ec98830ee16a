// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuuber/infopath-extractor/lib/infopath"
)

// FormNamespace is the namespace URI of the generated form documents.
const FormNamespace = "http://schemas.microsoft.com/office/infopath/2003/myXSD/2006-04-19T07:22:55"

// lineLength is the column at which InfoPath wraps base64 text.
const lineLength = 76

// Field is one element of a generated form.
type Field struct {
	// Name is the element's local name, e.g. "felt31".
	Name string

	// Text is the element's content, inserted verbatim.
	Text string
}

// AttachmentText returns the base64 field text of a container holding
// filename and content. The filename is NUL-terminated, as InfoPath
// writes it.
func AttachmentText(t testing.TB, filename string, content []byte) string {
	t.Helper()
	encoded, err := infopath.Encode(&infopath.Attachment{
		Filename:       filename,
		Content:        content,
		HeaderSize:     infopath.HeaderLength,
		FilenameLength: uint32(len(infopath.EncodeFilename(filename))/2 + 1),
	})
	if err != nil {
		t.Fatalf("encoding attachment %q: %v", filename, err)
	}
	return Wrap(base64.StdEncoding.EncodeToString(encoded))
}

// Wrap breaks text into indented lines of at most 76 characters.
func Wrap(text string) string {
	var wrapped strings.Builder
	for len(text) > lineLength {
		wrapped.WriteString(text[:lineLength] + "\n\t\t")
		text = text[lineLength:]
	}
	wrapped.WriteString(text)
	return wrapped.String()
}

// FormDocument renders an InfoPath form whose root holds a title
// element followed by fields in order.
func FormDocument(fields ...Field) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<?mso-application progid="InfoPath.Document"?>` + "\n")
	fmt.Fprintf(&builder, "<my:myFields xmlns:my=%q>\n", FormNamespace)
	builder.WriteString("\t<my:title>Application</my:title>\n")
	for _, field := range fields {
		fmt.Fprintf(&builder, "\t<my:%s>%s</my:%s>\n", field.Name, field.Text, field.Name)
	}
	builder.WriteString("</my:myFields>\n")
	return builder.String()
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
