// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package xmlscan streams an InfoPath form document and yields the
// elements that may carry attachments.
//
// InfoPath stores each file attachment control as an element in the
// form's own schema namespace (the "my:" prefix) whose text is a
// base64-encoded attachment container. Attachment controls are named by
// the form designer, conventionally "felt" followed by a number, so the
// selector matches element local names against a regular expression and
// optionally pins the namespace URI.
//
// Documents are read with encoding/xml in streaming mode; a form with
// many large attachments is never held in memory as a tree. UTF-16
// documents with a byte order mark are transcoded to UTF-8 before
// parsing, and documents declaring other legacy charsets are decoded
// through golang.org/x/net/html/charset.
package xmlscan
