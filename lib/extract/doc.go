// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package extract drives attachment extraction over a tree of InfoPath
// form documents.
//
// For every XML file under the source, the extractor creates
// "<destination>/<document>/" (document being the file's base name
// without extension), copies the XML file there, and writes each
// decodable attachment as "<document> - <filename>". Existing files are
// never overwritten; a "_N" suffix is added instead.
//
// Failures are isolated. A field whose text is empty, is not base64,
// or does not decode as an attachment container is logged and recorded
// as skipped; the rest of the document is still processed. A document
// that cannot be parsed is logged and counted as failed; the rest of
// the batch is still processed. Attachment content is only written
// after its container decoded completely.
//
// Documents are processed by a fixed number of worker goroutines. The
// attachment decoder is stateless and shared by all of them.
package extract
