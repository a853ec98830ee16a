// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package infopath decodes the binary attachment containers that
// InfoPath forms embed, base64-encoded, in the text of file attachment
// fields.
//
// A container is a fixed 24-byte header followed by a UTF-16LE filename
// and the raw file content. All integers are little-endian:
//
//	offset  size            field
//	0       4               header size (24 in well-formed files)
//	4       16              reserved, not interpreted
//	20      4               filename length in UTF-16 code units
//	24      2*length        filename, NUL-padded or NUL-terminated
//	24+2*length  rest       content
//
// Decoding is a pure function of its input: no I/O, no shared state,
// and every malformed buffer resolves to a *DecodeError rather than a
// panic. A [Decoder] is safe for concurrent use by multiple goroutines.
//
// The header size field is not enforced by default. Producers in the
// wild write inconsistent values into it while the rest of the
// container stays well-formed, so a mismatch is logged as a warning and
// decoding continues. Set [Decoder.Strict] to reject such containers.
package infopath
