// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package sink writes extracted attachments to disk.
//
// Every file is written to a temporary name in its destination
// directory and renamed over a reserved final name only once it is
// complete, so a reader never observes a partially written attachment.
// Final names are reserved with O_EXCL: when "<name><ext>" exists the
// writer tries "<name>_1<ext>", "<name>_2<ext>" and so on, and two
// writers racing for the same name never overwrite each other.
//
// Content may optionally be compressed (zstd or lz4 frames, readable by
// the stock zstd and lz4 command line tools) and then encrypted to one
// or more age X25519 recipients. Each stage appends its extension:
// "scan.pdf.zst.age".
package sink
