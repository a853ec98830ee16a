// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR encoding configuration shared by every
// on-disk record the extractor writes, chiefly extraction manifests.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Two
// runs over the same input therefore produce byte-identical manifests,
// which keeps them diffable and lets their digests be compared.
//
//	data, err := codec.Marshal(manifest)
//	err = codec.Unmarshal(data, &manifest)
//
// Types that are also printed by the CLI with --json carry json struct
// tags; fxamacker/cbor falls back to json tags when cbor tags are
// absent, so one tag controls both formats.
package codec
