// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil builds InfoPath form fixtures for tests.
//
// [AttachmentText] produces the base64 text InfoPath stores in an
// attachment field, line-wrapped the way InfoPath serializes it.
// [FormDocument] renders a form document holding such fields, and
// [WriteFile] writes a fixture to disk, creating parent directories.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
