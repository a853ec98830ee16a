// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the current time so that timestamps written
// into extraction manifests can be pinned in tests.
package clock
