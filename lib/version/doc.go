// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the infopath binary.
//
// Four variables are injected at build time via -ldflags -X:
//
//   - [GitCommit]: short git SHA of the build
//   - [GitDirty]: "true" if there were uncommitted changes
//   - [BuildTime]: UTC timestamp of the build
//   - [Version]: semantic version string
//
// For example:
//
//	go build -ldflags "-X github.com/Zuuber/infopath-extractor/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/infopath
package version
