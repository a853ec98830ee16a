// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads extractor configuration from a single file.
//
// The file is named by the --config flag (via [LoadFile]) or the
// INFOPATH_CONFIG environment variable (via [Load]). There is no
// automatic discovery. Files ending in .json or .jsonc are read as
// JSON with comments and trailing commas allowed; anything else is
// read as YAML. Unknown keys are rejected so that a misspelled option
// fails loudly instead of silently keeping its default.
//
// ${HOME} and ${VAR:-default} patterns are expanded in the source and
// destination paths after loading. No other environment variables
// override config values; command line flags are applied by the caller
// on top of the loaded [Config] before [Config.Validate] runs.
//
// This package depends on no other packages of this module.
package config
