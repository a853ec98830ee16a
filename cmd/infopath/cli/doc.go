// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the infopath
// binary.
//
// The central type is [Command], a named subcommand with optional nested
// [Command.Subcommands], a flag set built either from a [pflag.FlagSet]
// factory or from a tagged parameter struct ([FlagsFromParams]), and a
// Run function. [Command.Execute] handles flag parsing, subcommand
// routing, and help output with examples.
//
// Unknown subcommands and flags are answered with the closest known
// name by Levenshtein distance (threshold: distance <= 3).
//
// Commands that support machine-readable output embed [JSONOutput].
// Commands that exit non-zero after printing their own report return an
// [ExitError].
package cli
