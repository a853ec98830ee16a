// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Command infopath recovers file attachments embedded in InfoPath form
// documents.
package main

import (
	"fmt"
	"os"

	"github.com/Zuuber/infopath-extractor/cmd/infopath/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own report return an ExitError
		// carrying the exit code; no extra "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
