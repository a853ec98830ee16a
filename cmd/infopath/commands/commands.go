// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the infopath command tree.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/Zuuber/infopath-extractor/cmd/infopath/cli"
	"github.com/Zuuber/infopath-extractor/lib/version"
)

// Root builds the complete command tree writing reports to stdout.
func Root() *cli.Command {
	return newRoot(os.Stdout)
}

func newRoot(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name: "infopath",
		Description: `infopath: recover file attachments embedded in InfoPath form documents.

InfoPath stores each file attachment as base64 text inside an XML
element. The text decodes to a small binary container holding the
original filename and the file content.`,
		Subcommands: []*cli.Command{
			extractCommand(stdout),
			decodeCommand(stdout),
			manifestCommand(stdout),
			verifyCommand(stdout),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(stdout, "infopath %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Extract every attachment under a directory of forms",
				Command:     "infopath extract ./forms ./attachments",
			},
			{
				Description: "Extract using a config file, compressing and recording manifests",
				Command:     "infopath extract --config extractor.yaml --compression zstd --manifest",
			},
			{
				Description: "Inspect one attachment field copied out of a form",
				Command:     "infopath decode --base64 felt31.txt",
			},
		},
	}
}
