// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"filippo.io/age"

	"github.com/Zuuber/infopath-extractor/cmd/infopath/cli"
	"github.com/Zuuber/infopath-extractor/lib/extract"
	"github.com/Zuuber/infopath-extractor/lib/manifest"
	"github.com/Zuuber/infopath-extractor/lib/sink"
)

type verifyParams struct {
	cli.JSONOutput
	Identity string `json:"identity" flag:"identity,i" desc:"age identity file for encrypted attachments"`
}

// verifyReport is the outcome for one manifest.
type verifyReport struct {
	Manifest string            `json:"manifest"`
	Checked  int               `json:"checked"`
	Problems []extract.Problem `json:"problems"`
}

func verifyCommand(stdout io.Writer) *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check extracted attachments against their manifests",
		Description: `Re-read every attachment listed in one or more manifests, undoing
compression and encryption, and compare its size and BLAKE3 digest
with the recorded values. Exits 1 if any attachment is missing or
differs.`,
		Usage:  "infopath verify [flags] <manifest>...",
		Params: func() any { return &params },
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("expected at least one <manifest> argument")
			}

			var identities []age.Identity
			if params.Identity != "" {
				loaded, err := sink.LoadIdentities(params.Identity)
				if err != nil {
					return err
				}
				identities = loaded
			}

			reports := make([]verifyReport, 0, len(args))
			failed := false
			for _, path := range args {
				m, err := manifest.Read(path)
				if err != nil {
					return err
				}
				report := verifyReport{
					Manifest: path,
					Checked:  len(m.Entries),
					Problems: extract.Verify(m, filepath.Dir(path), identities),
				}
				if len(report.Problems) > 0 {
					failed = true
				}
				reports = append(reports, report)
			}

			if done, err := params.EmitJSON(stdout, reports); done {
				if err != nil {
					return err
				}
			} else {
				for _, report := range reports {
					if len(report.Problems) == 0 {
						fmt.Fprintf(stdout, "%s: ok (%d attachments)\n", report.Manifest, report.Checked)
						continue
					}
					fmt.Fprintf(stdout, "%s: %d of %d attachments failed\n",
						report.Manifest, len(report.Problems), report.Checked)
					for _, problem := range report.Problems {
						fmt.Fprintf(stdout, "  %s %s: %s\n", problem.Field, problem.Path, problem.Reason)
					}
				}
			}

			if failed {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Verify every manifest in an output tree",
				Command:     "infopath verify attachments/*/*.manifest.cbor",
			},
			{
				Description: "Verify encrypted attachments",
				Command:     "infopath verify --identity key.txt attachments/O.81/O.81.manifest.cbor",
			},
		},
	}
}
