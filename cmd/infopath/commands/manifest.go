// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Zuuber/infopath-extractor/cmd/infopath/cli"
	"github.com/Zuuber/infopath-extractor/lib/manifest"
)

type manifestParams struct {
	cli.JSONOutput
}

func manifestCommand(stdout io.Writer) *cli.Command {
	var params manifestParams

	return &cli.Command{
		Name:    "manifest",
		Summary: "Show an extraction manifest",
		Description: `Print the contents of a "<document>.manifest.cbor" file written by
"infopath extract --manifest": every attachment with its size and
BLAKE3 digest, and every field that was skipped with the reason.`,
		Usage:  "infopath manifest [flags] <file>",
		Params: func() any { return &params },
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one <file> argument, got %d", len(args))
			}
			m, err := manifest.Read(args[0])
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(stdout, m); done {
				return err
			}
			printManifest(stdout, m)
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Show a manifest as JSON",
				Command:     "infopath manifest --json attachments/O.81/O.81.manifest.cbor",
			},
		},
	}
}

func printManifest(w io.Writer, m *manifest.Manifest) {
	fmt.Fprintf(w, "document:   %s\n", m.Document)
	fmt.Fprintf(w, "source:     %s\n", m.Source)
	if m.SourceCopy != "" {
		fmt.Fprintf(w, "copied to:  %s\n", m.SourceCopy)
	}
	fmt.Fprintf(w, "extracted:  %s (%s)\n", m.ExtractedAt.Format(time.RFC3339), humanize.Time(m.ExtractedAt))
	fmt.Fprintf(w, "total:      %d attachments, %s\n", len(m.Entries), humanize.Bytes(uint64(m.TotalSize())))

	if len(m.Entries) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		fmt.Fprintf(tw, "FIELD\tLINE\tFILENAME\tSIZE\tBLAKE3\tPATH\n")
		for _, entry := range m.Entries {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
				entry.Field, entry.Line, entry.Filename,
				humanize.Bytes(uint64(entry.Size)), shortDigest(entry.Digest), entry.Path)
		}
		tw.Flush()
	}

	if len(m.Skipped) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		fmt.Fprintf(tw, "SKIPPED\tLINE\tKIND\tREASON\n")
		for _, skip := range m.Skipped {
			kind := skip.Kind
			if kind == "" {
				kind = "-"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", skip.Field, skip.Line, kind, skip.Reason)
		}
		tw.Flush()
	}
}

func shortDigest(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}
