// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/Zuuber/infopath-extractor/cmd/infopath/cli"
	"github.com/Zuuber/infopath-extractor/lib/clock"
	"github.com/Zuuber/infopath-extractor/lib/config"
	"github.com/Zuuber/infopath-extractor/lib/extract"
	"github.com/Zuuber/infopath-extractor/lib/sink"
	"github.com/Zuuber/infopath-extractor/lib/xmlscan"
)

// extractParams overrides the configuration file. Zero values leave
// the configured value in place.
type extractParams struct {
	cli.JSONOutput
	Config       string   `json:"config"         flag:"config,c"       desc:"config file (default: $INFOPATH_CONFIG if set)"`
	Pattern      string   `json:"pattern"        flag:"pattern"        desc:"regular expression matched against element names (default ^felt\\d+)"`
	Namespace    string   `json:"namespace"      flag:"namespace"      desc:"only match elements in this namespace URI"`
	Strict       bool     `json:"strict"         flag:"strict"         desc:"skip containers whose header size is not 24"`
	Workers      int      `json:"workers"        flag:"workers,w"      desc:"documents processed concurrently"`
	Compression  string   `json:"compression"    flag:"compression"    desc:"compress attachments: none, zstd, or lz4"`
	Recipients   []string `json:"recipients"     flag:"recipient"      desc:"encrypt attachments to this age recipient (repeatable)"`
	Manifest     bool     `json:"manifest"       flag:"manifest"       desc:"write a CBOR manifest per document"`
	NoPrefix     bool     `json:"no_prefix"      flag:"no-prefix"      desc:"do not prefix attachment names with the document name"`
	NoCopySource bool     `json:"no_copy_source" flag:"no-copy-source" desc:"do not copy the XML document next to its attachments"`
	DryRun       bool     `json:"dry_run"        flag:"dry-run,n"      desc:"decode everything but write nothing"`
	LogLevel     string   `json:"log_level"      flag:"log-level"      desc:"debug, info, warn, or error"`
}

func extractCommand(stdout io.Writer) *cli.Command {
	var params extractParams

	return &cli.Command{
		Name:    "extract",
		Summary: "Extract attachments from InfoPath documents",
		Description: `Extract every file attachment from InfoPath XML documents.

<source> is a directory searched recursively for .xml files, or a single
XML file. Each document gets its own directory under <destination>,
named after the document, holding its attachments and (by default) a
copy of the document itself. Name collisions get _1, _2, ... suffixes.

Source and destination may instead come from the config file. Flags
override the config file.

Fields that are empty, are not base64, or do not hold a valid
attachment container are logged and skipped. A document that cannot be
parsed is reported and the run continues; the exit status is 1 if any
document failed.`,
		Usage:  "infopath extract [flags] [<source> <destination>]",
		Params: func() any { return &params },
		Run: func(args []string) error {
			cfg, err := params.resolve(args)
			if err != nil {
				return err
			}
			level, err := cli.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger(level).With("command", "extract")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runExtract(ctx, cfg, params.DryRun, logger, stdout, &params.JSONOutput)
		},
		Examples: []cli.Example{
			{
				Description: "Extract all forms under a directory",
				Command:     "infopath extract ./forms ./attachments",
			},
			{
				Description: "Preview what would be written",
				Command:     "infopath extract --dry-run --log-level debug ./forms ./attachments",
			},
			{
				Description: "Encrypt attachments and record manifests",
				Command:     "infopath extract --recipient age1... --manifest ./forms ./attachments",
			},
		},
	}
}

// resolve loads the configuration and applies flags and positional
// arguments on top of it.
func (p *extractParams) resolve(args []string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case p.Config != "":
		cfg, err = config.LoadFile(p.Config)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	switch len(args) {
	case 0:
	case 2:
		cfg.Source, cfg.Destination = args[0], args[1]
	default:
		return nil, fmt.Errorf("expected <source> <destination>, got %d arguments", len(args))
	}

	if p.Pattern != "" {
		cfg.Selector.FieldPattern = p.Pattern
	}
	if p.Namespace != "" {
		cfg.Selector.Namespace = p.Namespace
	}
	if p.Strict {
		cfg.Decoder.StrictHeaderSize = true
	}
	if p.Workers != 0 {
		cfg.Output.Workers = p.Workers
	}
	if p.Compression != "" {
		cfg.Output.Compression = p.Compression
	}
	if len(p.Recipients) > 0 {
		cfg.Output.Recipients = p.Recipients
	}
	if p.Manifest {
		cfg.Output.Manifest = true
	}
	if p.NoPrefix {
		cfg.Output.PrefixDocumentName = false
	}
	if p.NoCopySource {
		cfg.Output.CopySource = false
	}
	if p.LogLevel != "" {
		cfg.LogLevel = p.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// extractOptions translates a validated configuration into driver
// options.
func extractOptions(cfg *config.Config, dryRun bool) (extract.Options, error) {
	selector, err := xmlscan.NewSelector(cfg.Selector.FieldPattern, cfg.Selector.Namespace)
	if err != nil {
		return extract.Options{}, err
	}
	compression, err := sink.ParseCompression(cfg.Output.Compression)
	if err != nil {
		return extract.Options{}, err
	}
	recipients, err := sink.ParseRecipients(cfg.Output.Recipients)
	if err != nil {
		return extract.Options{}, err
	}

	return extract.Options{
		Source:             cfg.Source,
		Destination:        cfg.Destination,
		Selector:           selector,
		Strict:             cfg.Decoder.StrictHeaderSize,
		PrefixDocumentName: cfg.Output.PrefixDocumentName,
		CopySource:         cfg.Output.CopySource,
		Manifest:           cfg.Output.Manifest,
		Workers:            cfg.Output.Workers,
		DryRun:             dryRun,
		Writer:             &sink.Writer{Compression: compression, Recipients: recipients},
	}, nil
}

func runExtract(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger, stdout io.Writer, output *cli.JSONOutput) error {
	options, err := extractOptions(cfg, dryRun)
	if err != nil {
		return err
	}
	extractor, err := extract.New(options, logger, clock.Real())
	if err != nil {
		return err
	}

	summary, runErr := extractor.Run(ctx)
	if runErr != nil && summary.Documents == 0 {
		return runErr
	}

	if done, err := output.EmitJSON(stdout, summary); done {
		if err != nil {
			return err
		}
	} else {
		printSummary(stdout, summary)
	}

	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func printSummary(w io.Writer, summary extract.Summary) {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "DOCUMENT\tATTACHMENTS\tSKIPPED\tSIZE\tSTATUS\n")
	for _, report := range summary.Reports {
		status := "ok"
		if report.Error != "" {
			status = "failed: " + report.Error
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
			report.Document, report.Attachments, report.Skipped,
			humanize.Bytes(uint64(report.Bytes)), status)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d documents (%d failed), %d attachments (%s), %d fields skipped\n",
		summary.Documents, summary.Failed, summary.Attachments,
		humanize.Bytes(uint64(summary.Bytes)), summary.Skipped)
}
