// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/Zuuber/infopath-extractor/cmd/infopath/cli"
	"github.com/Zuuber/infopath-extractor/lib/extract"
	"github.com/Zuuber/infopath-extractor/lib/infopath"
	"github.com/Zuuber/infopath-extractor/lib/manifest"
	"github.com/Zuuber/infopath-extractor/lib/sink"
)

type decodeParams struct {
	cli.JSONOutput
	Base64   bool   `json:"base64"    flag:"base64,b"  desc:"input is base64 text as found in the form field"`
	Output   string `json:"output"    flag:"output,o"  desc:"write the attachment into this directory"`
	Strict   bool   `json:"strict"    flag:"strict"    desc:"reject a header size other than 24"`
	LogLevel string `json:"log_level" flag:"log-level" desc:"debug, info, warn, or error" default:"warn"`
}

// decodeResult describes one decoded container.
type decodeResult struct {
	Filename       string `json:"filename"`
	HeaderSize     uint32 `json:"header_size"`
	FilenameLength uint32 `json:"filename_length"`
	Size           int    `json:"size"`
	Digest         string `json:"digest"`
	Path           string `json:"path,omitempty"`
}

func decodeCommand(stdout io.Writer) *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode a single attachment container",
		Description: `Decode one attachment container and describe it.

The input is the raw container bytes, or with --base64 the text of a
form field. Use "-" to read stdin. With --output, the attachment is
written into the given directory under its recorded filename.`,
		Usage:  "infopath decode [flags] <file>",
		Params: func() any { return &params },
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one <file> argument, got %d", len(args))
			}
			level, err := cli.ParseLevel(params.LogLevel)
			if err != nil {
				return err
			}
			decoder := &infopath.Decoder{
				Logger: cli.NewCommandLogger(level).With("command", "decode", "input", args[0]),
				Strict: params.Strict,
			}

			result, err := decodeFile(decoder, args[0], params.Base64, params.Output)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "filename:         %s\n", result.Filename)
			fmt.Fprintf(stdout, "header size:      %d\n", result.HeaderSize)
			fmt.Fprintf(stdout, "filename length:  %d\n", result.FilenameLength)
			fmt.Fprintf(stdout, "size:             %s (%d bytes)\n", humanize.Bytes(uint64(result.Size)), result.Size)
			fmt.Fprintf(stdout, "blake3:           %s\n", result.Digest)
			if result.Path != "" {
				fmt.Fprintf(stdout, "written to:       %s\n", result.Path)
			}
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Describe a field's base64 text saved to a file",
				Command:     "infopath decode --base64 felt31.txt",
			},
			{
				Description: "Decode from stdin and save the attachment",
				Command:     "xmllint --xpath 'string(//*[local-name()=\"felt31\"])' form.xml | infopath decode -b -o ./out -",
			},
		},
	}
}

func decodeFile(decoder *infopath.Decoder, path string, isBase64 bool, outputDir string) (*decodeResult, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	if isBase64 {
		data, err = extract.DecodeBase64(string(data))
		if err != nil {
			return nil, fmt.Errorf("decoding base64: %w", err)
		}
	}

	attachment, err := decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	result := &decodeResult{
		Filename:       attachment.Filename,
		HeaderSize:     attachment.HeaderSize,
		FilenameLength: attachment.FilenameLength,
		Size:           len(attachment.Content),
		Digest:         manifest.Digest(attachment.Content),
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, err
		}
		written, err := (&sink.Writer{}).Write(outputDir, sink.SanitizeFilename(attachment.Filename), attachment.Content)
		if err != nil {
			return nil, err
		}
		result.Path = written.Path
	}
	return result, nil
}

// readInput reads path, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
