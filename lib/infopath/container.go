// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package infopath

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// HeaderLength is the size of the fixed container header and the value
// well-formed producers write into the header size field.
const HeaderLength = 24

// Field offsets within the fixed header.
const (
	headerSizeOffset     = 0
	reservedOffset       = 4
	filenameLengthOffset = 20
)

// diagnosticPrefixLength is how many leading bytes of a rejected buffer
// are included in the debug record.
const diagnosticPrefixLength = 10

// Attachment is a decoded container.
type Attachment struct {
	// Filename is the original filename with trailing NUL padding
	// removed.
	Filename string

	// Content is the file payload. It aliases the buffer passed to
	// Decode; callers that retain it past the buffer's lifetime must
	// copy it. It may be empty.
	Content []byte

	// HeaderSize is the raw value of the header size field.
	HeaderSize uint32

	// Reserved holds bytes 4 through 19 of the header verbatim.
	Reserved [16]byte

	// FilenameLength is the declared filename length in UTF-16 code
	// units, padding included.
	FilenameLength uint32
}

// Decoder decodes containers. The zero value is a lenient decoder that
// discards diagnostics.
type Decoder struct {
	// Logger receives diagnostics: a warning when the header size
	// field is unexpected, and a debug record with the leading bytes
	// of any buffer that fails to decode. Nil discards them. Logging
	// never changes the result.
	Logger *slog.Logger

	// Strict rejects containers whose header size field is not
	// HeaderLength with a HeaderSizeMismatch error.
	Strict bool
}

// Decode decodes buffer with a lenient, silent decoder.
func Decode(buffer []byte) (*Attachment, error) {
	var decoder Decoder
	return decoder.Decode(buffer)
}

// Decode parses buffer as a container. The buffer is not modified.
func (d *Decoder) Decode(buffer []byte) (*Attachment, error) {
	attachment, err := d.decode(buffer)
	if err != nil && d.Logger != nil {
		prefix := buffer[:min(len(buffer), diagnosticPrefixLength)]
		d.Logger.Debug("attachment container rejected",
			"error", err,
			"length", len(buffer),
			"leading_bytes", hex.EncodeToString(prefix),
		)
	}
	return attachment, err
}

func (d *Decoder) decode(buffer []byte) (*Attachment, error) {
	if len(buffer) < HeaderLength {
		return nil, &DecodeError{Kind: KindHeaderTooShort, Length: len(buffer)}
	}

	attachment := &Attachment{
		HeaderSize:     binary.LittleEndian.Uint32(buffer[headerSizeOffset:]),
		FilenameLength: binary.LittleEndian.Uint32(buffer[filenameLengthOffset:]),
	}
	copy(attachment.Reserved[:], buffer[reservedOffset:filenameLengthOffset])

	if attachment.HeaderSize != HeaderLength {
		if d.Strict {
			return nil, &DecodeError{
				Kind:       KindHeaderSizeMismatch,
				Length:     len(buffer),
				HeaderSize: attachment.HeaderSize,
			}
		}
		if d.Logger != nil {
			d.Logger.Warn("unexpected attachment header size",
				"header_size", attachment.HeaderSize,
				"expected", HeaderLength,
			)
		}
	}

	// uint64 keeps 2*FilenameLength from wrapping where int is 32 bits.
	filenameEnd := uint64(HeaderLength) + 2*uint64(attachment.FilenameLength)
	if filenameEnd > uint64(len(buffer)) {
		return nil, &DecodeError{
			Kind:           KindFilenameRegionOverflow,
			Length:         len(buffer),
			HeaderSize:     attachment.HeaderSize,
			FilenameLength: attachment.FilenameLength,
		}
	}

	filename, err := DecodeFilename(buffer[HeaderLength:filenameEnd])
	if err != nil {
		decodeErr := err.(*DecodeError)
		decodeErr.Length = len(buffer)
		decodeErr.HeaderSize = attachment.HeaderSize
		decodeErr.FilenameLength = attachment.FilenameLength
		return nil, decodeErr
	}

	attachment.Filename = filename
	attachment.Content = buffer[filenameEnd:]
	return attachment, nil
}

// Encode builds the container for attachment. The filename is padded
// with NUL code units up to FilenameLength; a zero FilenameLength means
// exactly the filename's own length. Decode(Encode(a)) reproduces a,
// and Encode(Decode(b)) reproduces b byte for byte.
func Encode(attachment *Attachment) ([]byte, error) {
	name := EncodeFilename(attachment.Filename)
	units := uint64(len(name) / 2)

	filenameLength := uint64(attachment.FilenameLength)
	if filenameLength == 0 {
		filenameLength = units
	}
	if units > filenameLength {
		return nil, fmt.Errorf("infopath: filename %q needs %d code units, header declares %d",
			attachment.Filename, units, filenameLength)
	}
	if filenameLength > 1<<32-1 {
		return nil, fmt.Errorf("infopath: filename of %d code units does not fit the header", filenameLength)
	}

	buffer := make([]byte, HeaderLength+2*int(filenameLength)+len(attachment.Content))
	binary.LittleEndian.PutUint32(buffer[headerSizeOffset:], attachment.HeaderSize)
	copy(buffer[reservedOffset:filenameLengthOffset], attachment.Reserved[:])
	binary.LittleEndian.PutUint32(buffer[filenameLengthOffset:], uint32(filenameLength))
	copy(buffer[HeaderLength:], name)
	copy(buffer[HeaderLength+2*int(filenameLength):], attachment.Content)
	return buffer, nil
}
