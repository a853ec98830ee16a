// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package infopath

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind uint8

const (
	// KindHeaderTooShort: the buffer is shorter than the fixed header.
	KindHeaderTooShort Kind = iota + 1

	// KindFilenameRegionOverflow: the declared filename length runs
	// past the end of the buffer.
	KindFilenameRegionOverflow

	// KindInvalidFilenameEncoding: the filename region is not valid
	// UTF-16LE text, or contains a NUL before its trailing padding.
	KindInvalidFilenameEncoding

	// KindEmptyFilename: the filename is empty once trailing NULs are
	// removed.
	KindEmptyFilename

	// KindHeaderSizeMismatch: the header size field is not 24. Only
	// returned by a strict [Decoder]; lenient decoding logs it.
	KindHeaderSizeMismatch
)

// String returns the snake_case name used in log records and
// manifests.
func (kind Kind) String() string {
	switch kind {
	case KindHeaderTooShort:
		return "header_too_short"
	case KindFilenameRegionOverflow:
		return "filename_region_overflow"
	case KindInvalidFilenameEncoding:
		return "invalid_filename_encoding"
	case KindEmptyFilename:
		return "empty_filename"
	case KindHeaderSizeMismatch:
		return "header_size_mismatch"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(kind))
	}
}

// Sentinels for errors.Is. A *DecodeError matches the sentinel of its
// Kind.
var (
	ErrHeaderTooShort          = &DecodeError{Kind: KindHeaderTooShort}
	ErrFilenameRegionOverflow  = &DecodeError{Kind: KindFilenameRegionOverflow}
	ErrInvalidFilenameEncoding = &DecodeError{Kind: KindInvalidFilenameEncoding}
	ErrEmptyFilename           = &DecodeError{Kind: KindEmptyFilename}
	ErrHeaderSizeMismatch      = &DecodeError{Kind: KindHeaderSizeMismatch}
)

// DecodeError describes why a buffer is not a valid container. Fields
// other than Kind carry whatever context was known at the point of
// failure and are zero otherwise.
type DecodeError struct {
	Kind Kind

	// Length is the length of the buffer being decoded.
	Length int

	// HeaderSize is the value of the header size field.
	HeaderSize uint32

	// FilenameLength is the declared filename length in UTF-16 code
	// units.
	FilenameLength uint32

	// Offset is the byte offset within the filename region of an
	// unpaired surrogate or embedded NUL.
	Offset int
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindHeaderTooShort:
		return fmt.Sprintf("infopath: container is %d bytes, header needs %d", e.Length, HeaderLength)
	case KindFilenameRegionOverflow:
		return fmt.Sprintf("infopath: filename of %d code units ends at byte %d, past end of %d-byte container",
			e.FilenameLength, uint64(HeaderLength)+2*uint64(e.FilenameLength), e.Length)
	case KindInvalidFilenameEncoding:
		return fmt.Sprintf("infopath: filename is not valid UTF-16LE (byte %d of filename region)", e.Offset)
	case KindEmptyFilename:
		return "infopath: filename is empty"
	case KindHeaderSizeMismatch:
		return fmt.Sprintf("infopath: header size field is %d, expected %d", e.HeaderSize, HeaderLength)
	default:
		return fmt.Sprintf("infopath: decode failed (%s)", e.Kind)
	}
}

// Is reports whether target is a *DecodeError of the same Kind.
func (e *DecodeError) Is(target error) bool {
	other, ok := target.(*DecodeError)
	return ok && other.Kind == e.Kind
}

// KindOf returns the Kind of the first *DecodeError in err's chain, or
// zero if there is none.
func KindOf(err error) Kind {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Kind
	}
	return 0
}
