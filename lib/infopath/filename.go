// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package infopath

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// DecodeFilename decodes a UTF-16LE filename region. Trailing NUL code
// units are padding and are removed; a NUL anywhere before the padding,
// an unpaired surrogate, or an odd region length is an
// InvalidFilenameEncoding error. A region that is empty after trimming
// is an EmptyFilename error.
func DecodeFilename(region []byte) (string, error) {
	if len(region)%2 != 0 {
		return "", &DecodeError{Kind: KindInvalidFilenameEncoding, Offset: len(region) - 1}
	}

	units := make([]uint16, len(region)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(region[i*2:])
	}

	// Surrogates are validated across the whole region, padding
	// included, before any trimming happens.
	var builder strings.Builder
	builder.Grow(len(units))
	for i := 0; i < len(units); i++ {
		unit := units[i]
		switch {
		case unit >= 0xD800 && unit <= 0xDBFF:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] > 0xDFFF {
				return "", &DecodeError{Kind: KindInvalidFilenameEncoding, Offset: i * 2}
			}
			builder.WriteRune(utf16.DecodeRune(rune(unit), rune(units[i+1])))
			i++
		case unit >= 0xDC00 && unit <= 0xDFFF:
			return "", &DecodeError{Kind: KindInvalidFilenameEncoding, Offset: i * 2}
		default:
			builder.WriteRune(rune(unit))
		}
	}

	filename := strings.TrimRight(builder.String(), "\x00")
	if filename == "" {
		return "", &DecodeError{Kind: KindEmptyFilename}
	}
	if index := strings.IndexByte(filename, 0); index >= 0 {
		return "", &DecodeError{Kind: KindInvalidFilenameEncoding, Offset: unitOffset(filename[:index])}
	}
	return filename, nil
}

// EncodeFilename returns the UTF-16LE encoding of name without any
// padding or terminator.
func EncodeFilename(name string) []byte {
	units := utf16.Encode([]rune(name))
	encoded := make([]byte, len(units)*2)
	for i, unit := range units {
		binary.LittleEndian.PutUint16(encoded[i*2:], unit)
	}
	return encoded
}

// unitOffset returns the byte length of prefix once encoded as UTF-16.
func unitOffset(prefix string) int {
	offset := 0
	for _, r := range prefix {
		offset += 2 * utf16.RuneLen(r)
	}
	return offset
}
