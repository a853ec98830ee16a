// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package xmlscan

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Field is a selected element.
type Field struct {
	// Name is the element's local name, e.g. "felt31".
	Name string

	// Namespace is the element's namespace URI.
	Namespace string

	// Text is the element's leading text (the text before its first
	// child element) with surrounding whitespace removed. Empty when
	// the element has no text.
	Text string

	// Line is the line of the input on which the element's start tag
	// ends.
	Line int
}

// openElement tracks an element on the parse stack.
type openElement struct {
	// field is nil for elements the selector did not match.
	field *Field

	// text accumulates character data until the first child starts.
	text strings.Builder

	// emitted is set once the field's leading text is complete and it
	// has been passed to the visitor.
	emitted bool
}

// Scan reads an XML document from r and calls visit for every element
// the selector matches, in document order. A non-nil error from visit
// stops the scan and is returned unchanged.
func Scan(r io.Reader, selector Selector, visit func(Field) error) error {
	input, transcoded, err := documentReader(r)
	if err != nil {
		return err
	}

	decoder := xml.NewDecoder(input)
	decoder.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		// A BOM-marked UTF-16 document has already been transcoded,
		// but its declaration still names UTF-16.
		if transcoded && isUTF16Label(label) {
			return input, nil
		}
		return charset.NewReaderLabel(label, input)
	}

	var stack []*openElement
	emit := func(element *openElement) error {
		if element.field == nil || element.emitted {
			return nil
		}
		element.emitted = true
		element.field.Text = strings.TrimSpace(element.text.String())
		return visit(*element.field)
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parsing XML: %w", err)
		}

		switch token := token.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				if err := emit(stack[len(stack)-1]); err != nil {
					return err
				}
			}
			element := &openElement{}
			if selector.Matches(token.Name) {
				line, _ := decoder.InputPos()
				element.field = &Field{
					Name:      token.Name.Local,
					Namespace: token.Name.Space,
					Line:      line,
				}
			}
			stack = append(stack, element)

		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.field != nil && !top.emitted {
					top.text.Write(token)
				}
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := emit(top); err != nil {
				return err
			}
		}
	}

	if len(stack) > 0 {
		return fmt.Errorf("parsing XML: %w", io.ErrUnexpectedEOF)
	}
	return nil
}

// documentReader wraps r so that a UTF-16 document with a byte order
// mark is read as UTF-8. It reports whether transcoding is active.
func documentReader(r io.Reader) (io.Reader, bool, error) {
	buffered := bufio.NewReader(r)
	prefix, err := buffered.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, false, fmt.Errorf("reading XML: %w", err)
	}
	if bytes.HasPrefix(prefix, []byte{0xEF, 0xBB, 0xBF}) {
		if _, err := buffered.Discard(3); err != nil {
			return nil, false, fmt.Errorf("reading XML: %w", err)
		}
		return buffered, false, nil
	}
	if bytes.HasPrefix(prefix, []byte{0xFF, 0xFE}) || bytes.HasPrefix(prefix, []byte{0xFE, 0xFF}) {
		decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		return transform.NewReader(buffered, decoder), true, nil
	}
	return buffered, false, nil
}

func isUTF16Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-16", "utf16", "utf-16le", "utf-16be", "unicode":
		return true
	}
	return false
}
