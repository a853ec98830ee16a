// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package xmlscan

import (
	"encoding/xml"
	"fmt"
	"regexp"
)

// DefaultFieldPattern matches InfoPath's default attachment control
// names (felt1, felt31, ...). Matching is anchored at the start of the
// local name only, so "felt31_extra" also matches.
const DefaultFieldPattern = `^felt\d+`

// Selector decides which elements are candidate attachment fields.
type Selector struct {
	// Pattern is matched against the element's local name.
	Pattern *regexp.Regexp

	// Namespace, when non-empty, must equal the element's namespace
	// URI. Empty matches elements in any namespace.
	Namespace string
}

// NewSelector compiles pattern (DefaultFieldPattern when empty) into a
// Selector.
func NewSelector(pattern, namespace string) (Selector, error) {
	if pattern == "" {
		pattern = DefaultFieldPattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return Selector{}, fmt.Errorf("compiling field pattern %q: %w", pattern, err)
	}
	return Selector{Pattern: compiled, Namespace: namespace}, nil
}

// Matches reports whether an element with the given name is selected.
func (s Selector) Matches(name xml.Name) bool {
	if s.Namespace != "" && name.Space != s.Namespace {
		return false
	}
	return s.Pattern != nil && s.Pattern.MatchString(name.Local)
}
