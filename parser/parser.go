// Copyright © 2025 The Wisp authors

// Package parser exposes the default wisp reader.
package parser

import (
	"github.com/wisplang/wisp/parser/rdparser"
	"github.com/wisplang/wisp/scheme"
)

// NewReader returns the default (recursive descent) reader.
func NewReader() scheme.Reader {
	return rdparser.NewReader()
}
