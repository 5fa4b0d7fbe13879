// Copyright © 2025 The Wisp authors

// Package schemelib embeds the wisp standard library.
package schemelib

import (
	_ "embed"

	"github.com/wisplang/wisp/scheme"
)

//go:embed prelude.scm
var preludeSrc string

// LoadLibrary evaluates the embedded prelude in rt's root scope.  The
// runtime must have a reader configured.
func LoadLibrary(rt *scheme.Runtime) error {
	v, err := rt.LoadString("prelude.scm", preludeSrc)
	if err != nil {
		return err
	}
	v.Release()
	return nil
}
