// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles user CUE data against an embedded schema
// definition and decodes the unified value.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	values, err := cueutil.Decode[map[string]any](
//	    schema,
//	    data,
//	    "#Config",
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
//
// Errors carry the file name and a JSON-style path to the offending field.
package cueutil
