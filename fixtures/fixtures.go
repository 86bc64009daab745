package fixtures

import (
	_ "embed"
)

//go:embed config/config.yaml.template
var ConfigTemplate []byte

// BuiltinKernels is the software device code object exposing the built-in
// kernels.
//
//go:embed kernels/builtin.yaml
var BuiltinKernels []byte
