package wtf

import _ "embed"

// Version is the release version of the module and the CLI.
//
//go:embed VERSION
var Version string
