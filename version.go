package lanote

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the released version of the library.
var Version = strings.TrimSpace(version)
