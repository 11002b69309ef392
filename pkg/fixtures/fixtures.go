// Package fixtures embeds the example problem definitions.
package fixtures

import "embed"

//go:embed *.yaml
var FS embed.FS
