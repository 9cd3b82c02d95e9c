// Package assets embeds static files shipped with the binary.
package assets

import "embed"

// all: is required to include the underscore-prefixed base layouts.
//
//go:embed all:templates
var FS embed.FS
