// Package appfs exposes the assets compiled into the binary: database
// migrations and the built-in cover catalogue.
package appfs

import "embed"

//go:embed migrations themes.yml
var FS embed.FS
