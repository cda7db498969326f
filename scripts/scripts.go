// Package scripts embeds the Risor capture scripts shipped with scopeview.
package scripts

import "embed"

// FS holds capture/<language>.risor for every language with a bundled
// capture script.
//
//go:embed capture/*.risor
var FS embed.FS
