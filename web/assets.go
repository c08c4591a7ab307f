// Package web embeds the built-in demo chat page served at the root path.
// Production deployments front the API with their own client; the embedded
// page exists so a bare `robogw serve` is immediately usable in a browser.
package web

import "embed"

// Assets contains the embedded demo page.
//
//go:embed index.html
var Assets embed.FS
