// Package web embeds the HTML templates and static assets served by the
// HTTP server.
package web

import "embed"

//go:embed templates
var Templates embed.FS

//go:embed static
var Static embed.FS
