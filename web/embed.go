// Package web embeds the mood recommender's HTML templates and browser
// assets (stylesheet and the camera capture script) into the binary.
package web

import "embed"

// TemplatesFS holds layouts/, partials/ and pages/ under "templates".
//
//go:embed all:templates
var TemplatesFS embed.FS

// StaticFS holds css/ and js/ under "static", served at /static/.
//
//go:embed all:static
var StaticFS embed.FS
