// Package web embeds the page templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the static asset tree served under /static/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(content, "static")
}

// TemplatesFS returns the page templates.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(content, "templates")
}
