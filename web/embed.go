// Package web embeds the HTML templates and static assets served by the
// page handlers.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the stylesheet and other static files.
func StaticFS() fs.FS { return mustSub("static") }

// TemplatesFS returns the page templates. layout.html defines "layout",
// every other file defines "content".
func TemplatesFS() fs.FS { return mustSub("templates") }

// mustSub only fails if the embed directive and dir disagree.
func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(content, dir)
	if err != nil {
		panic(fmt.Sprintf("embedded %s directory: %v", dir, err))
	}
	return sub
}
