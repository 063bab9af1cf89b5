// Package web holds the embedded page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static templates
var assets embed.FS

// StaticFS returns the static assets served under /static/.
func StaticFS() fs.FS { return mustSub("static") }

// TemplatesFS returns the HTML page templates.
func TemplatesFS() fs.FS { return mustSub("templates") }

// mustSub panics if dir is not embedded.
func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		panic(fmt.Sprintf("web: embedded %s directory: %v", dir, err))
	}
	return sub
}
