// Package templates embeds the page and dialog markup served by the web
// front-end.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed *.html pages/*.html dialog/*.html
var FS embed.FS

// Dialog returns the dialog view templates, named "<view>.html".
func Dialog() fs.FS {
	sub, err := fs.Sub(FS, "dialog")
	if err != nil {
		panic(err)
	}
	return sub
}
