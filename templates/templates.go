// Package templates holds the embedded HTML pages.
package templates

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed html/*.html
var files embed.FS

var pages = []string{
	"login", "dashboard", "records", "add", "edit", "change_password",
}

// Load parses every page together with the shared layout. Pages are
// rendered by executing "base".
func Load() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("").ParseFS(files,
			"html/base.html",
			"html/record_table.html",
			"html/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}
