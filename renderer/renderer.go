// Package renderer turns captable reports into markdown documents. Views are
// plain structs with json tags, so every report can also be emitted as json
// by the CLI; the markdown rendering is a text/template over the same view.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderOwnership renders the Ownership view to a markdown string.
func RenderOwnership(o *Ownership) string {
	partials := map[string]string{
		"ownership_title":   "ownership_title.md",
		"ownership_holders": "ownership_holders.md",
		"ownership_classes": "ownership_classes.md",
		"ownership_kinds":   "ownership_kinds.md",
	}
	return renderTemplate("ownership", "ownership.md", partials, o)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
