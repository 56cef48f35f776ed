// Package templateengine provides a reference §6 "Template engine
// registry" entry: a single trivial engine named "simple". Mustache-like
// rendering is explicitly out of CORE scope (spec §1); no third-party
// Mustache-like library appears anywhere in the retrieval pack, so this
// reference engine is std-library text/template, named and bounded
// tightly enough that it never competes with a real pluggable engine —
// see DESIGN.md.
package templateengine

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/funvibe/archctl/internal/session"
)

// Simple renders Go text/template syntax against the merged scope map.
type Simple struct{}

// Render implements session.TemplateEngine.
func (Simple) Render(templateSource string, scope map[string]interface{}) (string, error) {
	tmpl, err := template.New("archetype").Option("missingkey=zero").Parse(templateSource)
	if err != nil {
		return "", fmt.Errorf("templateengine: parse: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, scope); err != nil {
		return "", fmt.Errorf("templateengine: render: %w", err)
	}
	return buf.String(), nil
}

// RegisterDefaults registers the reference engines this package ships
// with into sess's registry, under the name a <template engine="..">
// attribute would use.
func RegisterDefaults(sess *session.Session) {
	sess.RegisterEngine("simple", Simple{})
}
