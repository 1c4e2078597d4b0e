// Package render implements C2 (Prompt Renderer): deterministic rendering of the planner and
// coder prompts from schemas, detected patterns, examples, and (on retry) prior violations.
package render

import (
	"embed"
	"text/template"
)

//go:embed templates
var embeddedTemplates embed.FS

var (
	planTemplate = template.Must(template.ParseFS(embeddedTemplates, "templates/plan.tmpl"))
	codeTemplate = template.Must(template.ParseFS(embeddedTemplates, "templates/code.tmpl"))
)
