package workspace

import (
	"promocast.app/engine/internal/domain"
	"promocast.app/engine/internal/template"
)

// TemplateGenerator is the default ContentGenerator: it fills the baseline
// text field from a neutral template so a freshly selected platform starts
// editable instead of empty. Placeholders that cannot be resolved yet are
// captured under a private helper key for the UI to prompt on.
type TemplateGenerator struct {
	Template string
}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{Template: "{title} | {date} {time} @ {venue}"}
}

func (g *TemplateGenerator) Generate(platform string, vars template.VariableSet) domain.FieldBag {
	bag := domain.FieldBag{
		"text": template.Substitute(g.Template, vars),
	}
	if missing := template.Unresolved(g.Template, vars); len(missing) > 0 {
		bag["_unresolved"] = missing
	}
	return bag
}
