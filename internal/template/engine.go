// Package template derives named variables from parsed event data and
// expands {name} placeholders in content templates. Multiple aliases resolve
// to the same parsed value on purpose: template authors are heterogeneous and
// the engine tolerates whichever spelling they picked.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"promocast.app/engine/internal/domain"
)

// Value is a resolved variable: a string or a list of strings. Lists are
// joined with ", " at substitution time.
type Value any

// VariableSet maps variable name to resolved value.
type VariableSet map[string]Value

// Placeholder syntax is exactly {identifier}. Nested or escaped braces are
// not supported.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Variables projects parsed data and uploaded image references into the
// variable set templates substitute against. Deterministic: same inputs,
// same set.
func Variables(parsed *domain.ParsedData, refs []domain.FileReference) VariableSet {
	vars := VariableSet{}

	if parsed != nil {
		addAliased(vars, parsed.Title, "title", "eventTitle", "name")
		addAliased(vars, parsed.Date, "date", "eventDate")
		addAliased(vars, parsed.Time, "time", "eventTime")
		addAliased(vars, parsed.Venue, "venue", "location")
		addAliased(vars, parsed.City, "city", "eventCity")
		addAliased(vars, parsed.Description, "description", "eventDescription")
		if len(parsed.Lineup) > 0 {
			vars["lineup"] = parsed.Lineup
			vars["artists"] = parsed.Lineup
		}
		if len(parsed.Hashtags) > 0 {
			vars["hashtags"] = parsed.Hashtags
		}
	}

	n := 0
	for _, ref := range refs {
		if !ref.IsImage() {
			continue
		}
		n++
		vars[fmt.Sprintf("image%d", n)] = ref.URL
	}
	if n > 0 {
		vars["imageCount"] = fmt.Sprintf("%d", n)
	}

	return vars
}

// Substitute replaces every {name} occurrence with the variable's value.
// Unmatched placeholders are left verbatim, so substitution is idempotent
// once every referenced variable is present.
func Substitute(text string, vars VariableSet) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := vars[name]
		if !ok {
			return match
		}
		return render(v)
	})
}

// Unresolved returns the placeholder names referenced by text but absent from
// vars, in order of first appearance, de-duplicated. Used to prompt the
// operator for manual values when a template references a field that was
// never parsed.
func Unresolved(text string, vars VariableSet) []string {
	var missing []string
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, ok := vars[name]; ok || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	return missing
}

func render(v Value) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprint(val)
	}
}

func addAliased(vars VariableSet, value string, names ...string) {
	if value == "" {
		return
	}
	for _, name := range names {
		vars[name] = value
	}
}
