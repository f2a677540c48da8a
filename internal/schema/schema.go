// Package schema publishes the field schemas the browser-side form renderer
// consumes. The renderer itself is an external collaborator; the engine only
// declares the shape of the content it will accept back.
package schema

import "github.com/invopop/jsonschema"

// ContentFields is the canonical shape of one platform's editable field bag.
// Platforms use a subset; underscore-prefixed helper keys are private to the
// engine and deliberately absent here.
type ContentFields struct {
	Text       string   `json:"text,omitempty" jsonschema:"title=Post text"`
	Caption    string   `json:"caption,omitempty" jsonschema:"title=Caption"`
	Subject    string   `json:"subject,omitempty" jsonschema:"title=Subject line"`
	HTML       string   `json:"html,omitempty" jsonschema:"title=HTML body"`
	Recipients []string `json:"recipients,omitempty" jsonschema:"title=Recipients"`
	Link       string   `json:"link,omitempty" jsonschema:"title=Link,format=uri"`
}

// PlatformContent reflects the schema for the full per-platform content map.
func PlatformContent() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&ContentFields{})
}
