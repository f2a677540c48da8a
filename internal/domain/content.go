package domain

import "strings"

// FieldBag is one platform's editable content: text, caption, subject, html,
// recipients and whatever else the platform's field schema declares. Keys
// prefixed with an underscore are private helper fields (e.g. the interim
// value captured for an unresolved template variable) and must never be
// treated as publishable content.
type FieldBag map[string]any

// Public returns a copy of the bag without private helper keys.
func (b FieldBag) Public() FieldBag {
	out := make(FieldBag, len(b))
	for k, v := range b {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out
}

// HasContent reports whether any publishable (non-private) field is set.
func (b FieldBag) HasContent() bool {
	for k := range b {
		if !strings.HasPrefix(k, "_") {
			return true
		}
	}
	return false
}

func (b FieldBag) Clone() FieldBag {
	out := make(FieldBag, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// PlatformContent maps platform id to that platform's field bag. Bags are
// independently edited and independently persisted.
type PlatformContent map[string]FieldBag

func (c PlatformContent) Clone() PlatformContent {
	out := make(PlatformContent, len(c))
	for platform, bag := range c {
		out[platform] = bag.Clone()
	}
	return out
}

// Platforms returns the platform ids that carry publishable content.
func (c PlatformContent) Platforms() []string {
	var out []string
	for platform, bag := range c {
		if bag.HasContent() {
			out = append(out, platform)
		}
	}
	return out
}
