package domain

// ParsedData holds the structured fields extracted from uploaded material.
// It is optional on an event, replaced wholesale on re-parse, and merged
// field-by-field on manual edits.
type ParsedData struct {
	Title       string   `json:"title,omitempty"`
	Date        string   `json:"date,omitempty"`
	Time        string   `json:"time,omitempty"`
	Venue       string   `json:"venue,omitempty"`
	City        string   `json:"city,omitempty"`
	Description string   `json:"description,omitempty"`
	Lineup      []string `json:"lineup,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
}

// SetField merges one manual edit into the working copy. Returns false for
// field names that are not single-valued text fields (lineup and hashtags
// have dedicated mutations).
func (p *ParsedData) SetField(name, value string) bool {
	switch name {
	case "title":
		p.Title = value
	case "date":
		p.Date = value
	case "time":
		p.Time = value
	case "venue":
		p.Venue = value
	case "city":
		p.City = value
	case "description":
		p.Description = value
	default:
		return false
	}
	return true
}

// IsEmpty reports whether nothing was parsed or edited yet.
func (p *ParsedData) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Title == "" && p.Date == "" && p.Time == "" && p.Venue == "" &&
		p.City == "" && p.Description == "" && len(p.Lineup) == 0 && len(p.Hashtags) == 0
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the live working copy.
func (p *ParsedData) Clone() *ParsedData {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Lineup = append([]string(nil), p.Lineup...)
	cp.Hashtags = append([]string(nil), p.Hashtags...)
	return &cp
}
