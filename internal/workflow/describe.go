package workflow

import "strings"

// RuleInfo is a read-only summary of a registered rule for listings.
type RuleInfo struct {
	Name        string   `json:"name"`
	Trigger     string   `json:"trigger"`
	Event       string   `json:"event"`
	Conditional bool     `json:"conditional"`
	Text        string   `json:"text"`
	Recipients  []string `json:"recipients"`
	Links       []string `json:"links,omitempty"`
	Channels    []string `json:"channels"`
}

// Describe summarises r. Computed templates and recipients are shown by
// the fields they read.
func Describe(r Rule) RuleInfo {
	info := RuleInfo{
		Name:        r.Name,
		Event:       EventName(r.Trigger),
		Conditional: r.Condition != nil,
		Text:        describeTemplate(r.Text),
		Channels:    append([]string(nil), r.Channels...),
	}

	switch r.Trigger.(type) {
	case NamedTrigger:
		info.Trigger = "named"
	case PredicateTrigger:
		info.Trigger = "predicate"
	}

	for _, spec := range r.Recipients {
		switch s := spec.(type) {
		case Roles:
			info.Recipients = append(info.Recipients, s...)
		case DynamicRecipients:
			info.Recipients = append(info.Recipients, "fn("+strings.Join(s.Fields, ", ")+")")
		}
	}

	for _, l := range r.Links {
		info.Links = append(info.Links, l.Name)
	}

	return info
}

func describeTemplate(t Template) string {
	switch tt := t.(type) {
	case StaticText:
		return string(tt)
	case ComputedText:
		return "fn(" + strings.Join(tt.Fields, ", ") + ")"
	default:
		return ""
	}
}
