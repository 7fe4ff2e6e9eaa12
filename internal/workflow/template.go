package workflow

import (
	"regexp"

	apperrors "workflow/pkg/errors"
)

// Template produces message text from a payload. It is either StaticText or
// ComputedText.
type Template interface {
	isTemplate()
}

// StaticText substitutes %token% placeholders from the payload. Tokens may
// be dotted paths; unresolved tokens are left verbatim.
type StaticText string

// ComputedText passes the payload values named by Fields to Fn positionally
// (nil for misses) and uses its result verbatim.
type ComputedText struct {
	Fields []string
	Fn     func(args ...interface{}) string
}

func (StaticText) isTemplate()   {}
func (ComputedText) isTemplate() {}

var tokenPattern = regexp.MustCompile(`%([A-Za-z0-9_.\-]+)%`)

// Render produces the final text for t. A nil template renders as "".
func Render(t Template, p Payload) (string, error) {
	switch tpl := t.(type) {
	case nil:
		return "", nil
	case StaticText:
		return Substitute(string(tpl), p), nil
	case ComputedText:
		if tpl.Fn == nil {
			return "", apperrors.Configurationf("template", "computed template has no function")
		}
		return tpl.Fn(p.Values(tpl.Fields...)...), nil
	default:
		return "", apperrors.Configurationf("template", "unsupported template type %T", t)
	}
}

// Substitute replaces every %token% that resolves in p.
func Substitute(s string, p Payload) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		v, ok := p.Lookup(token[1 : len(token)-1])
		if !ok {
			return token
		}
		return Format(v)
	})
}

// Tokens lists the placeholder names in s in order of appearance.
func Tokens(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
