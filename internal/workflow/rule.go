package workflow

import (
	apperrors "workflow/pkg/errors"
)

// Rule maps a trigger to a message, a recipient set and delivery channels.
// Rules are built once at startup and never mutated afterwards.
type Rule struct {
	Name       string
	Trigger    Trigger
	Condition  Condition
	Text       Template
	Body       Template
	Links      []ActionLink
	Recipients []RecipientSpec
	Channels   []string
}

// RuleBuilder assembles a Rule fluently:
//
//	workflow.Define("post_published").
//		When(workflow.NamedTrigger{Event: "publish_post"}).
//		What(workflow.StaticText("Post published: %title%")).
//		Who(workflow.Roles{"post_author", "assignee"}).
//		Where("email", "dashboard")
type RuleBuilder struct {
	rule Rule
}

func Define(name string) *RuleBuilder {
	return &RuleBuilder{rule: Rule{Name: name}}
}

func (b *RuleBuilder) When(t Trigger) *RuleBuilder {
	b.rule.Trigger = t
	return b
}

// If adds a guard evaluated after the trigger matched.
func (b *RuleBuilder) If(c Condition) *RuleBuilder {
	b.rule.Condition = c
	return b
}

func (b *RuleBuilder) What(text Template) *RuleBuilder {
	b.rule.Text = text
	return b
}

func (b *RuleBuilder) Body(body Template) *RuleBuilder {
	b.rule.Body = body
	return b
}

func (b *RuleBuilder) Link(l ActionLink) *RuleBuilder {
	b.rule.Links = append(b.rule.Links, l)
	return b
}

// Who adds a recipient spec. Repeated calls are additive.
func (b *RuleBuilder) Who(spec RecipientSpec) *RuleBuilder {
	b.rule.Recipients = append(b.rule.Recipients, spec)
	return b
}

func (b *RuleBuilder) Where(channels ...string) *RuleBuilder {
	b.rule.Channels = append(b.rule.Channels, channels...)
	return b
}

// Build validates and returns the rule.
func (b *RuleBuilder) Build() (Rule, error) {
	if err := b.rule.Validate(); err != nil {
		return Rule{}, err
	}
	return b.rule.clone(), nil
}

// Validate reports the first malformed field as a CONFIGURATION_ERROR.
func (r Rule) Validate() error {
	if r.Name == "" {
		return apperrors.Configurationf("name", "rule name is required")
	}
	if err := validateTrigger(r.Name, r.Trigger); err != nil {
		return err
	}
	if err := validateTemplate(r.Name, "text", r.Text, true); err != nil {
		return err
	}
	if err := validateTemplate(r.Name, "body", r.Body, false); err != nil {
		return err
	}
	for i, l := range r.Links {
		if err := validateLink(r.Name, i, l); err != nil {
			return err
		}
	}
	if err := validateRecipients(r.Name, r.Recipients); err != nil {
		return err
	}
	return validateChannels(r.Name, r.Channels)
}

func validateTrigger(rule string, t Trigger) error {
	switch tr := t.(type) {
	case nil:
		return apperrors.Configurationf("trigger", "rule %q has no trigger", rule)
	case NamedTrigger:
		if tr.Event == "" {
			return apperrors.Configurationf("trigger", "rule %q: named trigger needs an event name", rule)
		}
	case PredicateTrigger:
		if tr.Action == "" {
			return apperrors.Configurationf("trigger", "rule %q: predicate trigger needs an action", rule)
		}
		if tr.Arity < 0 {
			return apperrors.Configurationf("trigger", "rule %q: arity must be non-negative, got %d", rule, tr.Arity)
		}
		if tr.Predicate == nil {
			return apperrors.Configurationf("trigger", "rule %q: predicate trigger needs a predicate", rule)
		}
	default:
		return apperrors.Configurationf("trigger", "rule %q: unsupported trigger %T", rule, t)
	}
	return nil
}

func validateTemplate(rule, field string, t Template, required bool) error {
	switch tpl := t.(type) {
	case nil:
		if required {
			return apperrors.Configurationf(field, "rule %q has no %s template", rule, field)
		}
	case StaticText:
		if required && tpl == "" {
			return apperrors.Configurationf(field, "rule %q has an empty %s template", rule, field)
		}
	case ComputedText:
		if tpl.Fn == nil {
			return apperrors.Configurationf(field, "rule %q: computed %s template has no function", rule, field)
		}
	default:
		return apperrors.Configurationf(field, "rule %q: unsupported %s template %T", rule, field, t)
	}
	return nil
}

func validateLink(rule string, i int, l ActionLink) error {
	if l.Name == "" {
		return apperrors.Configurationf("links", "rule %q: link %d has no name", rule, i)
	}
	if err := validateTemplate(rule, "links."+l.Name+".label", l.Label, true); err != nil {
		return err
	}
	switch target := l.Target.(type) {
	case LinkURL:
		if target == "" {
			return apperrors.Configurationf("links", "rule %q: link %q has an empty URL", rule, l.Name)
		}
	case LinkFunc:
		if target == nil {
			return apperrors.Configurationf("links", "rule %q: link %q has a nil target function", rule, l.Name)
		}
	default:
		return apperrors.Configurationf("links", "rule %q: link %q has no target", rule, l.Name)
	}
	for key, c := range l.Schema {
		if !c.valid() {
			return apperrors.Configurationf("links", "rule %q: link %q has no coercion for %q", rule, l.Name, key)
		}
	}
	return nil
}

func validateRecipients(rule string, specs []RecipientSpec) error {
	if len(specs) == 0 {
		return apperrors.Configurationf("recipients", "rule %q declares no recipients", rule)
	}
	for _, spec := range specs {
		switch s := spec.(type) {
		case Roles:
			if len(s) == 0 {
				return apperrors.Configurationf("recipients", "rule %q: empty role list", rule)
			}
			for _, role := range s {
				if role == "" {
					return apperrors.Configurationf("recipients", "rule %q: empty role tag", rule)
				}
			}
		case DynamicRecipients:
			if s.Fn == nil {
				return apperrors.Configurationf("recipients", "rule %q: dynamic recipients need a function", rule)
			}
		default:
			return apperrors.Configurationf("recipients", "rule %q: unsupported recipient spec %T", rule, spec)
		}
	}
	return nil
}

func validateChannels(rule string, channels []string) error {
	if len(channels) == 0 {
		return apperrors.Configurationf("channels", "rule %q declares no channels", rule)
	}
	seen := make(map[string]bool, len(channels))
	for _, ch := range channels {
		if ch == "" {
			return apperrors.Configurationf("channels", "rule %q: empty channel name", rule)
		}
		if seen[ch] {
			return apperrors.Configurationf("channels", "rule %q: channel %q listed twice", rule, ch)
		}
		seen[ch] = true
	}
	return nil
}

func (r Rule) clone() Rule {
	out := r
	out.Links = append([]ActionLink(nil), r.Links...)
	out.Recipients = append([]RecipientSpec(nil), r.Recipients...)
	out.Channels = append([]string(nil), r.Channels...)
	return out
}
