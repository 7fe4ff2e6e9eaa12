package workflow

import (
	"fmt"
	"sort"

	apperrors "workflow/pkg/errors"
	"workflow/pkg/models"
)

// Link is a resolved action link attached to a rendered message.
type Link = models.Link

// ActionLink declares a link rendered per event. Every Schema entry must be
// present in the arguments and coerce cleanly, otherwise the link is dropped.
type ActionLink struct {
	Name   string
	Label  Template
	Target LinkTarget
	Args   LinkArgs
	Schema map[string]Coercion
}

// LinkTarget is either a LinkURL or a LinkFunc.
type LinkTarget interface {
	isLinkTarget()
}

// LinkURL is a literal URL; %token% placeholders are substituted.
type LinkURL string

// LinkFunc computes the URL from the payload.
type LinkFunc func(p Payload) (string, error)

func (LinkURL) isLinkTarget()  {}
func (LinkFunc) isLinkTarget() {}

// LinkArgs is either StaticArgs or ComputedArgs.
type LinkArgs interface {
	isLinkArgs()
}

// StaticArgs are literal arguments. String values have their placeholders
// substituted.
type StaticArgs map[string]interface{}

// ComputedArgs builds the arguments from the payload.
type ComputedArgs func(p Payload) map[string]interface{}

func (StaticArgs) isLinkArgs()   {}
func (ComputedArgs) isLinkArgs() {}

// RenderLink resolves one action link. Errors are RENDER_VALIDATION_ERROR.
func RenderLink(l ActionLink, p Payload) (Link, error) {
	fail := func(format string, args ...interface{}) (Link, error) {
		return Link{}, apperrors.ErrRenderValidation.
			WithDetail("link", l.Name).
			WithCause(fmt.Errorf(format, args...))
	}

	label, err := Render(l.Label, p)
	if err != nil {
		return fail("label: %v", err)
	}

	args, err := buildArgs(l.Args, p)
	if err != nil {
		return fail("args: %v", err)
	}

	for _, key := range schemaKeys(l.Schema) {
		raw, ok := args[key]
		if !ok {
			return fail("argument %q is missing", key)
		}
		coerced, err := l.Schema[key].Coerce(raw)
		if err != nil {
			return fail("argument %q: %v", key, err)
		}
		args[key] = coerced
	}

	target, err := resolveTarget(l.Target, p)
	if err != nil {
		return fail("target: %v", err)
	}

	return Link{Name: l.Name, Label: label, URL: target, Args: args}, nil
}

// RenderLinks resolves links in order, dropping the ones that fail.
func RenderLinks(links []ActionLink, p Payload) ([]Link, []error) {
	var (
		out  []Link
		errs []error
	)
	for _, l := range links {
		rendered, err := RenderLink(l, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, rendered)
	}
	return out, errs
}

func buildArgs(a LinkArgs, p Payload) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	switch args := a.(type) {
	case nil:
	case StaticArgs:
		for k, v := range args {
			if s, ok := v.(string); ok {
				v = Substitute(s, p)
			}
			out[k] = v
		}
	case ComputedArgs:
		if args == nil {
			return nil, fmt.Errorf("computed args function is nil")
		}
		for k, v := range args(p) {
			out[k] = v
		}
	default:
		return nil, fmt.Errorf("unsupported args type %T", a)
	}
	return out, nil
}

func resolveTarget(t LinkTarget, p Payload) (string, error) {
	switch target := t.(type) {
	case LinkURL:
		return Substitute(string(target), p), nil
	case LinkFunc:
		if target == nil {
			return "", fmt.Errorf("target function is nil")
		}
		return target(p)
	default:
		return "", fmt.Errorf("unsupported target type %T", t)
	}
}

func schemaKeys(schema map[string]Coercion) []string {
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
