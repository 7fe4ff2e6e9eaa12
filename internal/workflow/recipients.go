package workflow

import (
	"context"
	"errors"
	"fmt"
)

// RecipientSpec is either Roles or DynamicRecipients. A rule may carry
// several; their results are unioned.
type RecipientSpec interface {
	isRecipientSpec()
}

// Roles are tags resolved through a RoleLookup, e.g. "post_author",
// "assignee" or "editor".
type Roles []string

// DynamicRecipients passes the payload values named by Fields to Fn.
type DynamicRecipients struct {
	Fields []string
	Fn     func(args ...interface{}) []string
}

func (Roles) isRecipientSpec()             {}
func (DynamicRecipients) isRecipientSpec() {}

// RoleLookup resolves a role tag to user ids for a payload.
type RoleLookup interface {
	Lookup(ctx context.Context, role string, p Payload) ([]string, error)
}

type Resolver struct {
	roles RoleLookup
}

func NewResolver(roles RoleLookup) *Resolver {
	return &Resolver{roles: roles}
}

// Resolve unions all specs into a deduplicated list in first-seen order.
// Role lookup failures are joined into the error; whatever did resolve is
// still returned. No recipients is a valid, empty result.
func (r *Resolver) Resolve(ctx context.Context, specs []RecipientSpec, p Payload) ([]string, error) {
	var (
		out  []string
		errs []error
	)
	seen := make(map[string]struct{})
	add := func(ids []string) {
		for _, id := range ids {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	for _, spec := range specs {
		switch s := spec.(type) {
		case Roles:
			for _, role := range s {
				if r.roles == nil {
					errs = append(errs, fmt.Errorf("role %q: no role lookup configured", role))
					continue
				}
				ids, err := r.roles.Lookup(ctx, role, p)
				if err != nil {
					errs = append(errs, fmt.Errorf("role %q: %w", role, err))
				}
				add(ids)
			}
		case DynamicRecipients:
			if s.Fn == nil {
				errs = append(errs, fmt.Errorf("dynamic recipients without function"))
				continue
			}
			add(s.Fn(p.Values(s.Fields...)...))
		default:
			errs = append(errs, fmt.Errorf("unsupported recipient spec %T", spec))
		}
	}

	if out == nil {
		out = []string{}
	}
	return out, errors.Join(errs...)
}
