package editorial

import (
	"errors"
	"fmt"

	"workflow/internal/config"
	"workflow/internal/logger"
	"workflow/internal/workflow"
	"workflow/pkg/cel"
)

// Setup registers every rule whose toggle is on, followed by the custom
// rules. A rule that fails to build or register is logged and skipped; the
// others still register. The returned error joins every such failure.
func Setup(cfg config.NotificationsConfig, reg *workflow.Registry, log logger.Logger) ([]string, error) {
	if log == nil {
		log = logger.NopLogger()
	}
	if !cfg.Enabled() {
		log.Infow("Workflow notifications disabled, no rules registered")
		return nil, nil
	}

	var builders []*workflow.RuleBuilder
	if cfg.OnPostPublished {
		builders = append(builders, PostPublished())
	}
	if cfg.OnSubmitForReview {
		builders = append(builders, SubmittedForReview())
	}
	if cfg.OnUpdateAssignees {
		builders = append(builders, AssigneeUpdated(cfg.AdminURL))
	}
	if cfg.OnEditorialComment {
		builders = append(builders, EditorialCommentAdded())
	}

	var (
		registered []string
		errs       []error
	)

	register := func(b *workflow.RuleBuilder) {
		rule, err := b.Build()
		if err == nil {
			err = reg.Register(rule)
		}
		if err != nil {
			log.Errorw("Failed to register notification rule", "error", err)
			errs = append(errs, err)
			return
		}
		registered = append(registered, rule.Name)
		log.Infow("Registered notification rule",
			"rule", rule.Name,
			"event", workflow.EventName(rule.Trigger),
			"channels", rule.Channels,
		)
	}

	for _, b := range builders {
		register(b)
	}

	if len(cfg.CustomRules) > 0 {
		evaluator, err := cel.NewEvaluator()
		if err != nil {
			return registered, errors.Join(append(errs, err)...)
		}
		for _, custom := range cfg.CustomRules {
			b, err := CustomRule(custom, evaluator)
			if err != nil {
				log.Errorw("Invalid custom notification rule", "rule", custom.Name, "error", err)
				errs = append(errs, err)
				continue
			}
			register(b)
		}
	}

	return registered, errors.Join(errs...)
}

// CustomRule turns a configured rule into a builder. Conditions are CEL
// expressions over name, args, payload, source and attributes.
func CustomRule(rc config.CustomRuleConfig, evaluator *cel.Evaluator) (*workflow.RuleBuilder, error) {
	b := workflow.Define(rc.Name).
		When(workflow.NamedTrigger{Event: rc.Event}).
		What(workflow.StaticText(rc.Text)).
		Where(rc.Channels...)

	if rc.Body != "" {
		b.Body(workflow.StaticText(rc.Body))
	}

	if rc.Condition != "" {
		cond, err := evaluator.CompileCondition(rc.Condition)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Name, err)
		}
		b.If(cond)
	}

	if len(rc.Roles) > 0 {
		b.Who(workflow.Roles(rc.Roles))
	}
	if rc.RecipientField != "" {
		b.Who(workflow.DynamicRecipients{
			Fields: []string{rc.RecipientField},
			Fn: func(args ...interface{}) []string {
				return recipientsFrom(args[0])
			},
		})
	}

	return b, nil
}

// recipientsFrom accepts a single id or a list of ids.
func recipientsFrom(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, workflow.UserID(item))
		}
		return out
	case []string:
		return t
	default:
		return []string{workflow.UserID(v)}
	}
}
