package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"workflow/pkg/models"
)

// Evaluator compiles conditions over an editorial event. Expressions see
// name, args, payload, source and attributes.
type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("args", cel.ListType(cel.DynType)),
		cel.Variable("payload", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("source", cel.StringType),
		cel.Variable("attributes", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateExpression(expression string) error {
	_, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}
	return nil
}

// Condition is a compiled boolean expression ready for repeated evaluation.
type Condition struct {
	expression string
	program    cel.Program
}

func (c *Condition) String() string {
	return c.expression
}

// CompileCondition compiles expression once and rejects non-bool results.
func (e *Evaluator) CompileCondition(expression string) (*Condition, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("condition must return bool, got %v", ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return &Condition{expression: expression, program: program}, nil
}

func (c *Condition) Eval(ctx context.Context, ev models.Event) (bool, error) {
	result, _, err := c.program.ContextEval(ctx, activation(ev))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}

	return boolVal, nil
}

func activation(ev models.Event) map[string]interface{} {
	args := ev.Args
	if args == nil {
		args = []interface{}{}
	}
	payload := ev.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	attributes := ev.Metadata.Attributes
	if attributes == nil {
		attributes = map[string]interface{}{}
	}

	return map[string]interface{}{
		"name":       ev.Name,
		"args":       args,
		"payload":    payload,
		"source":     ev.Source,
		"attributes": attributes,
	}
}
