package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow/pkg/models"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name: "payload comparison",
			expr: `payload.status == "pending"`,
		},
		{
			name: "argument arity",
			expr: `size(args) == 3`,
		},
		{
			name:      "invalid expression",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `post.title == "x"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompileConditionRejectsNonBool(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.CompileCondition(`payload.title`)
	assert.Error(t, err)

	cond, err := eval.CompileCondition(`name == "publish_post"`)
	require.NoError(t, err)
	assert.Equal(t, `name == "publish_post"`, cond.String())
}

func TestConditionEval(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	ev := models.NewEventBuilder(models.EventAddPostMeta).
		WithArgs(7, "assignees", 5).
		WithPayloadField("status", "pending").
		WithSource("cms").
		Build()

	tests := []struct {
		name      string
		expr      string
		want      bool
		wantError bool
	}{
		{name: "name match", expr: `name == "add_post_meta"`, want: true},
		{name: "arity and meta key", expr: `size(args) == 3 && args[1] == "assignees"`, want: true},
		{name: "payload field", expr: `payload.status == "publish"`, want: false},
		{name: "source", expr: `source == "cms"`, want: true},
		{name: "missing attribute uses has", expr: `has(attributes.site) && attributes.site == "main"`, want: false},
		{name: "missing payload key errors", expr: `payload.author == "x"`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := eval.CompileCondition(tt.expr)
			require.NoError(t, err)

			got, err := cond.Eval(context.Background(), ev)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditionEvalOnEmptyEvent(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	cond, err := eval.CompileCondition(`size(args) == 0 && size(payload) == 0`)
	require.NoError(t, err)

	got, err := cond.Eval(context.Background(), models.Event{Name: "publish_post"})
	require.NoError(t, err)
	assert.True(t, got)
}
