package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDeduplicatesAcrossSpecs(t *testing.T) {
	r := NewResolver(roleTable{
		"post_author": {"3"},
		"assignee":    {"5", "3"},
		"editor":      {"5", "8"},
	})

	got, err := r.Resolve(context.Background(), []RecipientSpec{
		Roles{"assignee", "editor"},
		Roles{"post_author"},
	}, Payload{})

	require.NoError(t, err)
	assert.Equal(t, []string{"5", "3", "8"}, got)
}

func TestResolveDynamicIsDeterministic(t *testing.T) {
	r := NewResolver(nil)
	specs := []RecipientSpec{DynamicRecipients{
		Fields: []string{"assignee"},
		Fn: func(args ...interface{}) []string {
			return []string{UserID(args[0])}
		},
	}}
	p := Payload{"assignee": int64(5)}

	first, err := r.Resolve(context.Background(), specs, p)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), specs, p)
	require.NoError(t, err)

	assert.Equal(t, []string{"5"}, first)
	assert.Equal(t, first, second)
}

func TestResolveEmptyIsNotAnError(t *testing.T) {
	r := NewResolver(roleTable{"assignee": {}})

	got, err := r.Resolve(context.Background(), []RecipientSpec{
		Roles{"assignee"},
		DynamicRecipients{Fields: []string{"assignee"}, Fn: func(args ...interface{}) []string {
			return []string{UserID(args[0])}
		}},
	}, Payload{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolveKeepsPartialResultOnLookupError(t *testing.T) {
	r := NewResolver(roleTable{"post_author": {"3"}})

	got, err := r.Resolve(context.Background(), []RecipientSpec{Roles{"unknown", "post_author"}}, Payload{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `role "unknown"`)
	assert.Equal(t, []string{"3"}, got)
}

func TestResolveRolesWithoutLookup(t *testing.T) {
	got, err := NewResolver(nil).Resolve(context.Background(), []RecipientSpec{Roles{"editor"}}, Payload{})
	assert.Error(t, err)
	assert.Empty(t, got)
}
