package workflow

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "workflow/pkg/errors"
)

func editLink() ActionLink {
	return ActionLink{
		Name:  "edit",
		Label: StaticText("Edit post"),
		Target: LinkFunc(func(p Payload) (string, error) {
			return fmt.Sprintf("https://cms.example.com/wp-admin/post.php?post=%s&action=edit", Format(p["post_id"])), nil
		}),
		Args: ComputedArgs(func(p Payload) map[string]interface{} {
			return map[string]interface{}{"post_id": p["post_id"]}
		}),
		Schema: map[string]Coercion{"post_id": Int},
	}
}

func TestRenderLinkCoercesSchema(t *testing.T) {
	link, err := RenderLink(editLink(), Payload{"post_id": "42"})
	require.NoError(t, err)

	assert.Equal(t, "edit", link.Name)
	assert.Equal(t, "Edit post", link.Label)
	assert.Equal(t, int64(42), link.Args["post_id"])
	assert.Equal(t, "https://cms.example.com/wp-admin/post.php?post=42&action=edit", link.URL)
}

func TestRenderLinkRejectsNonNumeric(t *testing.T) {
	_, err := RenderLink(editLink(), Payload{"post_id": "abc"})
	require.Error(t, err)
	assert.True(t, apperrors.IsRenderValidation(err))
}

func TestRenderLinksDropsOnlyInvalidLink(t *testing.T) {
	valid := ActionLink{
		Name:   "view",
		Label:  StaticText("View %title%"),
		Target: LinkURL("https://example.com/?p=%post_id%"),
		Args:   StaticArgs{"post_id": "%post_id%", "preview": true},
		Schema: map[string]Coercion{"post_id": Int, "preview": Bool},
	}
	missingArg := ActionLink{
		Name:   "approve",
		Label:  StaticText("Approve"),
		Target: LinkURL("https://example.com/approve"),
		Schema: map[string]Coercion{"post_id": Int},
	}
	brokenTarget := ActionLink{
		Name:  "history",
		Label: StaticText("History"),
		Target: LinkFunc(func(Payload) (string, error) {
			return "", errors.New("no revisions")
		}),
	}

	links, errs := RenderLinks([]ActionLink{editLink(), missingArg, valid, brokenTarget}, Payload{"post_id": "abc", "title": "Budget"})

	require.Len(t, links, 0)
	assert.Len(t, errs, 4)

	links, errs = RenderLinks([]ActionLink{editLink(), missingArg, valid, brokenTarget}, Payload{"post_id": float64(7), "title": "Budget"})
	require.Len(t, links, 2)
	assert.Len(t, errs, 2)

	assert.Equal(t, "edit", links[0].Name)
	assert.Equal(t, "view", links[1].Name)
	assert.Equal(t, "View Budget", links[1].Label)
	assert.Equal(t, "https://example.com/?p=7", links[1].URL)
	assert.Equal(t, int64(7), links[1].Args["post_id"])
	assert.Equal(t, true, links[1].Args["preview"])
}

func TestCoercions(t *testing.T) {
	tests := []struct {
		name    string
		c       Coercion
		in      interface{}
		want    interface{}
		wantErr bool
	}{
		{name: "int from string", c: Int, in: "42", want: int64(42)},
		{name: "int from padded string", c: Int, in: " 42 ", want: int64(42)},
		{name: "int from float", c: Int, in: float64(42), want: int64(42)},
		{name: "int from fraction", c: Int, in: 4.2, wantErr: true},
		{name: "int from float above range", c: Int, in: 1e19, wantErr: true},
		{name: "int from float below range", c: Int, in: -1e19, wantErr: true},
		{name: "int from float at upper bound", c: Int, in: float64(math.MaxInt64), wantErr: true},
		{name: "int from float at lower bound", c: Int, in: float64(math.MinInt64), want: int64(math.MinInt64)},
		{name: "int from word", c: Int, in: "abc", wantErr: true},
		{name: "int from bool", c: Int, in: true, wantErr: true},
		{name: "float from string", c: Float, in: "2.5", want: 2.5},
		{name: "float from int", c: Float, in: 3, want: float64(3)},
		{name: "string from number", c: String, in: float64(7), want: "7"},
		{name: "string from nil", c: String, in: nil, wantErr: true},
		{name: "bool from string", c: Bool, in: "true", want: true},
		{name: "bool from number", c: Bool, in: float64(0), want: false},
		{name: "bool from word", c: Bool, in: "maybe", wantErr: true},
		{name: "undefined coercion", c: Coercion{}, in: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.c.Coerce(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "int", Int.String())
}
