package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadLookup(t *testing.T) {
	p := Payload{
		"title":      "Draft",
		"post.title": "flat wins",
		"post": map[string]interface{}{
			"id":     float64(7),
			"author": map[string]interface{}{"name": "Ana"},
		},
		"comment":   Payload{"text": "Looks good"},
		"labels":    map[string]string{"status": "pending"},
		"assignees": []interface{}{"5", "9"},
	}

	tests := []struct {
		path  string
		want  interface{}
		found bool
	}{
		{path: "title", want: "Draft", found: true},
		{path: "post.title", want: "flat wins", found: true},
		{path: "post.author.name", want: "Ana", found: true},
		{path: "post.id", want: float64(7), found: true},
		{path: "comment.text", want: "Looks good", found: true},
		{path: "labels.status", want: "pending", found: true},
		{path: "assignees.1", want: "9", found: true},
		{path: "assignees.2", found: false},
		{path: "post.missing", found: false},
		{path: "title.length", found: false},
		{path: "post..id", found: false},
		{path: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := p.Lookup(tt.path)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPayloadLookupOnNil(t *testing.T) {
	var p Payload
	_, ok := p.Lookup("title")
	assert.False(t, ok)
	assert.Equal(t, []interface{}{nil}, p.Values("title"))
}

func TestPayloadMergeKeepsExisting(t *testing.T) {
	p := Payload{"title": "event title"}
	merged := p.Merge(map[string]interface{}{"title": "db title", "author": "Ana"})

	assert.Equal(t, "event title", merged["title"])
	assert.Equal(t, "Ana", merged["author"])
	assert.NotContains(t, p, "author")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "7", Format(float64(7)))
	assert.Equal(t, "7.5", Format(7.5))
	assert.Equal(t, "42", Format(int64(42)))
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "true", Format(true))
}

func TestUserID(t *testing.T) {
	assert.Equal(t, "5", UserID(5))
	assert.Equal(t, "5", UserID(float64(5)))
	assert.Equal(t, "5", UserID(" 5 "))
	assert.Equal(t, "", UserID(0))
	assert.Equal(t, "", UserID(int64(-3)))
	assert.Equal(t, "", UserID(nil))
}
