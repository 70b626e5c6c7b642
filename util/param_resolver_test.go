package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveInputParams(t *testing.T) {
	input := map[string]any{
		"user":  map[string]any{"name": "ada", "id": 7},
		"items": []any{"first", "second"},
	}

	scenarios := map[string]struct {
		params map[string]any
		want   map[string]any
	}{
		"plain token": {
			params: map[string]any{"greeting": "{$.user.name}"},
			want:   map[string]any{"greeting": "ada"},
		},
		"token inside text": {
			params: map[string]any{"subject": "hello {$.user.name}, order {$.user.id}"},
			want:   map[string]any{"subject": "hello ada, order 7"},
		},
		"list index": {
			params: map[string]any{"pick": "{$.items[1]}"},
			want:   map[string]any{"pick": "second"},
		},
		"nested map resolved recursively": {
			params: map[string]any{"payload": map[string]any{"to": "{$.user.name}"}},
			want:   map[string]any{"payload": map[string]any{"to": "ada"}},
		},
		"list resolved recursively": {
			params: map[string]any{"names": []any{"{$.user.name}", "static"}},
			want:   map[string]any{"names": []any{"ada", "static"}},
		},
		"non-dollar braces untouched": {
			params: map[string]any{"tpl": "{literal} stays"},
			want:   map[string]any{"tpl": "{literal} stays"},
		},
		"non-string passthrough": {
			params: map[string]any{"count": 3, "flag": true},
			want:   map[string]any{"count": 3, "flag": true},
		},
	}

	for name, scenario := range scenarios {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, scenario.want, ResolveInputParams(input, scenario.params))
		})
	}
}
