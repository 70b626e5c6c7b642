package optimizer

import (
	"testing"

	"github.com/aiinpocket/n3n-core/model"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	def := model.FlowDefinition{
		Nodes: []model.Node{
			{ID: "start", Type: "webhookTrigger"},
			{ID: "work", Type: "transform"},
			{ID: "island", Type: "transform"},
		},
		Edges: []model.Edge{
			{ID: "e1", Source: "start", Target: "work"},
		},
	}

	summary := Summarize(def)

	require.Equal(t, 3, summary.NodeCount)
	require.Equal(t, 1, summary.EdgeCount)
	require.Equal(t, map[string]int{"webhookTrigger": 1, "transform": 2}, summary.NodeTypes)
	require.True(t, summary.HasTrigger)
	require.False(t, summary.HasCycles)
	require.Equal(t, []string{"start", "island"}, summary.EntryNodes)
	require.Equal(t, []string{"island"}, summary.OrphanNodes)
}

func TestHasCycles(t *testing.T) {
	scenarios := map[string]struct {
		edges []model.Edge
		want  bool
	}{
		"empty": {edges: nil, want: false},
		"chain": {
			edges: []model.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
			want:  false,
		},
		"diamond is acyclic": {
			edges: []model.Edge{
				{Source: "a", Target: "b"}, {Source: "a", Target: "c"},
				{Source: "b", Target: "d"}, {Source: "c", Target: "d"},
			},
			want: false,
		},
		"self loop": {
			edges: []model.Edge{{Source: "a", Target: "a"}},
			want:  true,
		},
		"back edge": {
			edges: []model.Edge{
				{Source: "a", Target: "b"}, {Source: "b", Target: "c"}, {Source: "c", Target: "a"},
			},
			want: true,
		},
	}

	for name, scenario := range scenarios {
		t.Run(name, func(t *testing.T) {
			def := model.FlowDefinition{
				Nodes: []model.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
				Edges: scenario.edges,
			}
			require.Equal(t, scenario.want, HasCycles(def))
		})
	}
}
