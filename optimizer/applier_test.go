package optimizer

import (
	"strings"
	"testing"

	"github.com/aiinpocket/n3n-core/model"
	"github.com/stretchr/testify/require"
)

func chainFlow() model.FlowDefinition {
	return model.FlowDefinition{
		Nodes: []model.Node{
			{ID: "A", Type: "httpRequest", Data: map[string]any{}},
			{ID: "B", Type: "transform", Data: map[string]any{}},
			{ID: "C", Type: "redis", Data: map[string]any{}},
		},
		Edges: []model.Edge{
			{ID: "e1", Source: "A", Target: "B"},
			{ID: "e2", Source: "B", Target: "C"},
		},
	}
}

func nodeIDs(def model.FlowDefinition) []string {
	ids := make([]string, 0, len(def.Nodes))
	for _, node := range def.Nodes {
		ids = append(ids, node.ID)
	}
	return ids
}

func TestApplyMergeRewiresEdgesOntoSurvivor(t *testing.T) {
	suggestions := []model.Suggestion{
		{ID: "s1", Type: model.SUGGESTION_TYPE_MERGE, AffectedNodes: []string{"A", "B"}},
	}

	result, err := ApplySuggestions("flow-1", 1, chainFlow(), []string{"s1"}, suggestions)

	require.NoError(t, err)
	require.Equal(t, 1, result.AppliedCount)
	require.Equal(t, []string{"s1"}, result.AppliedSuggestionIDs)
	require.Equal(t, []string{"A", "C"}, nodeIDs(result.UpdatedDefinition))

	// A->B became a self-loop and was dropped; B->C now starts at A
	require.Len(t, result.UpdatedDefinition.Edges, 1)
	require.Equal(t, "A", result.UpdatedDefinition.Edges[0].Source)
	require.Equal(t, "C", result.UpdatedDefinition.Edges[0].Target)
}

func TestApplyMergeNeedsAtLeastTwoNodes(t *testing.T) {
	suggestions := []model.Suggestion{
		{ID: "s1", Type: model.SUGGESTION_TYPE_MERGE, AffectedNodes: []string{"A"}},
	}

	result, err := ApplySuggestions("flow-1", 1, chainFlow(), []string{"s1"}, suggestions)

	require.NoError(t, err)
	require.Equal(t, 0, result.AppliedCount)
	require.Len(t, result.UpdatedDefinition.Nodes, 3)
}

func TestApplyRemoveDropsNodeAndTouchingEdges(t *testing.T) {
	suggestions := []model.Suggestion{
		{ID: "s1", Type: model.SUGGESTION_TYPE_REMOVE, AffectedNodes: []string{"B"}},
	}

	result, err := ApplySuggestions("flow-1", 1, chainFlow(), []string{"s1"}, suggestions)

	require.NoError(t, err)
	require.Equal(t, 1, result.AppliedCount)
	require.Equal(t, []string{"A", "C"}, nodeIDs(result.UpdatedDefinition))
	require.Empty(t, result.UpdatedDefinition.Edges)
}

func TestApplyParallelIsIdempotent(t *testing.T) {
	suggestions := []model.Suggestion{
		{ID: "s1", Type: model.SUGGESTION_TYPE_PARALLEL, AffectedNodes: []string{"A", "B"}},
	}

	first, err := ApplySuggestions("flow-1", 1, chainFlow(), []string{"s1"}, suggestions)
	require.NoError(t, err)
	second, err := ApplySuggestions("flow-1", 2, first.UpdatedDefinition, []string{"s1"}, suggestions)
	require.NoError(t, err)

	for _, id := range []string{"A", "B"} {
		node := second.UpdatedDefinition.NodeByID(id)
		require.NotNil(t, node)
		require.Equal(t, true, node.Data["parallelExecution"])
	}
	require.Nil(t, second.UpdatedDefinition.NodeByID("C").Data["parallelExecution"])
}

func TestApplyAddErrorHandler(t *testing.T) {
	suggestions := []model.Suggestion{
		{ID: "s1", Type: model.SUGGESTION_TYPE_ADD_ERROR_HANDLER, AffectedNodes: []string{"B"}},
	}

	result, err := ApplySuggestions("flow-1", 1, chainFlow(), []string{"s1"}, suggestions)

	require.NoError(t, err)
	require.Len(t, result.UpdatedDefinition.Nodes, 4)
	require.Len(t, result.UpdatedDefinition.Edges, 3)

	handler := result.UpdatedDefinition.Nodes[3]
	require.Equal(t, "errorHandler", handler.Type)
	require.True(t, strings.HasPrefix(handler.ID, "error_B_"))
	require.Equal(t, "B", handler.Data["targetNodeId"])

	edge := result.UpdatedDefinition.Edges[2]
	require.Equal(t, "B", edge.Source)
	require.Equal(t, handler.ID, edge.Target)
	require.Equal(t, "error", edge.SourceHandle)
}

func TestUnknownSuggestionTypeNotApplied(t *testing.T) {
	suggestions := []model.Suggestion{
		{ID: "s1", Type: "defragment", AffectedNodes: []string{"A"}},
	}

	result, err := ApplySuggestions("flow-1", 1, chainFlow(), []string{"s1"}, suggestions)

	require.NoError(t, err)
	require.Equal(t, 0, result.AppliedCount)
	require.Empty(t, result.AppliedSuggestionIDs)
}

func TestAcceptedIDWithoutDetailsCountsAsApplied(t *testing.T) {
	result, err := ApplySuggestions("flow-1", 1, chainFlow(), []string{"ghost"}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, result.AppliedCount)
	require.Equal(t, []string{"ghost"}, result.AppliedSuggestionIDs)
}

func TestReorderIsAdvisory(t *testing.T) {
	suggestions := []model.Suggestion{
		{ID: "s1", Type: model.SUGGESTION_TYPE_REORDER, AffectedNodes: []string{"A", "B"}},
	}

	result, err := ApplySuggestions("flow-1", 1, chainFlow(), []string{"s1"}, suggestions)

	require.NoError(t, err)
	require.Equal(t, 1, result.AppliedCount)
	require.Equal(t, chainFlow(), result.UpdatedDefinition)
}

func TestNilDefinitionRejected(t *testing.T) {
	_, err := ApplySuggestions("flow-1", 1, model.FlowDefinition{}, nil, nil)
	require.ErrorIs(t, err, ErrNilDefinition)

	_, err = ApplySuggestions("flow-1", 1, model.FlowDefinition{Nodes: []model.Node{}}, nil, nil)
	require.ErrorIs(t, err, ErrNilDefinition)
}

func TestApplyLeavesOriginalUntouched(t *testing.T) {
	original := chainFlow()
	suggestions := []model.Suggestion{
		{ID: "s1", Type: model.SUGGESTION_TYPE_REMOVE, AffectedNodes: []string{"B"}},
	}

	_, err := ApplySuggestions("flow-1", 1, original, []string{"s1"}, suggestions)

	require.NoError(t, err)
	require.Equal(t, chainFlow(), original)
}
