// Package optimizer mutates a flow's node/edge lists according to accepted
// optimization suggestions. It runs at flow-edit time, outside the per-node
// execution path.
package optimizer

import (
	"errors"
	"fmt"

	"github.com/aiinpocket/n3n-core/logger"
	"github.com/aiinpocket/n3n-core/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNilDefinition = errors.New("flow definition cannot be null")

type ApplyResult struct {
	AppliedCount         int                  `json:"appliedCount"`
	AppliedSuggestionIDs []string             `json:"appliedSuggestionIds"`
	UpdatedDefinition    model.FlowDefinition `json:"updatedDefinition"`
}

// ApplySuggestions applies the accepted suggestions, identified by
// suggestionIDs, to a defensive copy of the definition. Malformed or unknown
// suggestions are reported as not applied instead of aborting the batch; a
// structurally invalid definition fails the whole call.
func ApplySuggestions(flowID string, version int, definition model.FlowDefinition,
	suggestionIDs []string, suggestions []model.Suggestion) (ApplyResult, error) {

	if definition.Nodes == nil || definition.Edges == nil {
		return ApplyResult{}, ErrNilDefinition
	}

	logger.Info("applying suggestions",
		zap.String("flowId", flowID),
		zap.Int("version", version),
		zap.Int("requested", len(suggestionIDs)))

	updated := definition.Clone()
	byID := make(map[string]model.Suggestion, len(suggestions))
	for _, s := range suggestions {
		byID[s.ID] = s
	}

	var appliedIDs []string
	for _, id := range suggestionIDs {
		suggestion, found := byID[id]
		if !found {
			// accepted id without details: nothing to change, report applied
			appliedIDs = append(appliedIDs, id)
			continue
		}
		if applySingle(suggestion, &updated) {
			appliedIDs = append(appliedIDs, id)
		}
	}

	return ApplyResult{
		AppliedCount:         len(appliedIDs),
		AppliedSuggestionIDs: appliedIDs,
		UpdatedDefinition:    updated,
	}, nil
}

func applySingle(s model.Suggestion, def *model.FlowDefinition) bool {
	switch s.Type {
	case model.SUGGESTION_TYPE_PARALLEL:
		return applyParallel(s.AffectedNodes, def)
	case model.SUGGESTION_TYPE_MERGE:
		return applyMerge(s.AffectedNodes, def)
	case model.SUGGESTION_TYPE_REMOVE:
		return applyRemove(s.AffectedNodes, def)
	case model.SUGGESTION_TYPE_REORDER:
		// ordering is advisory metadata consumed by the editor
		return true
	case model.SUGGESTION_TYPE_ADD_ERROR_HANDLER:
		return applyAddErrorHandler(s.AffectedNodes, def)
	default:
		logger.Debug("unknown suggestion type", zap.String("type", string(s.Type)), zap.String("id", s.ID))
		return false
	}
}

// applyParallel sets the parallelExecution marker on every affected node.
// Re-applying is idempotent.
func applyParallel(affected []string, def *model.FlowDefinition) bool {
	for _, nodeID := range affected {
		if node := def.NodeByID(nodeID); node != nil {
			if node.Data == nil {
				node.Data = make(map[string]any)
			}
			node.Data["parallelExecution"] = true
		}
	}
	return true
}

// applyMerge keeps the first affected node and rewrites every edge touching
// the others onto it, dropping self-loops the rewrite introduces.
func applyMerge(affected []string, def *model.FlowDefinition) bool {
	if len(affected) < 2 {
		return false
	}
	surviving := affected[0]
	removed := make(map[string]bool, len(affected)-1)
	for _, id := range affected[1:] {
		removed[id] = true
	}

	edges := def.Edges[:0]
	for _, edge := range def.Edges {
		if removed[edge.Source] {
			edge.Source = surviving
		}
		if removed[edge.Target] {
			edge.Target = surviving
		}
		if edge.Source == edge.Target {
			continue
		}
		edges = append(edges, edge)
	}
	def.Edges = edges

	nodes := def.Nodes[:0]
	for _, node := range def.Nodes {
		if removed[node.ID] {
			continue
		}
		nodes = append(nodes, node)
	}
	def.Nodes = nodes
	return true
}

// applyRemove deletes the affected nodes and every edge touching them,
// restoring edge referential integrity.
func applyRemove(affected []string, def *model.FlowDefinition) bool {
	removed := make(map[string]bool, len(affected))
	for _, id := range affected {
		removed[id] = true
	}

	nodes := def.Nodes[:0]
	for _, node := range def.Nodes {
		if removed[node.ID] {
			continue
		}
		nodes = append(nodes, node)
	}
	def.Nodes = nodes

	edges := def.Edges[:0]
	for _, edge := range def.Edges {
		if removed[edge.Source] || removed[edge.Target] {
			continue
		}
		edges = append(edges, edge)
	}
	def.Edges = edges
	return true
}

// applyAddErrorHandler synthesizes an errorHandler node per affected node and
// wires it to the node's error output handle. Fresh ids come from uuid so
// repeated application within the same instant cannot collide.
func applyAddErrorHandler(affected []string, def *model.FlowDefinition) bool {
	for _, nodeID := range affected {
		handlerID := fmt.Sprintf("error_%s_%s", nodeID, uuid.New().String())
		def.Nodes = append(def.Nodes, model.Node{
			ID:   handlerID,
			Type: "errorHandler",
			Data: map[string]any{
				"label":        "Error Handler",
				"nodeType":     "errorHandler",
				"targetNodeId": nodeID,
			},
		})
		def.Edges = append(def.Edges, model.Edge{
			ID:           "edge_error_" + uuid.New().String(),
			Source:       nodeID,
			Target:       handlerID,
			SourceHandle: "error",
		})
	}
	return true
}
