package optimizer

import (
	"strings"

	"github.com/aiinpocket/n3n-core/model"
)

// FlowSummary feeds the publish-analysis workflow with the structural facts
// a reviewer wants before accepting suggestions.
type FlowSummary struct {
	NodeCount   int            `json:"nodeCount"`
	EdgeCount   int            `json:"edgeCount"`
	NodeTypes   map[string]int `json:"nodeTypes"`
	HasTrigger  bool           `json:"hasTrigger"`
	HasCycles   bool           `json:"hasCycles"`
	EntryNodes  []string       `json:"entryNodes"`
	OrphanNodes []string       `json:"orphanNodes"`
}

// Summarize computes the flow summary, including a real cycle check over the
// edge list.
func Summarize(def model.FlowDefinition) FlowSummary {
	summary := FlowSummary{
		NodeCount: len(def.Nodes),
		EdgeCount: len(def.Edges),
		NodeTypes: make(map[string]int),
	}

	incoming := make(map[string]int)
	connected := make(map[string]bool)
	for _, edge := range def.Edges {
		incoming[edge.Target]++
		connected[edge.Source] = true
		connected[edge.Target] = true
	}

	for _, node := range def.Nodes {
		summary.NodeTypes[node.Type]++
		if strings.Contains(strings.ToLower(node.Type), "trigger") {
			summary.HasTrigger = true
		}
		if incoming[node.ID] == 0 {
			summary.EntryNodes = append(summary.EntryNodes, node.ID)
		}
		if len(def.Edges) > 0 && !connected[node.ID] {
			summary.OrphanNodes = append(summary.OrphanNodes, node.ID)
		}
	}

	summary.HasCycles = HasCycles(def)
	return summary
}

// HasCycles reports whether the directed edge list contains a cycle,
// using three-color depth-first search.
func HasCycles(def model.FlowDefinition) bool {
	adjacent := make(map[string][]string, len(def.Nodes))
	for _, edge := range def.Edges {
		adjacent[edge.Source] = append(adjacent[edge.Source], edge.Target)
	}

	const white, gray, black = 0, 1, 2
	color := make(map[string]int, len(def.Nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, next := range adjacent[id] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, node := range def.Nodes {
		if color[node.ID] == white && visit(node.ID) {
			return true
		}
	}
	return false
}
