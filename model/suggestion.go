package model

type SuggestionType string

const SUGGESTION_TYPE_PARALLEL SuggestionType = "parallel"
const SUGGESTION_TYPE_MERGE SuggestionType = "merge"
const SUGGESTION_TYPE_REMOVE SuggestionType = "remove"
const SUGGESTION_TYPE_REORDER SuggestionType = "reorder"
const SUGGESTION_TYPE_ADD_ERROR_HANDLER SuggestionType = "add_error_handler"

// Suggestion is a proposed structural change to a flow, produced by the
// publish-analysis workflow and applied at flow-edit time.
type Suggestion struct {
	ID            string         `json:"id"`
	Type          SuggestionType `json:"type"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Benefit       string         `json:"benefit,omitempty"`
	Priority      int            `json:"priority"`
	AffectedNodes []string       `json:"affectedNodes"`
}
