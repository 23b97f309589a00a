package dto

import "time"

// Search result kinds.
const (
	SearchResultDocument = "document"
	SearchResultProject  = "project"
	SearchResultIssue    = "issue"
)

// SearchQuery is the payload for a team-scoped search.
type SearchQuery struct {
	TeamID string `query:"team_id" validate:"required,max=36"`
	Query  string `query:"q" validate:"required,min=2,max=255"`
}

// SearchResult is one entry in the merged search result list.
type SearchResult struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	TeamID      string    `json:"team_id"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updated_at"`
}
