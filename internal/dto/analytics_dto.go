package dto

import "time"

// IssueStatusCounts breaks issue totals down by Kanban column.
type IssueStatusCounts struct {
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"in_progress"`
	InReview   int64 `json:"in_review"`
	Done       int64 `json:"done"`
}

// ActivityItem is one entry in the team's recent activity feed. Type is
// "document" or "issue".
type ActivityItem struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// TeamAnalyticsResponse aggregates activity counts for one team.
type TeamAnalyticsResponse struct {
	TotalDocuments    int64             `json:"total_documents"`
	DocumentsThisWeek int64             `json:"documents_this_week"`
	ActiveProjects    int64             `json:"active_projects"`
	CompletedIssues   int64             `json:"completed_issues"`
	IssuesThisWeek    int64             `json:"issues_this_week"`
	TeamVelocity      int64             `json:"team_velocity"`
	IssuesByStatus    IssueStatusCounts `json:"issues_by_status"`
	RecentActivity    []ActivityItem    `json:"recent_activity"`
}
