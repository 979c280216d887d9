package models

type Action string

const (
	ActionPush         Action = "PUSH"
	ActionMerge        Action = "MERGE"
	ActionPull         Action = "PULL"
	ActionCreateBranch Action = "CREATE_BRANCH"
	ActionDeleteBranch Action = "DELETE_BRANCH"
)

// ActivityRecord is one repository event as served to the dashboard.
// Action is not validated: unknown upstream values are kept as-is.
type ActivityRecord struct {
	ID         string `json:"id"`
	RequestID  string `json:"request_id"`
	Author     string `json:"author"`
	Action     Action `json:"action"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Timestamp  string `json:"timestamp"`
}

// RawActivityRecord is the shape returned by the webhook-capture service.
type RawActivityRecord struct {
	ID         string `json:"_id"`
	RequestID  string `json:"request_id"`
	Author     string `json:"author"`
	Action     string `json:"action"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Timestamp  string `json:"timestamp"`
}

func (r RawActivityRecord) Normalize() ActivityRecord {
	return ActivityRecord{
		ID:         r.ID,
		RequestID:  r.RequestID,
		Author:     r.Author,
		Action:     Action(r.Action),
		FromBranch: r.FromBranch,
		ToBranch:   r.ToBranch,
		Timestamp:  r.Timestamp,
	}
}

type StatsSummary struct {
	TotalActivities  int    `json:"totalActivities"`
	UniqueAuthors    int    `json:"uniqueAuthors"`
	BranchOperations int    `json:"branchOperations"`
	RecentActivity   int    `json:"recentActivity"`
	TodayActivities  int    `json:"todayActivities"`
	WeeklyGrowth     string `json:"weeklyGrowth"`
}

type ActivityResponse struct {
	Data      []ActivityRecord `json:"data"`
	Total     int              `json:"total"`
	Timestamp string           `json:"timestamp"`
}

type StatsResponse struct {
	Data      StatsSummary `json:"data"`
	Timestamp string       `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
