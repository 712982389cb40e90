package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RefreshRun records one full pass of fetching, deriving and committing
// house state.
type RefreshRun struct {
	ID             string     `json:"id" db:"id"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at" db:"finished_at"`
	Status         RunStatus  `json:"status" db:"status"`
	HousesFound    int        `json:"houses_found" db:"houses_found"`
	HousesActive   int        `json:"houses_active" db:"houses_active"`
	HousesInactive int        `json:"houses_inactive" db:"houses_inactive"`
	LookupFailures int        `json:"lookup_failures" db:"lookup_failures"`
	Error          string     `json:"error" db:"error"`
}
