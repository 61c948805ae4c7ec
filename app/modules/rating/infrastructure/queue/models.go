package ratingqueue

// SeasonEndJob closes a season at its scheduled time.
type SeasonEndJob struct {
	SeasonID string `json:"season_id"`
}

// Kind returns the job type identifier for River
func (SeasonEndJob) Kind() string { return "season_end" }

// JobInfo represents information about a scheduled job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	SeasonID    string `json:"season_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
