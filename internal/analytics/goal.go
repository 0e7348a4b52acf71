package analytics

import "github.com/Clark-Hu/readlog/internal/domain"

// DefaultGoal applies when a user has not set a target for the year.
const DefaultGoal = 10

// GoalProgress is the share of a yearly target already read, capped at 1.
type GoalProgress struct {
	Target    int     `json:"target"`
	Completed int     `json:"completed"`
	Progress  float64 `json:"progress"`
}

// Progress counts the reviews finished in year against goal. A goal that is
// not positive is replaced by DefaultGoal.
func Progress(records []domain.Review, year, goal int) GoalProgress {
	completed := 0
	for i := range records {
		if y, ok := endYear(records[i].EndDate); ok && y == year {
			completed++
		}
	}
	return progressFor(completed, goal)
}

func progressFor(completed, goal int) GoalProgress {
	if goal <= 0 {
		goal = DefaultGoal
	}
	p := float64(completed) / float64(goal)
	if p > 1 {
		p = 1
	}
	return GoalProgress{Target: goal, Completed: completed, Progress: p}
}
