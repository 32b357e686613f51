package views

import (
	"sort"

	"github.com/yukikurage/task-board/internal/models"
)

// UserStats aggregates one assignee's tasks.
type UserStats struct {
	UserID         string                    `json:"user_id" yaml:"user_id"`
	Counts         map[models.TaskStatus]int `json:"counts" yaml:"counts"`
	Total          int                       `json:"total" yaml:"total"`
	CompletionRate float64                   `json:"completion_rate" yaml:"completion_rate"`
}

// BoardSummary aggregates every filtered task, assigned or not.
type BoardSummary struct {
	Counts         map[models.TaskStatus]int `json:"counts" yaml:"counts"`
	Total          int                       `json:"total" yaml:"total"`
	Unassigned     int                       `json:"unassigned" yaml:"unassigned"`
	CompletionRate float64                   `json:"completion_rate" yaml:"completion_rate"`
}

// ByUser returns per-assignee counts for each status, ordered by user id.
// Unassigned tasks are not attributed to anyone.
func ByUser(src Source, f Filter) []UserStats {
	byUser := make(map[string]*UserStats)
	for _, task := range filtered(src, f) {
		if task.IsUnassigned() {
			continue
		}
		stats, ok := byUser[*task.AssigneeID]
		if !ok {
			stats = &UserStats{UserID: *task.AssigneeID, Counts: emptyCounts()}
			byUser[*task.AssigneeID] = stats
		}
		stats.Counts[task.Status]++
		stats.Total++
	}

	out := make([]UserStats, 0, len(byUser))
	for _, stats := range byUser {
		stats.CompletionRate = CompletionRate(stats.Counts[models.TaskStatusDone], stats.Total)
		out = append(out, *stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Summary aggregates the whole filtered board.
func Summary(src Source, f Filter) BoardSummary {
	summary := BoardSummary{Counts: emptyCounts()}
	for _, task := range filtered(src, f) {
		summary.Counts[task.Status]++
		summary.Total++
		if task.IsUnassigned() {
			summary.Unassigned++
		}
	}
	summary.CompletionRate = CompletionRate(summary.Counts[models.TaskStatusDone], summary.Total)
	return summary
}

// CompletionRate is done/total, or 0 for an empty set.
func CompletionRate(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func emptyCounts() map[models.TaskStatus]int {
	counts := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		counts[status] = 0
	}
	return counts
}
