package views

import (
	"sort"
	"time"

	"github.com/yukikurage/task-board/internal/models"
)

// TimelineItem is a task drawn as a span. A task with only one of the two
// dates spans a single point.
type TimelineItem struct {
	Task  models.Task `json:"task" yaml:"task"`
	Start time.Time   `json:"start" yaml:"start"`
	End   time.Time   `json:"end" yaml:"end"`
}

// TimelineGroup holds one team's scheduled tasks.
type TimelineGroup struct {
	TeamID string         `json:"team_id" yaml:"team_id"`
	Items  []TimelineItem `json:"items" yaml:"items"`
}

// ByTimeline groups filtered tasks that carry a start or due date by team.
// Groups are ordered by team id; items by start, then title.
func ByTimeline(src Source, f Filter) []TimelineGroup {
	byTeam := make(map[string][]TimelineItem)
	for _, task := range filtered(src, f) {
		item, ok := timelineItem(task)
		if !ok {
			continue
		}
		byTeam[task.TeamID] = append(byTeam[task.TeamID], item)
	}

	groups := make([]TimelineGroup, 0, len(byTeam))
	for team, items := range byTeam {
		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].Start.Equal(items[j].Start) {
				return items[i].Start.Before(items[j].Start)
			}
			return fold(items[i].Task.Title) < fold(items[j].Task.Title)
		})
		groups = append(groups, TimelineGroup{TeamID: team, Items: items})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].TeamID < groups[j].TeamID })
	return groups
}

func timelineItem(task models.Task) (TimelineItem, bool) {
	switch {
	case task.StartDate != nil && task.DueDate != nil:
		start, end := *task.StartDate, *task.DueDate
		if end.Before(start) {
			start, end = end, start
		}
		return TimelineItem{Task: task, Start: start, End: end}, true
	case task.StartDate != nil:
		return TimelineItem{Task: task, Start: *task.StartDate, End: *task.StartDate}, true
	case task.DueDate != nil:
		return TimelineItem{Task: task, Start: *task.DueDate, End: *task.DueDate}, true
	default:
		return TimelineItem{}, false
	}
}
