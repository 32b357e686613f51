package views

import (
	"sort"
	"time"

	"github.com/yukikurage/task-board/internal/models"
)

// DayBucket holds the tasks due on one calendar day.
type DayBucket struct {
	Day   time.Time     `json:"day" yaml:"day"`
	Tasks []models.Task `json:"tasks" yaml:"tasks"`
}

// ByDueDateBuckets groups filtered tasks by the calendar day of their due date
// in loc (UTC when nil). Tasks without a due date are left out.
func ByDueDateBuckets(src Source, f Filter, loc *time.Location) []DayBucket {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[time.Time][]models.Task)
	for _, task := range filtered(src, f) {
		if task.DueDate == nil {
			continue
		}
		day := startOfDay(task.DueDate.In(loc))
		byDay[day] = append(byDay[day], task)
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for day, tasks := range byDay {
		SortByTitle(tasks)
		buckets = append(buckets, DayBucket{Day: day, Tasks: tasks})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Day.Before(buckets[j].Day) })
	return buckets
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
