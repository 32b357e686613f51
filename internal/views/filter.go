// Package views derives read-only projections of the task cache for each
// presentation mode. Every function is pure: the same cache content and
// filter always produce the same result.
package views

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/yukikurage/task-board/internal/models"
)

const (
	FilterAll        = "all"
	FilterUnassigned = "unassigned"
)

// Source is the read side of the task cache.
type Source interface {
	Snapshot() []models.Task
}

// Filter narrows a projection. Assignee is a user id, FilterAll or
// FilterUnassigned; Team is a team id or FilterAll.
type Filter struct {
	Assignee string `json:"assignee" yaml:"assignee"`
	Team     string `json:"team" yaml:"team"`
	Search   string `json:"search" yaml:"search"`
}

// AllFilter matches every task.
func AllFilter() Filter {
	return Filter{Assignee: FilterAll, Team: FilterAll}
}

// MatchesFilter reports whether task passes every clause of f. Empty Assignee
// and Team are treated as FilterAll.
func MatchesFilter(task models.Task, f Filter) bool {
	switch f.Assignee {
	case "", FilterAll:
	case FilterUnassigned:
		if !task.IsUnassigned() {
			return false
		}
	default:
		if task.IsUnassigned() || *task.AssigneeID != f.Assignee {
			return false
		}
	}

	if f.Team != "" && f.Team != FilterAll && task.TeamID != f.Team {
		return false
	}

	if f.Search == "" {
		return true
	}
	needle := fold(f.Search)
	if strings.Contains(fold(task.Title), needle) {
		return true
	}
	for _, tag := range task.Tags {
		if strings.Contains(fold(tag), needle) {
			return true
		}
	}
	return false
}

func filtered(src Source, f Filter) []models.Task {
	var out []models.Task
	for _, task := range src.Snapshot() {
		if MatchesFilter(task, f) {
			out = append(out, task)
		}
	}
	return out
}

// fold returns the case-folded form used for every case-insensitive
// comparison. A fresh Caser per call: Casers are not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}
