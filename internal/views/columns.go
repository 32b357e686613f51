package views

import (
	"sort"

	"github.com/yukikurage/task-board/internal/models"
)

// Column is one status lane of the board.
type Column struct {
	Status models.TaskStatus `json:"status" yaml:"status"`
	Label  string            `json:"label" yaml:"label"`
	Tasks  []models.Task     `json:"tasks" yaml:"tasks"`
}

// ByStatusColumns partitions the filtered tasks into the four workflow columns,
// in workflow order. Each column is sorted by title, case-insensitively.
func ByStatusColumns(src Source, f Filter) []Column {
	columns := make([]Column, len(models.TaskStatuses))
	index := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for i, status := range models.TaskStatuses {
		columns[i] = Column{Status: status, Label: status.Label(), Tasks: []models.Task{}}
		index[status] = i
	}

	for _, task := range filtered(src, f) {
		i, ok := index[task.Status]
		if !ok {
			continue
		}
		columns[i].Tasks = append(columns[i].Tasks, task)
	}

	for i := range columns {
		SortByTitle(columns[i].Tasks)
	}
	return columns
}

// SortByTitle orders tasks by case-folded title, then by exact title, then by id,
// so the order never depends on insertion order.
func SortByTitle(tasks []models.Task) {
	keys := make(map[string]string, len(tasks))
	for _, t := range tasks {
		keys[t.ID] = fold(t.Title)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if ka, kb := keys[a.ID], keys[b.ID]; ka != kb {
			return ka < kb
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}
