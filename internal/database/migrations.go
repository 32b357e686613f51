package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/task-board/internal/models"
)

// AddIndexes adds the indexes behind the board's list filters
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   any
		table   string
		name    string
		columns string
	}{
		// Task filters: team, assignee, column and due day
		{&models.Task{}, "tasks", "idx_tasks_team_id", "team_id"},
		{&models.Task{}, "tasks", "idx_tasks_assignee_id", "assignee_id"},
		{&models.Task{}, "tasks", "idx_tasks_status", "status"},
		{&models.Task{}, "tasks", "idx_tasks_due_date", "due_date"},
		{&models.Task{}, "tasks", "idx_tasks_created_at", "created_at"},

		// Rosters
		{&models.TeamMember{}, "team_members", "idx_team_members_user_id", "user_id"},
		{&models.TeamMember{}, "team_members", "idx_team_members_position", "team_id, position"},
	}

	m := db.Migrator()
	for _, idx := range indexes {
		if m.HasIndex(idx.model, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
