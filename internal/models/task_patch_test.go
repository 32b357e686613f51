package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagSet_CollapsesDuplicates(t *testing.T) {
	tags := NewTagSet("api", " api ", "", "ui", "api")

	assert.Equal(t, TagSet{"api", "ui"}, tags)
	assert.True(t, tags.Has("ui"))
	assert.True(t, TagSet{"ui", "api"}.Equal(tags))
	assert.False(t, TagSet{"ui"}.Equal(tags))
}

func TestTaskPatch_FieldsAndApply(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	title := "New title"
	status := TaskStatusDone

	patch := TaskPatch{
		Title:      &title,
		Status:     &status,
		DueDate:    Some(due),
		AssigneeID: Null[string](),
	}

	assert.Equal(t, []TaskField{FieldTitle, FieldStatus, FieldDueDate, FieldAssignee}, patch.Fields())
	assert.Equal(t, []string{"title", "status", "due_date", "assignee_id"}, patch.Columns())

	assignee := "u1"
	task := Task{Title: "Old", Status: TaskStatusTodo, Priority: PriorityLow, AssigneeID: &assignee}
	patch.ApplyTo(&task)

	assert.Equal(t, "New title", task.Title)
	assert.Equal(t, TaskStatusDone, task.Status)
	assert.Equal(t, PriorityLow, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.True(t, due.Equal(*task.DueDate))
	assert.Nil(t, task.AssigneeID)
}

func TestTaskPatch_JSONDistinguishesNullFromAbsent(t *testing.T) {
	var patch TaskPatch
	err := json.Unmarshal([]byte(`{"title":"x","due_date":null}`), &patch)
	require.NoError(t, err)

	assert.True(t, patch.DueDate.Set)
	assert.Nil(t, patch.DueDate.Value)
	assert.False(t, patch.StartDate.Set)
	assert.False(t, patch.AssigneeID.Set)

	out, err := json.Marshal(patch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"x","due_date":null}`, string(out))
}

func TestCopyField_DoesNotShareSlices(t *testing.T) {
	src := Task{Tags: TagSet{"a", "b"}}
	var dst Task

	CopyField(&dst, src, FieldTags)
	dst.Tags[0] = "changed"

	assert.Equal(t, "a", src.Tags[0])
}

func TestTask_CloneIsDeep(t *testing.T) {
	due := time.Now()
	assignee := "u1"
	task := Task{ID: "t1", DueDate: &due, AssigneeID: &assignee, Tags: TagSet{"x"}}

	clone := task.Clone()
	*clone.AssigneeID = "u2"
	clone.Tags[0] = "y"

	assert.Equal(t, "u1", *task.AssigneeID)
	assert.Equal(t, "x", task.Tags[0])
	assert.NotSame(t, task.DueDate, clone.DueDate)
}
