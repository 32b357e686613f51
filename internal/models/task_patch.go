package models

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

// TaskField names a mutable task field. Values match the gorm column names.
type TaskField string

const (
	FieldTitle       TaskField = "title"
	FieldDescription TaskField = "description"
	FieldStatus      TaskField = "status"
	FieldWorkType    TaskField = "work_type"
	FieldPriority    TaskField = "priority"
	FieldStartDate   TaskField = "start_date"
	FieldDueDate     TaskField = "due_date"
	FieldTags        TaskField = "tags"
	FieldAssignee    TaskField = "assignee_id"
	FieldTeam        TaskField = "team_id"
)

// Nullable distinguishes "not provided" from "provided as null".
// The zero value is "not provided"; with `omitzero` it is left out of JSON.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a provided, non-null value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a provided null, i.e. an instruction to clear the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n Nullable[T]) IsZero() bool {
	return !n.Set
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// TaskPatch is a field-level update. Nil pointers and unset Nullables are untouched.
type TaskPatch struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Status      *TaskStatus         `json:"status,omitempty"`
	WorkType    *WorkType           `json:"work_type,omitempty"`
	Priority    *Priority           `json:"priority,omitempty"`
	StartDate   Nullable[time.Time] `json:"start_date,omitzero"`
	DueDate     Nullable[time.Time] `json:"due_date,omitzero"`
	Tags        *TagSet             `json:"tags,omitempty"`
	AssigneeID  Nullable[string]    `json:"assignee_id,omitzero"`
	TeamID      *string             `json:"team_id,omitempty"`
}

// Fields lists the touched fields in a fixed order.
func (p TaskPatch) Fields() []TaskField {
	var fields []TaskField
	if p.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if p.Description != nil {
		fields = append(fields, FieldDescription)
	}
	if p.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if p.WorkType != nil {
		fields = append(fields, FieldWorkType)
	}
	if p.Priority != nil {
		fields = append(fields, FieldPriority)
	}
	if p.StartDate.Set {
		fields = append(fields, FieldStartDate)
	}
	if p.DueDate.Set {
		fields = append(fields, FieldDueDate)
	}
	if p.Tags != nil {
		fields = append(fields, FieldTags)
	}
	if p.AssigneeID.Set {
		fields = append(fields, FieldAssignee)
	}
	if p.TeamID != nil {
		fields = append(fields, FieldTeam)
	}
	return fields
}

func (p TaskPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Columns returns the touched fields as column names, for gorm Select.
func (p TaskPatch) Columns() []string {
	fields := p.Fields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = string(f)
	}
	return cols
}

// ApplyTo writes every touched field into t.
func (p TaskPatch) ApplyTo(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.WorkType != nil {
		t.WorkType = *p.WorkType
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.StartDate.Set {
		t.StartDate = cloneTime(p.StartDate.Value)
	}
	if p.DueDate.Set {
		t.DueDate = cloneTime(p.DueDate.Value)
	}
	if p.Tags != nil {
		t.Tags = NewTagSet(*p.Tags...)
	}
	if p.AssigneeID.Set {
		if p.AssigneeID.Value == nil || *p.AssigneeID.Value == "" {
			t.AssigneeID = nil
		} else {
			id := *p.AssigneeID.Value
			t.AssigneeID = &id
		}
	}
	if p.TeamID != nil {
		t.TeamID = *p.TeamID
	}
}

// CopyField copies a single field's value from src into dst.
func CopyField(dst *Task, src Task, f TaskField) {
	switch f {
	case FieldTitle:
		dst.Title = src.Title
	case FieldDescription:
		dst.Description = src.Description
	case FieldStatus:
		dst.Status = src.Status
	case FieldWorkType:
		dst.WorkType = src.WorkType
	case FieldPriority:
		dst.Priority = src.Priority
	case FieldStartDate:
		dst.StartDate = cloneTime(src.StartDate)
	case FieldDueDate:
		dst.DueDate = cloneTime(src.DueDate)
	case FieldTags:
		dst.Tags = slices.Clone(src.Tags)
	case FieldAssignee:
		if src.AssigneeID == nil {
			dst.AssigneeID = nil
		} else {
			id := *src.AssigneeID
			dst.AssigneeID = &id
		}
	case FieldTeam:
		dst.TeamID = src.TeamID
	}
}
