package board

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yukikurage/task-board/internal/models"
)

// CreateInput carries the fields of a task to create. Empty enums fall back to
// BACKLOG / FEATURE / MEDIUM.
type CreateInput struct {
	Title       string            `validate:"notblank"`
	Description string            `validate:"-"`
	Status      models.TaskStatus `validate:"omitempty,task_status"`
	WorkType    models.WorkType   `validate:"omitempty,work_type"`
	Priority    models.Priority   `validate:"omitempty,priority"`
	StartDate   *time.Time        `validate:"-"`
	DueDate     *time.Time        `validate:"-"`
	Tags        []string          `validate:"-"`
	AssigneeID  *string           `validate:"-"`
	TeamID      string            `validate:"notblank"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "task_status", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).Valid()
	})
	mustRegister(v, "work_type", func(fl validator.FieldLevel) bool {
		return models.WorkType(fl.Field().String()).Valid()
	})
	mustRegister(v, "priority", func(fl validator.FieldLevel) bool {
		return models.Priority(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("board: register %q validation: %v", tag, err))
	}
}

var fieldErrors = map[string]error{
	"Title":    ErrTitleRequired,
	"TeamID":   ErrTeamRequired,
	"Status":   ErrInvalidStatus,
	"WorkType": ErrInvalidWorkType,
	"Priority": ErrInvalidPriority,
}

// translate maps validator failures onto the package's sentinel errors.
func translate(err error) []error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		if sentinel, ok := fieldErrors[fe.StructField()]; ok {
			out = append(out, sentinel)
			continue
		}
		out = append(out, errors.New(fe.Error()))
	}
	return out
}

func (e *Engine) validateCreate(input CreateInput) error {
	var errs []error
	if err := e.validate.Struct(input); err != nil {
		errs = translate(err)
	}
	if !datesOrdered(input.StartDate, input.DueDate) {
		errs = append(errs, ErrInvalidDateRange)
	}
	if len(errs) > 0 {
		return invalid("create", "", errs...)
	}
	return nil
}

// validateDates checks the start and due dates the task would have once patch
// is applied to current.
func validateDates(id string, current models.Task, patch models.TaskPatch) error {
	if !patch.StartDate.Set && !patch.DueDate.Set {
		return nil
	}
	start, due := current.StartDate, current.DueDate
	if patch.StartDate.Set {
		start = patch.StartDate.Value
	}
	if patch.DueDate.Set {
		due = patch.DueDate.Value
	}
	if !datesOrdered(start, due) {
		return invalid("update", id, ErrInvalidDateRange)
	}
	return nil
}

func datesOrdered(start, due *time.Time) bool {
	return start == nil || due == nil || !start.After(*due)
}

func (e *Engine) validatePatch(id string, patch models.TaskPatch) error {
	if patch.IsEmpty() {
		return invalid("update", id, ErrEmptyPatch)
	}

	var errs []error
	if patch.Title != nil && e.validate.Var(*patch.Title, "notblank") != nil {
		errs = append(errs, ErrTitleRequired)
	}
	if patch.Status != nil && e.validate.Var(string(*patch.Status), "task_status") != nil {
		errs = append(errs, ErrInvalidStatus)
	}
	if patch.WorkType != nil && e.validate.Var(string(*patch.WorkType), "work_type") != nil {
		errs = append(errs, ErrInvalidWorkType)
	}
	if patch.Priority != nil && e.validate.Var(string(*patch.Priority), "priority") != nil {
		errs = append(errs, ErrInvalidPriority)
	}
	if patch.TeamID != nil && e.validate.Var(*patch.TeamID, "notblank") != nil {
		errs = append(errs, ErrTeamRequired)
	}
	if len(errs) > 0 {
		return invalid("update", id, errs...)
	}
	return nil
}
