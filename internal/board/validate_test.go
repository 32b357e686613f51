package board

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestNewValidator_RegistersTags(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.Var("TODO", "task_status"))
	assert.Error(t, v.Var("LATER", "task_status"))
	assert.NoError(t, v.Var("BUG", "work_type"))
	assert.NoError(t, v.Var("HIGH", "priority"))
	assert.Error(t, v.Var("  ", "notblank"))
}

func TestMustRegister_PanicsOnBadTag(t *testing.T) {
	assert.Panics(t, func() {
		mustRegister(validator.New(), "", func(validator.FieldLevel) bool { return true })
	})
}
