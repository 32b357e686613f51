package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/task-board/internal/errors"
	"github.com/yukikurage/task-board/internal/models"
	"github.com/yukikurage/task-board/internal/services"
)

const taskKey = "task"

// RequireTask loads the task named by the :id parameter into the context
func RequireTask(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID := strings.TrimSpace(c.Param("id"))
		if taskID == "" {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				apierrors.InternalError(c, "Failed to load task")
			}
			c.Abort()
			return
		}

		c.Set(taskKey, *task)
		c.Next()
	}
}

// GetTask returns the task stored by RequireTask
func GetTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(taskKey)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
