package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/task-board/internal/dto"
	apierrors "github.com/yukikurage/task-board/internal/errors"
	"github.com/yukikurage/task-board/internal/services"
)

type AdvisorHandler struct {
	assignments *services.AssignmentService
}

func NewAdvisorHandler(assignments *services.AssignmentService) *AdvisorHandler {
	return &AdvisorHandler{assignments: assignments}
}

// Suggest proposes an assignee from the team roster for a task description
func (h *AdvisorHandler) Suggest(c *gin.Context) {
	var req dto.SuggestAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	suggestion, err := h.assignments.SuggestForTeam(c.Request.Context(), req.TeamID, req.Description)
	if err != nil {
		var aerr *services.AdvisorError
		if !errors.As(err, &aerr) {
			_ = c.Error(err)
			apierrors.InternalError(c, "Internal server error")
			return
		}

		switch aerr.Code {
		case services.AdvisorNotConfigured:
			apierrors.ServiceUnavailable(c, aerr.Err.Error())
		case services.AdvisorInvalidInput:
			apierrors.RespondWithError(c, http.StatusUnprocessableEntity,
				apierrors.NewAPIError(aerr.Code, aerr.Err.Error()))
		default:
			_ = c.Error(err)
			apierrors.RespondWithError(c, http.StatusBadGateway,
				apierrors.NewAPIError(aerr.Code, aerr.Err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, dto.SuggestionResponse{
		SuggestedAssignee: suggestion.SuggestedAssignee,
		UserID:            suggestion.UserID,
		Reason:            suggestion.Reason,
	})
}
