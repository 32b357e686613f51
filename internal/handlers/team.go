package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/task-board/internal/dto"
	apierrors "github.com/yukikurage/task-board/internal/errors"
	"github.com/yukikurage/task-board/internal/middleware"
	"github.com/yukikurage/task-board/internal/services"
)

type TeamHandler struct {
	teams *services.TeamService
}

func NewTeamHandler(teams *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teams: teams,
	}
}

// CreateTeam creates a team with an initial roster
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	input := services.CreateTeamInput{Name: req.Name}
	for _, m := range req.Members {
		input.Members = append(input.Members, services.TeamMemberInput{UserID: m.UserID, Role: m.Role})
	}

	team, err := h.teams.CreateTeam(c.Request.Context(), input)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

// ListTeams lists every team
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teams.ListTeams(c.Request.Context())
	if err != nil {
		respondTeamError(c, err)
		return
	}

	out := make([]dto.TeamDTO, len(teams))
	for i, t := range teams {
		out[i] = dto.ToTeamDTO(t)
	}
	c.JSON(http.StatusOK, gin.H{"teams": out})
}

// GetTeam returns a team loaded by RequireTeam
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(team))
}

// AddMember appends a user to the roster
func (h *TeamHandler) AddMember(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	var req dto.TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	member, err := h.teams.AddMember(c.Request.Context(), team.ID, services.TeamMemberInput{UserID: req.UserID, Role: req.Role})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamMemberDTO(*member))
}

// ChangeMemberRole promotes or demotes a member
func (h *TeamHandler) ChangeMemberRole(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	if err := h.teams.ChangeMemberRole(c.Request.Context(), team.ID, c.Param("user_id"), req.Role); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": c.Param("user_id"),
		"role":    req.Role,
	})
}

// RemoveMember removes a member from the roster
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	if err := h.teams.RemoveMember(c.Request.Context(), team.ID, c.Param("user_id")); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrTeamMemberNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidTeamName),
		errors.Is(err, services.ErrInvalidRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyTeamMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrLastLeader):
		apierrors.InvalidOperation(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "Internal server error")
	}
}
