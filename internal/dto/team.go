package dto

import (
	"time"

	"github.com/yukikurage/task-board/internal/models"
)

// TeamMemberDTO represents a roster entry
type TeamMemberDTO struct {
	UserID   string          `json:"user_id"`
	Role     models.TeamRole `json:"role"`
	Position int             `json:"position"`
	JoinedAt time.Time       `json:"joined_at"`
	User     *UserDTO        `json:"user,omitempty"`
}

// TeamDTO represents a team with its roster
type TeamDTO struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Leaders int             `json:"leaders"`
	Members []TeamMemberDTO `json:"members"`
}

// TeamMemberRequest is one roster entry in a request
type TeamMemberRequest struct {
	UserID string          `json:"user_id" binding:"required"`
	Role   models.TeamRole `json:"role" binding:"omitempty,oneof=leader member"`
}

// CreateTeamRequest is the body of POST /api/teams
type CreateTeamRequest struct {
	Name    string              `json:"name" binding:"required"`
	Members []TeamMemberRequest `json:"members" binding:"dive"`
}

// ChangeRoleRequest is the body of PUT /api/teams/:id/members/:user_id
type ChangeRoleRequest struct {
	Role models.TeamRole `json:"role" binding:"required,oneof=leader member"`
}

// ToTeamMemberDTO converts a member to DTO
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	dto := TeamMemberDTO{
		UserID:   member.UserID,
		Role:     member.Role,
		Position: member.Position,
		JoinedAt: member.JoinedAt,
	}
	if member.User != nil {
		user := ToUserDTO(*member.User)
		dto.User = &user
	}
	return dto
}

// ToTeamDTO converts a team and its roster
func ToTeamDTO(team models.Team) TeamDTO {
	members := make([]TeamMemberDTO, len(team.Members))
	for i, m := range team.Members {
		members[i] = ToTeamMemberDTO(m)
	}
	return TeamDTO{
		ID:      team.ID,
		Name:    team.Name,
		Leaders: team.LeaderCount(),
		Members: members,
	}
}
