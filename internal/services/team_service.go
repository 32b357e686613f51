package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/task-board/internal/models"
	"github.com/yukikurage/task-board/internal/repository"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrInvalidTeamName    = errors.New("team name cannot be empty")
	ErrInvalidRole        = errors.New("invalid team role")
	ErrAlreadyTeamMember  = errors.New("user is already a member of this team")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrLastLeader         = errors.New("a team with a leader must keep at least one leader")
)

// TeamService provides business logic for team operations.
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// TeamMemberInput is one roster entry.
type TeamMemberInput struct {
	UserID string
	Role   models.TeamRole
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name    string
	Members []TeamMemberInput
}

// CreateTeam creates a team with its initial roster, in the given order.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidTeamName
	}

	team := &models.Team{Name: strings.TrimSpace(input.Name)}
	seen := make(map[string]struct{}, len(input.Members))
	now := time.Now()
	for _, m := range input.Members {
		if m.Role == "" {
			m.Role = models.RoleMember
		}
		if !m.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if _, dup := seen[m.UserID]; dup {
			return nil, ErrAlreadyTeamMember
		}
		seen[m.UserID] = struct{}{}
		if err := s.ensureUser(ctx, m.UserID); err != nil {
			return nil, err
		}
		team.Members = append(team.Members, models.TeamMember{UserID: m.UserID, Role: m.Role, JoinedAt: now})
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return s.GetTeam(ctx, team.ID)
}

// ListTeams returns every team with its roster.
func (s *TeamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// GetTeam returns a team and its members in roster order.
func (s *TeamService) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

// AddMember appends a user to the team roster.
func (s *TeamService) AddMember(ctx context.Context, teamID string, input TeamMemberInput) (*models.TeamMember, error) {
	if input.Role == "" {
		input.Role = models.RoleMember
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	if _, err := s.teamRepo.FindMember(ctx, teamID, input.UserID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   input.UserID,
		Role:     input.Role,
		JoinedAt: time.Now(),
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member to team: %w", err)
	}

	return member, nil
}

// ChangeMemberRole sets a member's role. Demoting the last leader is refused.
func (s *TeamService) ChangeMemberRole(ctx context.Context, teamID, userID string, role models.TeamRole) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	return s.teamRepo.Transaction(ctx, func(tx repository.TeamRepository) error {
		members, err := s.roster(ctx, tx, teamID)
		if err != nil {
			return err
		}
		target, err := findMember(members, userID)
		if err != nil {
			return err
		}
		if target.Role == role {
			return nil
		}
		if target.Role == models.RoleLeader && leaders(members) == 1 {
			return ErrLastLeader
		}

		if err := tx.UpdateMemberRole(ctx, teamID, userID, role); err != nil {
			return fmt.Errorf("failed to change member role: %w", err)
		}
		return nil
	})
}

// RemoveMember removes a member. Removing the last leader is refused.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	return s.teamRepo.Transaction(ctx, func(tx repository.TeamRepository) error {
		members, err := s.roster(ctx, tx, teamID)
		if err != nil {
			return err
		}
		target, err := findMember(members, userID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleLeader && leaders(members) == 1 {
			return ErrLastLeader
		}

		if err := tx.RemoveMember(ctx, teamID, userID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		return nil
	})
}

func (s *TeamService) roster(ctx context.Context, tx repository.TeamRepository, teamID string) ([]models.TeamMember, error) {
	if _, err := tx.FindByID(ctx, teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	members, err := tx.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

func (s *TeamService) ensureUser(ctx context.Context, userID string) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	return nil
}

func findMember(members []models.TeamMember, userID string) (models.TeamMember, error) {
	for _, m := range members {
		if m.UserID == userID {
			return m, nil
		}
	}
	return models.TeamMember{}, ErrTeamMemberNotFound
}

func leaders(members []models.TeamMember) int {
	return models.Team{Members: members}.LeaderCount()
}
