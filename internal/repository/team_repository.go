package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/task-board/internal/models"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

func rosterOrder(db *gorm.DB) *gorm.DB {
	return db.Order("team_members.position ASC, team_members.joined_at ASC")
}

// Create creates a team together with its initial members
func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := team.Members
		team.Members = nil
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		for i := range members {
			members[i].TeamID = team.ID
			members[i].Position = i
		}
		if len(members) > 0 {
			if err := tx.Omit("User").Create(&members).Error; err != nil {
				return err
			}
		}
		team.Members = members
		return nil
	})
}

// FindByID finds a team with its members in roster order
func (r *GormTeamRepository) FindByID(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).
		Preload("Members", rosterOrder).
		Preload("Members.User").
		Where("id = ?", id).
		First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List lists every team ordered by name
func (r *GormTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	teams := []models.Team{}
	if err := r.db.WithContext(ctx).
		Preload("Members", rosterOrder).
		Order("name ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// AddMember adds a member at the end of the roster
func (r *GormTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	db := r.db.WithContext(ctx)

	var last struct{ Max *int }
	if err := db.Model(&models.TeamMember{}).
		Select("MAX(position) AS max").
		Where("team_id = ?", member.TeamID).
		Scan(&last).Error; err != nil {
		return err
	}
	member.Position = 0
	if last.Max != nil {
		member.Position = *last.Max + 1
	}

	return db.Omit("User").Create(member).Error
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a team in roster order
func (r *GormTeamRepository) ListMembers(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := rosterOrder(r.db.WithContext(ctx)).
		Preload("User").
		Where("team_id = ?", teamID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateMemberRole changes a member's role
func (r *GormTeamRepository) UpdateMemberRole(ctx context.Context, teamID, userID string, role models.TeamRole) error {
	return notFound(r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role))
}

// RemoveMember removes a member from a team
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	return notFound(r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}))
}

// Transaction runs fn against a repository bound to a single transaction
func (r *GormTeamRepository) Transaction(ctx context.Context, fn func(TeamRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormTeamRepository{db: tx})
	})
}
