package models

import "time"

type TeamRole string

const (
	RoleLeader TeamRole = "leader"
	RoleMember TeamRole = "member"
)

func (r TeamRole) Valid() bool {
	return r == RoleLeader || r == RoleMember
}

type TeamMember struct {
	TeamID   string    `gorm:"type:varchar(36);primarykey" json:"team_id"`
	UserID   string    `gorm:"type:varchar(36);primarykey" json:"user_id"`
	Role     TeamRole  `gorm:"type:varchar(20);not null" json:"role"`
	Position int       `gorm:"not null;default:0" json:"position"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
