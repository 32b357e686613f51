package dto

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url"`
	Expertise string `json:"expertise"`
	Workload  int    `json:"workload" binding:"min=0"`
}

// SuggestAssigneeRequest is the body of POST /api/advisor/suggest
type SuggestAssigneeRequest struct {
	TeamID      string `json:"team_id" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// SuggestionResponse is the advisor's pick for a task
type SuggestionResponse struct {
	SuggestedAssignee string `json:"suggested_assignee" yaml:"suggested_assignee"`
	UserID            string `json:"user_id" yaml:"user_id"`
	Reason            string `json:"reason" yaml:"reason"`
}
