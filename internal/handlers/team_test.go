package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/yukikurage/task-board/internal/dto"
	apierrors "github.com/yukikurage/task-board/internal/errors"
	"github.com/yukikurage/task-board/internal/models"
	"github.com/yukikurage/task-board/internal/services"
)

// TeamHandlerTestSuite covers teams, users and the advisor endpoint
type TeamHandlerTestSuite struct {
	apiSuite
}

func (s *TeamHandlerTestSuite) TestCreateAndGetTeam() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	w := s.do(http.MethodPost, "/api/teams", map[string]any{
		"name": "Platform",
		"members": []map[string]any{
			{"user_id": alice.ID, "role": "leader"},
			{"user_id": bob.ID},
		},
	})
	s.assertStatus(w, http.StatusCreated)

	var team dto.TeamDTO
	s.decode(w, &team)
	s.Equal(1, team.Leaders)
	s.Require().Len(team.Members, 2)
	s.Equal(alice.ID, team.Members[0].UserID)
	s.Equal(models.RoleMember, team.Members[1].Role)

	w = s.do(http.MethodGet, "/api/teams/"+team.ID, nil)
	s.assertStatus(w, http.StatusOK)
	s.decode(w, &team)
	s.Require().NotNil(team.Members[0].User)
	s.Equal("alice", team.Members[0].User.Name)

	w = s.do(http.MethodGet, "/api/teams", nil)
	s.assertStatus(w, http.StatusOK)

	w = s.do(http.MethodPost, "/api/teams", map[string]any{
		"name":    "Bad",
		"members": []map[string]any{{"user_id": alice.ID, "role": "owner"}},
	})
	s.assertStatus(w, http.StatusBadRequest)
}

func (s *TeamHandlerTestSuite) TestLastLeaderIsProtected() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	team := s.createTeam("Platform",
		models.TeamMember{UserID: alice.ID, Role: models.RoleLeader},
		models.TeamMember{UserID: bob.ID, Role: models.RoleMember},
	)
	member := "/api/teams/" + team.ID + "/members/"

	w := s.do(http.MethodPut, member+alice.ID, map[string]any{"role": "member"})
	s.assertStatus(w, http.StatusUnprocessableEntity)
	s.Equal(apierrors.ErrCodeInvalidOperation, s.errorCode(w))

	w = s.do(http.MethodDelete, member+alice.ID, nil)
	s.assertStatus(w, http.StatusUnprocessableEntity)

	w = s.do(http.MethodPut, member+bob.ID, map[string]any{"role": "leader"})
	s.assertStatus(w, http.StatusOK)

	w = s.do(http.MethodDelete, member+alice.ID, nil)
	s.assertStatus(w, http.StatusOK)

	w = s.do(http.MethodDelete, member+alice.ID, nil)
	s.assertStatus(w, http.StatusNotFound)
}

func (s *TeamHandlerTestSuite) TestAddMember() {
	alice := s.createUser("alice")
	team := s.createTeam("Platform")

	w := s.do(http.MethodPost, "/api/teams/"+team.ID+"/members", map[string]any{"user_id": alice.ID})
	s.assertStatus(w, http.StatusCreated)

	w = s.do(http.MethodPost, "/api/teams/"+team.ID+"/members", map[string]any{"user_id": alice.ID})
	s.assertStatus(w, http.StatusConflict)

	w = s.do(http.MethodPost, "/api/teams/missing/members", map[string]any{"user_id": alice.ID})
	s.assertStatus(w, http.StatusNotFound)
}

func (s *TeamHandlerTestSuite) TestUsers() {
	w := s.do(http.MethodPost, "/api/users", map[string]any{
		"name": "Alice", "email": "alice@example.com", "expertise": "go", "workload": 2,
	})
	s.assertStatus(w, http.StatusCreated)

	w = s.do(http.MethodPost, "/api/users", map[string]any{"name": "Alias", "email": "alice@example.com"})
	s.assertStatus(w, http.StatusConflict)

	w = s.do(http.MethodPost, "/api/users", map[string]any{"name": "X", "email": "nope"})
	s.assertStatus(w, http.StatusBadRequest)

	var list struct {
		Users []dto.UserDTO `json:"users"`
	}
	w = s.do(http.MethodGet, "/api/users", nil)
	s.assertStatus(w, http.StatusOK)
	s.decode(w, &list)
	s.Require().Len(list.Users, 1)
	s.Equal(2, list.Users[0].Workload)
}

func (s *TeamHandlerTestSuite) TestSuggestAssignee() {
	busy := s.createUser("busy")
	idle := s.createUser("idle")
	team := s.createTeam("Platform",
		models.TeamMember{UserID: busy.ID, Role: models.RoleLeader},
		models.TeamMember{UserID: idle.ID, Role: models.RoleMember},
	)
	open := s.createTask("open", team.ID)
	s.Require().NoError(s.db.Model(open).Update("assignee_id", busy.ID).Error)

	w := s.do(http.MethodPost, "/api/advisor/suggest", map[string]any{
		"team_id": team.ID, "description": "Triage the inbox",
	})
	s.assertStatus(w, http.StatusOK)

	var got services.Suggestion
	s.decode(w, &got)
	s.Equal("idle", got.SuggestedAssignee)
	s.Equal(idle.ID, got.UserID)

	// A team with nobody on it has no candidates.
	empty := s.createTeam("Empty")
	w = s.do(http.MethodPost, "/api/advisor/suggest", map[string]any{
		"team_id": empty.ID, "description": "Anything",
	})
	s.assertStatus(w, http.StatusUnprocessableEntity)
	s.Equal(services.AdvisorInvalidInput, s.errorCode(w))
}

func TestTeamHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TeamHandlerTestSuite))
}
