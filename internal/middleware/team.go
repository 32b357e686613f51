package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/task-board/internal/errors"
	"github.com/yukikurage/task-board/internal/models"
	"github.com/yukikurage/task-board/internal/services"
)

const teamKey = "team"

// RequireTeam loads the team named by the :id parameter, with its roster
func RequireTeam(teams *services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID := strings.TrimSpace(c.Param("id"))
		if teamID == "" {
			apierrors.BadRequest(c, "Invalid team ID")
			c.Abort()
			return
		}

		team, err := teams.GetTeam(c.Request.Context(), teamID)
		if err != nil {
			if errors.Is(err, services.ErrTeamNotFound) {
				apierrors.NotFound(c, "Team not found")
			} else {
				apierrors.InternalError(c, "Failed to load team")
			}
			c.Abort()
			return
		}

		c.Set(teamKey, *team)
		c.Next()
	}
}

// GetTeam returns the team stored by RequireTeam
func GetTeam(c *gin.Context) (models.Team, bool) {
	v, exists := c.Get(teamKey)
	if !exists {
		return models.Team{}, false
	}
	team, ok := v.(models.Team)
	return team, ok
}
