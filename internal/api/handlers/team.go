package handlers

import (
	"net/http"

	"github.com/yantrahq/yantra/internal/api/constants"
	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/api/dto/v1/team"
	"github.com/yantrahq/yantra/internal/api/mapper"
	"github.com/yantrahq/yantra/internal/api/middleware"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/service"
	"github.com/yantrahq/yantra/internal/session"
	"github.com/yantrahq/yantra/internal/utils"

	"github.com/gin-gonic/gin"
)

// TeamHandler serves the team directory.
type TeamHandler struct {
	teams  *service.TeamService
	binder *session.Binder
	logger *logging.Logger
}

func NewTeamHandler(teams *service.TeamService, binder *session.Binder, logger *logging.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, binder: binder, logger: logger}
}

// Create creates a team led by the caller
func (h *TeamHandler) Create(c *gin.Context) {
	req := c.MustGet(constants.ContextKeyCreateTeam).(team.CreateTeamRequest)
	sc := middleware.SessionFrom(c)

	created, err := h.teams.CreateTeam(c.Request.Context(), req.Name, string(req.Capacity), sc.Principal().ID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	h.resync(c, sc)
	utils.HandleCreated(c, team.CreateTeamResponse{
		TeamID: created.TeamID,
		Code:   created.Code,
		Team:   mapper.TeamDetailsToResponse(sc.CurrentTeam()),
	})
}

// Join adds the caller to the team with the given code
func (h *TeamHandler) Join(c *gin.Context) {
	req := c.MustGet(constants.ContextKeyJoinTeam).(team.JoinTeamRequest)
	sc := middleware.SessionFrom(c)

	joined, err := h.teams.JoinTeam(c.Request.Context(), req.Code, sc.Principal().ID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	h.resync(c, sc)
	utils.HandleSuccess(c, team.JoinTeamResponse{
		TeamID:   joined.TeamID,
		TeamName: joined.TeamName,
		Team:     mapper.TeamDetailsToResponse(sc.CurrentTeam()),
	})
}

// Current returns the session's current team
func (h *TeamHandler) Current(c *gin.Context) {
	current := middleware.SessionFrom(c).CurrentTeam()
	if current == nil {
		utils.HandleError(c, http.StatusNotFound, common.ErrorCode(service.CodeNotInTeam), service.ErrNotInTeam.Message, nil)
		return
	}
	utils.HandleSuccess(c, mapper.TeamDetailsToResponse(current))
}

// Get returns a team with its hydrated roster
func (h *TeamHandler) Get(c *gin.Context) {
	details, err := h.teams.GetTeamDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.HandleSuccess(c, mapper.TeamDetailsToResponse(details))
}

// resync re-publishes the caller's team after a successful write. A failed
// resync leaves the cache empty and is only logged; the write stands.
func (h *TeamHandler) resync(c *gin.Context, sc *session.Context) {
	if err := h.binder.Resync(c.Request.Context(), sc); err != nil {
		h.logger.Warn("Failed to refresh current team for session principal: %v", err)
	}
}
