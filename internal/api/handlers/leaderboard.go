package handlers

import (
	"github.com/yantrahq/yantra/internal/leaderboard"
	"github.com/yantrahq/yantra/internal/utils"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	projector *leaderboard.Projector
}

func NewLeaderboardHandler(projector *leaderboard.Projector) *LeaderboardHandler {
	return &LeaderboardHandler{projector: projector}
}

// Get returns the board, served from cache while fresh
func (h *LeaderboardHandler) Get(c *gin.Context) {
	board, err := h.projector.View(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.HandleSuccess(c, board)
}

// Refresh rebuilds the board from the team directory
func (h *LeaderboardHandler) Refresh(c *gin.Context) {
	board, err := h.projector.Refresh(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.HandleSuccess(c, board)
}
