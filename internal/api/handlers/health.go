package handlers

import (
	"github.com/yantrahq/yantra/internal/roundgate"
	"github.com/yantrahq/yantra/internal/utils"
	"github.com/yantrahq/yantra/internal/version"

	"github.com/gin-gonic/gin"
)

// HealthResponse reports liveness and whether round settings were observed
type HealthResponse struct {
	Status         string            `json:"status"`
	Version        version.BuildInfo `json:"version"`
	RoundsObserved bool              `json:"roundsObserved"`
}

type HealthHandler struct {
	gate *roundgate.Gate
}

func NewHealthHandler(gate *roundgate.Gate) *HealthHandler {
	return &HealthHandler{gate: gate}
}

func (h *HealthHandler) Check(c *gin.Context) {
	utils.HandleSuccess(c, HealthResponse{
		Status:         "ok",
		Version:        version.GetBuildInfo(),
		RoundsObserved: h.gate.Observed(),
	})
}
