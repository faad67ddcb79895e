package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/api/dto/v1/dashboard"
	"github.com/yantrahq/yantra/internal/api/mapper"
	"github.com/yantrahq/yantra/internal/api/middleware"
	"github.com/yantrahq/yantra/internal/leaderboard"
	"github.com/yantrahq/yantra/internal/roundgate"
	"github.com/yantrahq/yantra/internal/session"
	"github.com/yantrahq/yantra/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	eventBuffer       = 16
	keepAliveInterval = 25 * time.Second
)

// DashboardHandler serves the round-gated dashboard of a session.
type DashboardHandler struct {
	gate      *roundgate.Gate
	projector *leaderboard.Projector
}

func NewDashboardHandler(gate *roundgate.Gate, projector *leaderboard.Projector) *DashboardHandler {
	return &DashboardHandler{gate: gate, projector: projector}
}

// Get opens the dashboard view if needed and returns its state
func (h *DashboardHandler) Get(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	nav := sc.OpenDashboard(h.gate)

	utils.HandleSuccess(c, snapshot(sc, nav, h.gate))
}

// Activate switches the active section. A locked round is reported as
// rejected with 200; opening the leaderboard refreshes it.
func (h *DashboardHandler) Activate(c *gin.Context) {
	nav := middleware.SessionFrom(c).OpenDashboard(h.gate)

	activation, err := nav.Activate(c.Param("section"))
	switch {
	case errors.Is(err, roundgate.ErrUnknownSection):
		utils.HandleError(c, http.StatusNotFound, common.ErrCodeUnknownSection, "Unknown dashboard section", nil)
		return
	case errors.Is(err, roundgate.ErrStopped):
		utils.HandleError(c, http.StatusConflict, common.ErrCodeDashboardClosed, "Dashboard was closed", nil)
		return
	case err != nil:
		utils.HandleServiceError(c, err)
		return
	}

	resp := dashboard.ActivateResponse{Activation: activation, Entries: nav.Entries()}
	if !activation.Rejected && activation.Active == roundgate.SectionLeaderboard {
		board, err := h.projector.Refresh(c.Request.Context())
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		resp.Board = board
	}
	utils.HandleSuccess(c, resp)
}

// Events streams navigation events as server-sent events until the client
// goes away or the dashboard closes. The first event is a snapshot.
func (h *DashboardHandler) Events(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	nav := sc.OpenDashboard(h.gate)

	events, cancel := nav.Watch(eventBuffer)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("snapshot", snapshot(sc, nav, h.gate))
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				c.SSEvent("closed", "dashboard closed")
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		case t := <-keepAlive.C:
			c.SSEvent("ping", t.UTC())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Close stops the dashboard view of the session
func (h *DashboardHandler) Close(c *gin.Context) {
	middleware.SessionFrom(c).CloseDashboard()
	utils.HandleMessage(c, "Dashboard closed")
}

func snapshot(sc *session.Context, nav *roundgate.Navigator, gate *roundgate.Gate) dashboard.DashboardResponse {
	return dashboard.DashboardResponse{
		Active:   nav.Active(),
		Entries:  nav.Entries(),
		Observed: gate.Observed(),
		Team:     mapper.TeamDetailsToResponse(sc.CurrentTeam()),
	}
}
