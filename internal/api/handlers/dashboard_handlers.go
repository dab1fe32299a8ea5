package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treviro/treviro_service/internal/domain/services/session"
)

// DashboardHandler handles dashboard summary endpoints
type DashboardHandler struct {
	registry *session.Registry
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(registry *session.Registry) *DashboardHandler {
	return &DashboardHandler{registry: registry}
}

// Get handles GET /dashboard. A user with no summary row gets an all-zero
// summary; the read itself never creates the row.
func (h *DashboardHandler) Get(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}

	summary, err := sess.Dashboard.GetSummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Recalculate handles POST /dashboard/recalculate: a full rebuild of the
// aggregate from source records, for recovery from missed updates.
func (h *DashboardHandler) Recalculate(c *gin.Context) {
	sess, ok := userSession(c, h.registry)
	if !ok {
		return
	}

	summary, err := sess.Dashboard.Recalculate(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
