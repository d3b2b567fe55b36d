package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eskil/fileforge/internal/service"
)

// AdminHandler handles operational endpoints.
type AdminHandler struct {
	sweeper *service.RetentionSweeper
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(sweeper *service.RetentionSweeper) *AdminHandler {
	return &AdminHandler{sweeper: sweeper}
}

// Sweep handles POST /api/v1/admin/sweep: one retention pass on demand, in
// addition to the timer-driven ones.
func (h *AdminHandler) Sweep(c *gin.Context) {
	deleted := h.sweeper.SweepOnce(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
