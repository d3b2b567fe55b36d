package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eskil/fileforge/internal/domain"
	"github.com/eskil/fileforge/internal/service"
)

// JobHandler exposes the orchestration engine's boundary operations.
// Authentication is an upstream concern: the handler trusts the user id
// injected in the X-User-ID header.
type JobHandler struct {
	jobService *service.JobService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(jobService *service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// userID extracts the authenticated user from the request; empty means
// the upstream auth layer did not run.
func userID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

// CreateJob handles POST /api/v1/jobs. One job is pre-created per landing,
// whether or not files ever arrive.
func (h *JobHandler) CreateJob(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// ListJobs handles GET /api/v1/jobs: the user's conversion history.
func (h *JobHandler) ListJobs(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	jobs, err := h.jobService.ListJobs(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// StartConversionRequest represents the start-conversion API request.
// ConvertTo carries the target format, optionally suffixed with a
// converter name ("png,resvg"), matching the selector the upload UI sends.
type StartConversionRequest struct {
	ConvertTo string   `json:"convert_to" binding:"required"`
	FileNames []string `json:"file_names"`
}

// StartConversion handles POST /api/v1/jobs/:id/convert. The response is
// an immediate acknowledgment; conversions continue in the background and
// are observed via the progress endpoint.
func (h *JobHandler) StartConversion(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	var req StartConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	target, converterName := splitSelector(req.ConvertTo)

	job, err := h.jobService.StartConversion(
		c.Request.Context(), c.Param("id"), uid, target, converterName, req.FileNames)
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	case errors.Is(err, domain.ErrNoFiles):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files to convert"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start conversion: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, job)
}

// Progress handles GET /api/v1/jobs/:id/progress.
func (h *JobHandler) Progress(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
		return
	}

	progress, err := h.jobService.Progress(c.Request.Context(), c.Param("id"), uid)
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query progress: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, progress)
}

// splitSelector splits a "format,converter" selector; the converter part
// is optional.
func splitSelector(selector string) (target, converterName string) {
	parts := strings.SplitN(selector, ",", 2)
	target = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		converterName = strings.TrimSpace(parts[1])
	}
	return target, converterName
}
