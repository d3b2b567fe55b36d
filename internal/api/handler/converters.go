package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eskil/fileforge/internal/convert"
)

// ConverterHandler exposes read-only registry introspection.
type ConverterHandler struct {
	registry *convert.Registry
}

// NewConverterHandler creates a new converter handler.
func NewConverterHandler(registry *convert.Registry) *ConverterHandler {
	return &ConverterHandler{registry: registry}
}

// ListTargets handles GET /api/v1/converters. With a ?source= query the
// listing is restricted to converters accepting that input format; an
// unknown format simply yields an empty map.
func (h *ConverterHandler) ListTargets(c *gin.Context) {
	if source := c.Query("source"); source != "" {
		targets := h.registry.ListTargetsFor(convert.NormalizeInputFormat(source))
		c.JSON(http.StatusOK, gin.H{"targets": targets})
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": h.registry.ListTargets()})
}

// ListInputs handles GET /api/v1/converters/:name/inputs.
func (h *ConverterHandler) ListInputs(c *gin.Context) {
	name := c.Param("name")
	inputs := h.registry.ListInputs(name)
	if inputs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown converter"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"converter": name, "inputs": inputs})
}
