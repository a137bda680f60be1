package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	toolx "github.com/tala-demo/recoveries-agent/agent/tool"
)

// ToolsHandler exposes the dispatcher over HTTP so a remote orchestrator
// (or the LLM provider's tool-calling harness) can invoke the catalog.
type ToolsHandler struct {
	dispatcher *toolx.Dispatcher
}

func NewToolsHandler(dispatcher *toolx.Dispatcher) *ToolsHandler {
	return &ToolsHandler{dispatcher: dispatcher}
}

type toolSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ToolsHandler) List(c *gin.Context) {
	descriptors := h.dispatcher.Registry().List()
	out := make([]toolSummary, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, toolSummary{Name: d.Name, Description: d.Desc})
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

func (h *ToolsHandler) Dispatch(c *gin.Context) {
	toolName := c.Param("tool_name")

	args := map[string]any{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "request body must be a JSON object",
				"code":  contractx.CodeSchemaViolation,
			})
			return
		}
	}

	out, err := h.dispatcher.Dispatch(c.Request.Context(), toolName, args)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("tool", toolName).Msg("tool dispatch failed")
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
			"code":  contractx.CodeFor(err),
		})
		return
	}

	c.JSON(http.StatusOK, out)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, contractx.ErrUnknownTool), errors.Is(err, contractx.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contractx.ErrSchemaViolation), errors.Is(err, contractx.ErrBusinessRule):
		return http.StatusBadRequest
	case errors.Is(err, contractx.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
