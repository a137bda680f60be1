package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tala-demo/recoveries-agent/agent/agents/orchestrator"
	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

type ChatHandler struct {
	orch *orchestrator.Orchestrator
}

func NewChatHandler(orch *orchestrator.Orchestrator) *ChatHandler {
	return &ChatHandler{orch: orch}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message   string        `json:"message" binding:"required"`
	SessionID string        `json:"session_id" binding:"required"`
	History   []chatMessage `json:"history"`
}

type chatResponse struct {
	Response  string         `json:"response"`
	SessionID string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message and session_id are required"})
		return
	}

	history := make([]contractx.Turn, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, contractx.Turn{
			Role:    contractx.Role(m.Role),
			Content: m.Content,
		})
	}

	result, err := h.orch.HandleMessage(c.Request.Context(), req.SessionID, req.Message, history)
	if err != nil {
		if errors.Is(err, orchestrator.ErrInvalidMessage) || errors.Is(err, orchestrator.ErrInvalidSession) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	metadata := map[string]any{
		"session_id":   result.SessionID,
		"customer_id":  result.CustomerID,
		"ptp_recorded": result.PTPRecorded,
	}
	if result.PTPViolation != "" {
		metadata["ptp_violation"] = result.PTPViolation
	}
	if result.ErrorMarker != "" {
		metadata["error"] = result.ErrorMarker
	}

	c.JSON(http.StatusOK, chatResponse{
		Response:  result.Reply,
		SessionID: result.SessionID,
		Metadata:  metadata,
	})
}
