package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"careermate/internal/common"
	"careermate/internal/conversation"
)

type messageReq struct {
	Message string `json:"message" binding:"required"`
}

type messageContent struct {
	NextQuestion string                    `json:"next_question"`
	Examples     []string                  `json:"examples"`
	JobsList     []conversation.JobPosting `json:"jobs_list"`
}

func (h *Handler) failFromError(c *gin.Context, conversationID string, err error) {
	switch {
	case errors.Is(err, conversation.ErrRateLimited):
		common.Fail(c, http.StatusTooManyRequests, 42900, "rate_limited")
	case errors.Is(err, conversation.ErrModelUnconfigured):
		common.Fail(c, http.StatusInternalServerError, 50010, "model_unconfigured")
	case errors.Is(err, conversation.ErrProviderUnavailable):
		common.Fail(c, http.StatusBadGateway, 50220, "provider_error")
	case errors.Is(err, conversation.ErrNotFound):
		common.Fail(c, http.StatusNotFound, 40400, "not_found")
	default:
		h.Log.Error("request failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50000, "internal_error")
	}
}

func (h *Handler) CreateConversation(c *gin.Context) {
	conv, err := h.Svc.CreateConversation(c.Request.Context())
	if err != nil {
		h.failFromError(c, "", err)
		return
	}
	common.OK(c, gin.H{
		"id":         conv.ID,
		"created_at": conv.CreatedAt,
	})
}

func (h *Handler) ListConversations(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	convs, err := h.Svc.ListConversations(c.Request.Context(), skip, limit)
	if err != nil {
		h.failFromError(c, "", err)
		return
	}
	common.OK(c, gin.H{"conversations": convs})
}

func (h *Handler) PostMessage(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	result, err := h.Svc.Ask(c.Request.Context(), conversationID, req.Message)
	if err != nil {
		h.failFromError(c, conversationID, err)
		return
	}

	common.OK(c, gin.H{
		"conversation_id": conversationID,
		"role":            conversation.RoleAssistant,
		"content":         contentFromResult(result),
		"created_at":      time.Now().UTC(),
	})
}

func contentFromResult(result *conversation.AskResult) messageContent {
	if result.Kind == conversation.ResultJobs {
		return messageContent{
			NextQuestion: result.Jobs.Message,
			Examples:     []string{},
			JobsList:     result.Jobs.Jobs,
		}
	}
	return messageContent{
		NextQuestion: result.Reply.NextQuestion,
		Examples:     result.Reply.Examples,
		JobsList:     []conversation.JobPosting{},
	}
}

func (h *Handler) GetHistory(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	msgs, err := h.Svc.History(c.Request.Context(), conversationID)
	if err != nil {
		h.failFromError(c, conversationID, err)
		return
	}

	type historyItem struct {
		Role      string    `json:"role"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	}
	items := make([]historyItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, historyItem{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	common.OK(c, gin.H{"messages": items})
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	if err := h.Svc.DeleteConversation(c.Request.Context(), conversationID); err != nil {
		h.failFromError(c, conversationID, err)
		return
	}
	common.OK(c, gin.H{"message": "conversation deleted"})
}
