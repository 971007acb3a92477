package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"careermate/internal/common"
	"careermate/internal/conversation"
)

// PostMessageAsync accepts the user turn, records an ask job, and hands it to
// the queue. The turn itself runs in the worker via the same orchestrator.
func (h *Handler) PostMessageAsync(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	var req messageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50300, "job queue unavailable")
		return
	}

	idempoKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(idempoKey) > 128 {
		common.Fail(c, http.StatusBadRequest, 10003, "idempotency key too long")
		return
	}
	var idempoKeyPtr *string
	if idempoKey != "" {
		idempoKeyPtr = &idempoKey
	}

	jobID, err := common.NewULID()
	if err != nil {
		h.Log.Error("ulid generation failed", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50000, "internal_error")
		return
	}

	j := &conversation.AskJob{
		ID:             jobID,
		ConversationID: conversationID,
		Prompt:         req.Message,
		IdempotencyKey: idempoKeyPtr,
		Status:         conversation.JobQueued,
	}

	job, created, err := h.Svc.CreateJobOrGetExisting(c.Request.Context(), j)
	if err != nil {
		h.Log.Error("create ask job failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50000, "internal_error")
		return
	}

	// Enqueue only when a new job was created.
	if created {
		if err := h.Rabbit.PublishJob(c.Request.Context(), job.ID); err != nil {
			h.Log.Error("publish ask job failed",
				zap.String("job_id", job.ID), zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}
	}

	common.OK(c, gin.H{"job_id": job.ID})
}

func (h *Handler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "job_id required")
		return
	}

	j, err := h.Svc.GetJob(c.Request.Context(), jobID)
	if err != nil {
		h.failFromError(c, "", err)
		return
	}

	common.OK(c, gin.H{
		"job": gin.H{
			"id":                j.ID,
			"conversation_id":   j.ConversationID,
			"status":            j.Status,
			"result_message_id": j.ResultMessageID,
			"error":             j.Error,
			"created_at":        j.CreatedAt,
			"updated_at":        j.UpdatedAt,
		},
	})
}
