package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"careermate/internal/common"
	"careermate/internal/httpapi/handlers"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/health", h.Health)

	r.POST("/conversations", h.CreateConversation)
	r.GET("/conversations", h.ListConversations)
	r.GET("/conversations/:conversation_id/messages", h.GetHistory)
	r.POST("/conversations/:conversation_id/messages", h.PostMessage)
	r.DELETE("/conversations/:conversation_id", h.DeleteConversation)

	r.POST("/conversations/:conversation_id/messages/async", h.PostMessageAsync)
	r.GET("/jobs/:job_id", h.GetJob)

	return r
}
