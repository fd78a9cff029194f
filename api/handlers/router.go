package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"collabhub/api/middleware"
	"collabhub/auth"
	"collabhub/transport/ws"
)

// NewRouter assembles the HTTP surface: the socket upgrade endpoint, the
// authenticated REST routes and the liveness probe.
func NewRouter(log *slog.Logger, tokens *auth.TokenManager,
	wsHandler *ws.Handler, messages *MessagesHandler, ai *AIHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogging(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The socket endpoint authenticates inside the handler, before upgrade.
	r.GET("/ws", wsHandler.Connect)

	api := r.Group("/api", middleware.RequireAuth(tokens))
	{
		api.GET("/projects/:projectId/messages", messages.History)
		api.GET("/projects/:projectId/messages/search", messages.Search)
		api.GET("/ai/result", ai.GetResult)
	}

	return r
}
