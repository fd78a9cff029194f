package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"collabhub/contract"
)

// AIHandler exposes the synchronous generation endpoint. The socket path is
// the primary way to talk to the assistant; this one exists for tooling and
// matches the behavior of the chat mention minus the fan-out.
type AIHandler struct {
	generator contract.Generator
	log       *slog.Logger
}

func NewAIHandler(generator contract.Generator, log *slog.Logger) *AIHandler {
	return &AIHandler{generator: generator, log: log}
}

// GetResult handles GET /api/ai/result?prompt=
func (h *AIHandler) GetResult(c *gin.Context) {
	prompt := strings.TrimSpace(c.Query("prompt"))
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "the 'prompt' query parameter is missing"})
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), prompt)
	if err != nil {
		h.log.Warn("Synchronous generation failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
		return
	}

	c.String(http.StatusOK, result)
}
