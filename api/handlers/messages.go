package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"collabhub/domain"
	"collabhub/repositories"
	"collabhub/services"
)

const defaultSearchLimit = 10

// MessagesHandler serves persisted message history and full-text search.
type MessagesHandler struct {
	service services.IChatService
}

func NewMessagesHandler(service services.IChatService) *MessagesHandler {
	return &MessagesHandler{service: service}
}

type messageResponse struct {
	MessageID     string    `json:"messageId"`
	Sender        string    `json:"sender"`
	Body          string    `json:"body"`
	Lang          string    `json:"lang,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	At            time.Time `json:"at"`
}

// History handles GET /api/projects/:projectId/messages?cursor=
func (h *MessagesHandler) History(c *gin.Context) {
	projectID := domain.ProjectID(c.Param("projectId"))

	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}

	messages, nextCursor, err := h.service.GetMessages(projectID, cursor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": lo.Map(messages, func(m repositories.DiskMessage, _ int) messageResponse {
			return messageResponse{
				MessageID:     m.ID.String(),
				Sender:        m.Sender,
				Body:          m.Body,
				Lang:          m.Lang,
				CorrelationID: m.CorrelationID,
				At:            m.At,
			}
		}),
		"cursor": nextCursor,
	})
}

type searchHitResponse struct {
	MessageID string    `json:"messageId"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	At        time.Time `json:"at"`
}

// Search handles GET /api/projects/:projectId/messages/search?q=&limit=
func (h *MessagesHandler) Search(c *gin.Context) {
	projectID := domain.ProjectID(c.Param("projectId"))

	terms := c.Query("q")
	if terms == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "the 'q' query parameter is missing"})
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	hits, err := h.service.SearchMessages(c.Request.Context(), projectID, terms, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hits": lo.Map(hits, func(hit repositories.SearchHit, _ int) searchHitResponse {
			return searchHitResponse{
				MessageID: hit.MessageID,
				Sender:    hit.Sender,
				Body:      hit.Body,
				At:        hit.At,
			}
		}),
	})
}
