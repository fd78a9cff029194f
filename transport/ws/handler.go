package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"collabhub/auth"
	"collabhub/domain"
	"collabhub/domain/event"
	"collabhub/errors"
	"collabhub/services"
)

// Handler owns the socket boundary: one upgraded connection per active
// project view. The credential and the projectId arrive with the upgrade
// request; a connection is refused before upgrade when either is missing
// or invalid, so an unauthenticated attempt never touches the registry.
type Handler struct {
	authenticator *auth.Authenticator
	service       services.IChatService
	log           *slog.Logger
	bufferSize    int
	upgrader      websocket.Upgrader
}

func NewHandler(authenticator *auth.Authenticator, service services.IChatService,
	log *slog.Logger, bufferSize int) *Handler {
	return &Handler{
		authenticator: authenticator,
		service:       service,
		log:           log,
		bufferSize:    bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /ws?projectId=...
func (h *Handler) Connect(c *gin.Context) {
	projectID := domain.ProjectID(c.Query("projectId"))
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId query parameter is required"})
		return
	}

	session, err := h.authenticator.Authenticate(c.Request.Context(), bearerToken(c), projectID)
	if err != nil {
		status := http.StatusUnauthorized
		if stderrors.Is(err, errors.ErrNotCollaborator) {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{"error": "connection refused"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "project_id", projectID, "error", err)
		return
	}

	h.serve(conn, session)
}

// serve runs one session until the client goes away. Registry admission
// happens only here, after authentication and upgrade both succeeded, and
// the deferred Leave covers every exit path including abnormal transport
// termination.
func (h *Handler) serve(conn *websocket.Conn, session domain.Session) {
	sink := NewSink(h.bufferSize)
	h.service.Join(session, sink)
	defer h.service.Leave(session)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		h.readLoop(ctx, conn, session, sink)
	}()

	h.writeLoop(ctx, conn, session, sink)
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, session domain.Session, sink *Sink) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Read failed", "session_id", session.ID, "error", err)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			h.rejectFrame(sink, session, "malformed JSON payload")
			continue
		}
		if err := frame.Validate(); err != nil {
			h.rejectFrame(sink, session, "invalid frame: "+err.Error())
			continue
		}
		if isEmptyPromptMention(frame.Message) {
			h.rejectFrame(sink, session, errors.ErrEmptyPrompt.Error())
			continue
		}

		err = h.service.PostMessage(ctx, domain.PostMessageCommand{
			Project:   session.Project,
			Sender:    session.Identity,
			Body:      frame.Message,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			h.rejectFrame(sink, session, err.Error())
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, session domain.Session, sink *Sink) {
	for {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		case evt := <-sink.Events:
			frame, ok := toFrame(evt)
			if !ok {
				continue
			}
			if err := conn.WriteJSON(frame); err != nil {
				h.log.Warn("Write failed", "session_id", session.ID, "error", err)
				return
			}
		}
	}
}

// rejectFrame surfaces a validation failure to the offending session only;
// nothing reaches the router.
func (h *Handler) rejectFrame(sink *Sink, session domain.Session, reason string) {
	notice := event.ErrorNotice{
		Project: session.Project,
		Code:    "INVALID_REQUEST",
		Body:    reason,
		At:      time.Now().UTC(),
	}
	select {
	case sink.Events <- notice:
	default:
		h.log.Debug("Error notice dropped, sink full", "session_id", session.ID)
	}
}

// isEmptyPromptMention catches "@ai" with nothing behind it so the sender
// gets immediate feedback instead of a silent no-op in the pipeline.
func isEmptyPromptMention(body string) bool {
	if !strings.HasPrefix(body, "@ai") {
		return false
	}
	return strings.TrimSpace(strings.TrimPrefix(body, "@ai")) == ""
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
