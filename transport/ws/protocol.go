package ws

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"collabhub/domain/event"
)

// FrameType tags every frame on the wire so client handling stays exhaustive.
type FrameType string

const (
	// Bidirectional: the chat message event.
	FrameProjectMessage FrameType = "project-message"

	// Server -> client only.
	FrameSystemNotice FrameType = "system-notice"
	FrameErrorNotice  FrameType = "error-notice"
)

var validate = validator.New()

// InboundFrame is what a client may send. The sender field is advisory;
// the server always trusts the session identity resolved at connect time.
type InboundFrame struct {
	Type    FrameType `json:"type" validate:"required,eq=project-message"`
	Message string    `json:"message" validate:"required"`
	Sender  string    `json:"sender,omitempty"`
}

func (f InboundFrame) Validate() error {
	return validate.Struct(f)
}

// OutboundFrame is the server-to-client shape of all three variants.
type OutboundFrame struct {
	Type          FrameType `json:"type"`
	Message       string    `json:"message,omitempty"`
	Sender        string    `json:"sender,omitempty"`
	MessageID     string    `json:"messageId,omitempty"`
	SentAt        time.Time `json:"sentAt,omitempty"`
	Lang          string    `json:"lang,omitempty"`
	Code          string    `json:"code,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
}

// toFrame converts a routed event into its wire shape. Raw (pre-moderation)
// events never leave the pipeline, so they report ok=false.
func toFrame(e event.DomainEvent) (OutboundFrame, bool) {
	switch evt := e.(type) {
	case event.ChatMessage:
		frame := OutboundFrame{
			Type:      FrameProjectMessage,
			Message:   evt.Body,
			Sender:    evt.Sender.String(),
			MessageID: evt.ID.String(),
			SentAt:    evt.At,
			Lang:      evt.Lang,
		}
		if evt.CorrelationID != uuid.Nil {
			frame.CorrelationID = evt.CorrelationID.String()
		}
		return frame, true
	case event.SystemNotice:
		return OutboundFrame{
			Type:    FrameSystemNotice,
			Message: evt.Body,
			SentAt:  evt.At,
		}, true
	case event.ErrorNotice:
		frame := OutboundFrame{
			Type:    FrameErrorNotice,
			Code:    evt.Code,
			Message: evt.Body,
			SentAt:  evt.At,
		}
		if evt.CorrelationID != uuid.Nil {
			frame.CorrelationID = evt.CorrelationID.String()
		}
		return frame, true
	default:
		return OutboundFrame{}, false
	}
}
