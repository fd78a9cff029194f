package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrUnauthorized       = fmt.Errorf("missing or invalid credential")
	ErrNotCollaborator    = fmt.Errorf("identity is not a collaborator of the project")
	ErrInvalidRequest     = fmt.Errorf("malformed request payload")
	ErrEmptyPrompt        = fmt.Errorf("prompt is empty")
	ErrGenerationFailed   = fmt.Errorf("assistant generation failed")
	ErrGenerationTimeout  = fmt.Errorf("assistant generation timed out")
	ErrDeliveryFailure    = fmt.Errorf("member transport unreachable")
	ErrEmptyCensoredWords = fmt.Errorf("no censored words have been configured")
)
