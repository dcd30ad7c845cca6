package transport

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
	"github.com/GustavoFrossard/P.A.T.A/internal/observability"
)

// DomainError maps chat core errors onto HTTP responses. Anything not in
// the taxonomy is an internal error and only its presence is reported.
func DomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "room not found")
	case errors.Is(err, domain.ErrListingNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "pet not found")
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, domain.ErrInvalidCounterparty):
		WriteError(w, http.StatusBadRequest, "invalid_counterparty", "cannot open a room with yourself")
	case errors.Is(err, domain.ErrEmptyContent):
		WriteError(w, http.StatusBadRequest, "invalid_content", "message content is empty")
	case errors.Is(err, domain.ErrMessageTooLarge):
		WriteError(w, http.StatusBadRequest, "invalid_content", "message content too large")
	case errors.Is(err, domain.ErrSenderInvalid), errors.Is(err, domain.ErrNotParticipant):
		WriteError(w, http.StatusForbidden, "forbidden", "not a participant of this room")
	default:
		observability.Logger().Error("internal_error", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}
