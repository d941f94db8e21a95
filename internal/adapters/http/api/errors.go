package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/pitchduel/internal/adapters/repository"
	service "github.com/okian/pitchduel/internal/app"
	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/internal/domain/room"
)

// ErrBadRequest tags malformed requests rejected before reaching the service.
var ErrBadRequest = errors.New("bad request")

// Wrap prefixes err with the handler operation.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind tags err with a sentinel kind so both stay matchable.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	if code := room.Code(err); code != "" {
		switch {
		case errors.Is(err, room.ErrNotFound):
			return http.StatusNotFound, code
		case errors.Is(err, room.ErrUnknownPlayer):
			return http.StatusForbidden, code
		case errors.Is(err, room.ErrInvalidGameType), errors.Is(err, room.ErrInvalidPlayer):
			return http.StatusBadRequest, code
		default:
			return http.StatusConflict, code
		}
	}
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrMissingField),
		errors.Is(err, model.ErrInvalidWinner),
		errors.Is(err, model.ErrSamePlayer),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrPlayerNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
