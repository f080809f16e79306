package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/deckduel/internal/api/apierr"
	"github.com/mcoot/deckduel/internal/middleware"
	"github.com/mcoot/deckduel/internal/model"
)

// Recovery turns handler panics into JSON error bodies. A panic carrying a
// storage outage is reported as 503 so clients retry; anything else is a 500.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, writePanic)
}

func writePanic(w http.ResponseWriter, _ *http.Request, p any) {
	if err, ok := p.(error); ok && errors.Is(err, model.ErrUnavailable) {
		apierr.WriteError(w, err)
		return
	}
	apierr.WriteError(w, apierr.NewInternalError())
}
