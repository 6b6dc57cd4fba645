package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"dockergen/internal/domain"
	"dockergen/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var importErr *domain.ImportError
	var genErr *domain.GenerationError

	switch {
	case errors.As(err, &importErr):
		extras := map[string]any{}
		if importErr.Path != "" {
			extras["path"] = importErr.Path
		}
		httputil.RespondErrorWithExtras(w, importErr.StatusCode(), importErr.Error(), extras)
	case errors.As(err, &genErr):
		httputil.RespondErrorWithExtras(w, genErr.StatusCode(), genErr.Error(), map[string]any{
			"provider":  genErr.Provider,
			"retryable": true,
		})
	case errors.Is(err, domain.ErrTargetNotFoundOrInvalid):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedLanguage):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
