// Package handler はHTTPハンドラを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"flashquiz-service/internal/domain"
	"flashquiz-service/pkg/httputil"
)

// writeError はドメインエラーをステータスコードとエラーコードに変換して返す。
func writeError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, httputil.ErrInvalidRequest), errors.Is(err, domain.ErrValidation):
		httputil.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
	case errors.Is(err, domain.ErrDeckNotFound):
		httputil.Error(w, http.StatusNotFound, "DECK_NOT_FOUND", "deck not found")
	case errors.Is(err, domain.ErrFlashcardNotFound):
		httputil.Error(w, http.StatusNotFound, "FLASHCARD_NOT_FOUND", "flashcard not found")
	case errors.Is(err, domain.ErrFeedbackNotFound):
		httputil.Error(w, http.StatusNotFound, "FEEDBACK_NOT_FOUND", "feedback not found")
	case errors.Is(err, domain.ErrDeckAlreadyExists):
		httputil.Error(w, http.StatusConflict, "DECK_ALREADY_EXISTS", "a deck with this title already exists")
	case errors.Is(err, domain.ErrSourceNotFound):
		httputil.Error(w, http.StatusNotFound, "SOURCE_NOT_FOUND", "no source content found for this topic")
	case errors.Is(err, domain.ErrGenerationFailed):
		slog.ErrorContext(ctx, "flashcard generation failed",
			"operation", operation,
			"error", err,
		)
		httputil.Error(w, http.StatusInternalServerError, "GENERATION_FAILED", "failed to generate flashcards")
	default:
		slog.ErrorContext(ctx, "request failed",
			"operation", operation,
			"error", err,
		)
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// validationMessage はラップされたエラーから利用者向けの説明部分だけを取り出す。
func validationMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{httputil.ErrInvalidRequest.Error() + ": ", domain.ErrValidation.Error() + ": "} {
		if i := strings.LastIndex(msg, prefix); i >= 0 {
			return msg[i+len(prefix):]
		}
	}
	return msg
}
