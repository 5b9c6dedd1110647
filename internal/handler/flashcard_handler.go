package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"flashquiz-service/internal/domain"
	"flashquiz-service/internal/middleware"
	"flashquiz-service/internal/usecase"
	"flashquiz-service/pkg/httputil"
)

// FlashcardHandler はカードのHTTPハンドラを提供する。
type FlashcardHandler struct {
	service *usecase.FlashcardService
}

// NewFlashcardHandler は新しいFlashcardHandlerを生成する。
func NewFlashcardHandler(service *usecase.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{service: service}
}

// CreateFlashcardRequest はカード作成のリクエスト形式。
type CreateFlashcardRequest struct {
	DeckID   string `json:"deck_id" validate:"required"`
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Hint     string `json:"hint" validate:"max=255"`
}

// UpdateFlashcardRequest はカード更新のリクエスト形式。省略したフィールドは変更しない。
type UpdateFlashcardRequest struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
	Hint     *string `json:"hint,omitempty" validate:"omitempty,max=255"`
}

// FlashcardResponse はカードのレスポンス形式。
type FlashcardResponse struct {
	ID       string `json:"id"`
	DeckID   string `json:"deck"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Hint     string `json:"hint"`
}

// FlashcardListResponse はカード一覧のレスポンス形式。
type FlashcardListResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
}

func toFlashcardResponse(c *domain.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:       c.ID,
		DeckID:   c.DeckID,
		Question: c.Question,
		Answer:   c.Answer,
		Hint:     c.Hint,
	}
}

// ListFlashcards はdeck_idで指定したデッキのカード一覧を返す。
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	cards, err := h.service.ListFlashcards(r.Context(), principal.ID, r.URL.Query().Get("deck_id"))
	if err != nil {
		writeError(r.Context(), w, "list_flashcards", err)
		return
	}

	response := FlashcardListResponse{Flashcards: make([]FlashcardResponse, len(cards))}
	for i, c := range cards {
		response.Flashcards[i] = toFlashcardResponse(c)
	}
	httputil.JSON(w, http.StatusOK, response)
}

// CreateFlashcard はカードを作成する。
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var req CreateFlashcardRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, "create_flashcard", err)
		return
	}

	card, err := h.service.CreateFlashcard(r.Context(), principal.ID, &domain.Flashcard{
		DeckID:   req.DeckID,
		Question: req.Question,
		Answer:   req.Answer,
		Hint:     req.Hint,
	})
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "CREATE_FLASHCARD", principal.ID, "", middleware.ResultFailed)
		writeError(r.Context(), w, "create_flashcard", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "CREATE_FLASHCARD", principal.ID, card.ID, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusCreated, toFlashcardResponse(card))
}

// GetFlashcard はカードを返す。
func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	card, err := h.service.GetFlashcard(r.Context(), principal.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, "get_flashcard", err)
		return
	}
	httputil.JSON(w, http.StatusOK, toFlashcardResponse(card))
}

// UpdateFlashcard はカードを部分更新する。
func (h *FlashcardHandler) UpdateFlashcard(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	id := chi.URLParam(r, "id")

	var req UpdateFlashcardRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, "update_flashcard", err)
		return
	}

	card, err := h.service.UpdateFlashcard(r.Context(), principal.ID, id, usecase.FlashcardPatch{
		Question: req.Question,
		Answer:   req.Answer,
		Hint:     req.Hint,
	})
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "UPDATE_FLASHCARD", principal.ID, id, middleware.ResultFailed)
		writeError(r.Context(), w, "update_flashcard", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "UPDATE_FLASHCARD", principal.ID, id, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusOK, toFlashcardResponse(card))
}

// DeleteFlashcard はカードを削除する。
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteFlashcard(r.Context(), principal.ID, id); err != nil {
		middleware.WriteAuditLog(r.Context(), "DELETE_FLASHCARD", principal.ID, id, middleware.ResultFailed)
		writeError(r.Context(), w, "delete_flashcard", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "DELETE_FLASHCARD", principal.ID, id, middleware.ResultSuccess)
	w.WriteHeader(http.StatusNoContent)
}
