package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flashquiz-service/internal/domain"
	"flashquiz-service/internal/middleware"
	"flashquiz-service/internal/usecase"
	"flashquiz-service/pkg/httputil"
)

// DeckHandler はデッキのHTTPハンドラを提供する。
type DeckHandler struct {
	service *usecase.DeckService
}

// NewDeckHandler は新しいDeckHandlerを生成する。
func NewDeckHandler(service *usecase.DeckService) *DeckHandler {
	return &DeckHandler{service: service}
}

// CreateDeckRequest はデッキ作成のリクエスト形式。
type CreateDeckRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

// UpdateDeckRequest はデッキ更新のリクエスト形式。省略したフィールドは変更しない。
type UpdateDeckRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
}

// DeckResponse はデッキのレスポンス形式。
type DeckResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// DeckListResponse はデッキ一覧のレスポンス形式。
type DeckListResponse struct {
	Decks []DeckResponse `json:"decks"`
}

func toDeckResponse(d *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListDecks は認証ユーザーのデッキ一覧を返す。
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	decks, err := h.service.ListDecks(r.Context(), principal.ID)
	if err != nil {
		writeError(r.Context(), w, "list_decks", err)
		return
	}

	response := DeckListResponse{Decks: make([]DeckResponse, len(decks))}
	for i, d := range decks {
		response.Decks[i] = toDeckResponse(d)
	}
	httputil.JSON(w, http.StatusOK, response)
}

// CreateDeck はデッキを作成する。
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var req CreateDeckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, "create_deck", err)
		return
	}

	deck, err := h.service.CreateDeck(r.Context(), principal.ID, req.Title, req.Description)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "CREATE_DECK", principal.ID, "", middleware.ResultFailed)
		writeError(r.Context(), w, "create_deck", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "CREATE_DECK", principal.ID, deck.ID, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusCreated, toDeckResponse(deck))
}

// GetDeck はデッキを返す。
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	deck, err := h.service.GetDeck(r.Context(), principal.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, "get_deck", err)
		return
	}
	httputil.JSON(w, http.StatusOK, toDeckResponse(deck))
}

// UpdateDeck はデッキを部分更新する。
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	id := chi.URLParam(r, "id")

	var req UpdateDeckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, "update_deck", err)
		return
	}

	deck, err := h.service.UpdateDeck(r.Context(), principal.ID, id, usecase.DeckPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "UPDATE_DECK", principal.ID, id, middleware.ResultFailed)
		writeError(r.Context(), w, "update_deck", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "UPDATE_DECK", principal.ID, id, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusOK, toDeckResponse(deck))
}

// DeleteDeck はデッキを削除する。
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteDeck(r.Context(), principal.ID, id); err != nil {
		middleware.WriteAuditLog(r.Context(), "DELETE_DECK", principal.ID, id, middleware.ResultFailed)
		writeError(r.Context(), w, "delete_deck", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "DELETE_DECK", principal.ID, id, middleware.ResultSuccess)
	w.WriteHeader(http.StatusNoContent)
}
