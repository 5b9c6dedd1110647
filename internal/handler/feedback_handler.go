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

// FeedbackHandler はフィードバックのHTTPハンドラを提供する。
type FeedbackHandler struct {
	service *usecase.FeedbackService
}

// NewFeedbackHandler は新しいFeedbackHandlerを生成する。
func NewFeedbackHandler(service *usecase.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// CreateFeedbackRequest はフィードバック投稿のリクエスト形式。
type CreateFeedbackRequest struct {
	DeckID  string `json:"deck" validate:"required"`
	Comment string `json:"comment"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
}

// UpdateFeedbackRequest はフィードバック更新のリクエスト形式。省略したフィールドは変更しない。
type UpdateFeedbackRequest struct {
	Comment *string `json:"comment,omitempty"`
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// FeedbackResponse はフィードバックのレスポンス形式。
type FeedbackResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	DeckID    string `json:"deck"`
	Comment   string `json:"comment"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"created_at"`
}

// FeedbackListResponse はフィードバック一覧のレスポンス形式。
type FeedbackListResponse struct {
	Feedback []FeedbackResponse `json:"feedback"`
}

func toFeedbackResponse(fb *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        fb.ID,
		UserID:    fb.UserID,
		DeckID:    fb.DeckID,
		Comment:   fb.Comment,
		Rating:    fb.Rating,
		CreatedAt: fb.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListFeedback はuser_id・deck_idで絞り込んだフィードバック一覧を返す。
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	q := r.URL.Query()
	feedback, err := h.service.ListFeedback(r.Context(), domain.FeedbackFilter{
		UserID: q.Get("user_id"),
		DeckID: q.Get("deck_id"),
	})
	if err != nil {
		writeError(r.Context(), w, "list_feedback", err)
		return
	}

	response := FeedbackListResponse{Feedback: make([]FeedbackResponse, len(feedback))}
	for i, fb := range feedback {
		response.Feedback[i] = toFeedbackResponse(fb)
	}
	httputil.JSON(w, http.StatusOK, response)
}

// CreateFeedback はフィードバックを投稿する。
func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var req CreateFeedbackRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, "create_feedback", err)
		return
	}

	fb, err := h.service.CreateFeedback(r.Context(), principal.ID, req.DeckID, req.Comment, req.Rating)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "CREATE_FEEDBACK", principal.ID, "", middleware.ResultFailed)
		writeError(r.Context(), w, "create_feedback", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "CREATE_FEEDBACK", principal.ID, fb.ID, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusCreated, toFeedbackResponse(fb))
}

// GetFeedback はIDでフィードバックを返す。
func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	fb, err := h.service.GetFeedback(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, "get_feedback", err)
		return
	}
	httputil.JSON(w, http.StatusOK, toFeedbackResponse(fb))
}

// UpdateFeedback は投稿者本人のフィードバックを部分更新する。
func (h *FeedbackHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	id := chi.URLParam(r, "id")

	var req UpdateFeedbackRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, "update_feedback", err)
		return
	}

	fb, err := h.service.UpdateFeedback(r.Context(), principal.ID, id, usecase.FeedbackPatch{
		Comment: req.Comment,
		Rating:  req.Rating,
	})
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "UPDATE_FEEDBACK", principal.ID, id, middleware.ResultFailed)
		writeError(r.Context(), w, "update_feedback", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "UPDATE_FEEDBACK", principal.ID, id, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusOK, toFeedbackResponse(fb))
}

// DeleteFeedback は投稿者本人のフィードバックを削除する。
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteFeedback(r.Context(), principal.ID, id); err != nil {
		middleware.WriteAuditLog(r.Context(), "DELETE_FEEDBACK", principal.ID, id, middleware.ResultFailed)
		writeError(r.Context(), w, "delete_feedback", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "DELETE_FEEDBACK", principal.ID, id, middleware.ResultSuccess)
	w.WriteHeader(http.StatusNoContent)
}
