package handler

import (
	"net/http"

	"flashquiz-service/internal/domain"
	"flashquiz-service/internal/middleware"
	"flashquiz-service/internal/usecase"
	"flashquiz-service/pkg/httputil"
)

// GenerateHandler はフラッシュカード生成のHTTPハンドラを提供する。
type GenerateHandler struct {
	service *usecase.GenerationService
}

// NewGenerateHandler は新しいGenerateHandlerを生成する。
func NewGenerateHandler(service *usecase.GenerationService) *GenerateHandler {
	return &GenerateHandler{service: service}
}

// GenerateRequest は生成リクエストの形式。
type GenerateRequest struct {
	Topic string `json:"topic" validate:"required,max=255"`
}

// GeneratedDeck は生成されたデッキの識別情報。
type GeneratedDeck struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// GeneratedFlashcard は生成されたカード。
type GeneratedFlashcard struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Hint     string `json:"hint"`
}

// GenerateResponse は生成結果のレスポンス形式。
type GenerateResponse struct {
	Deck       GeneratedDeck        `json:"deck"`
	Flashcards []GeneratedFlashcard `json:"flashcards"`
}

// GenerateFlashcards はトピックからカードを生成し、ユーザーのデッキに保存する。
func (h *GenerateHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request, principal domain.Principal) {
	var req GenerateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, "generate_flashcards", err)
		return
	}

	result, err := h.service.Generate(r.Context(), principal, req.Topic)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "GENERATE_FLASHCARDS", principal.ID, "", middleware.ResultFailed)
		writeError(r.Context(), w, "generate_flashcards", err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "GENERATE_FLASHCARDS", principal.ID, result.Deck.ID, middleware.ResultSuccess)

	response := GenerateResponse{
		Deck:       GeneratedDeck{ID: result.Deck.ID, Title: result.Deck.Title},
		Flashcards: make([]GeneratedFlashcard, len(result.Flashcards)),
	}
	for i, c := range result.Flashcards {
		response.Flashcards[i] = GeneratedFlashcard{
			ID:       c.ID,
			Question: c.Question,
			Answer:   c.Answer,
			Hint:     c.Hint,
		}
	}
	httputil.JSON(w, http.StatusCreated, response)
}
