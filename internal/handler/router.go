package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"flashquiz-service/config"
	"flashquiz-service/internal/middleware"
)

// Handlers はルーターに登録するハンドラ群。
type Handlers struct {
	Decks      *DeckHandler
	Flashcards *FlashcardHandler
	Feedback   *FeedbackHandler
	Generate   *GenerateHandler
}

// NewRouter はルーターを生成する。/api配下のルートはすべてgateで保護する。
func NewRouter(gate *middleware.AuthGate, h Handlers, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// ルート定義
	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", gate.Guard(h.Decks.ListDecks))
			r.Post("/", gate.Guard(h.Decks.CreateDeck))
			r.Get("/{id}", gate.Guard(h.Decks.GetDeck))
			r.Put("/{id}", gate.Guard(h.Decks.UpdateDeck))
			r.Delete("/{id}", gate.Guard(h.Decks.DeleteDeck))
		})
		r.Route("/flashcards", func(r chi.Router) {
			r.Get("/", gate.Guard(h.Flashcards.ListFlashcards))
			r.Post("/", gate.Guard(h.Flashcards.CreateFlashcard))
			r.Get("/{id}", gate.Guard(h.Flashcards.GetFlashcard))
			r.Put("/{id}", gate.Guard(h.Flashcards.UpdateFlashcard))
			r.Delete("/{id}", gate.Guard(h.Flashcards.DeleteFlashcard))
		})
		r.Route("/feedback", func(r chi.Router) {
			r.Get("/", gate.Guard(h.Feedback.ListFeedback))
			r.Post("/", gate.Guard(h.Feedback.CreateFeedback))
			r.Get("/{id}", gate.Guard(h.Feedback.GetFeedback))
			r.Put("/{id}", gate.Guard(h.Feedback.UpdateFeedback))
			r.Delete("/{id}", gate.Guard(h.Feedback.DeleteFeedback))
		})
		r.Post("/generate-flashcards", gate.Guard(h.Generate.GenerateFlashcards))
	})

	if cfg != nil && cfg.OtelEnabled {
		return otelhttp.NewHandler(r, cfg.OtelServiceName)
	}
	return r
}
