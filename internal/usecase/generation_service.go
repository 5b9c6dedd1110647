// Package usecase はアプリケーションのユースケースを提供する。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"flashquiz-service/internal/domain"
)

// ContentSource はトピックの要約を取得するインターフェース。
type ContentSource interface {
	FetchSummary(ctx context.Context, topic string) (string, error)
}

// FlashcardGenerator はプロンプトから生のテキストを生成するインターフェース。
type FlashcardGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratedDeckStore は生成結果を保存するインターフェース。
type GeneratedDeckStore interface {
	SaveGeneratedDeck(ctx context.Context, userID, title, description string, drafts []domain.FlashcardDraft) (*domain.Deck, []*domain.Flashcard, bool, error)
}

// GenerationObserver は生成結果の件数を記録する。
type GenerationObserver func(outcome string)

const generationPrompt = `You are an educational AI assistant.

Given the following article, create **exactly 5 flashcards**.
Each flashcard must be a JSON object with exactly these fields:
- "question": the question text.  Questions must not exceed 50 characters
- "answer": the answer text
- "hint": a helpful hint for the question

Article title: %s
Article summary: %s

Return ONLY valid JSON array of objects. Do NOT include any extra text.
Example:
[
  {"question": "Q1", "answer": "A1", "hint": "Hint1"},
  ...
]
`

// GenerationService はトピックからデッキとカードを生成する。
type GenerationService struct {
	source    ContentSource
	generator FlashcardGenerator
	store     GeneratedDeckStore
	observe   GenerationObserver
}

// NewGenerationService は新しいGenerationServiceを生成する。observeはnilでもよい。
func NewGenerationService(source ContentSource, generator FlashcardGenerator, store GeneratedDeckStore, observe GenerationObserver) *GenerationService {
	if observe == nil {
		observe = func(string) {}
	}
	return &GenerationService{
		source:    source,
		generator: generator,
		store:     store,
		observe:   observe,
	}
}

// BuildPrompt は生成モデルへの指示文を組み立てる。
func BuildPrompt(topic, summary string) string {
	return fmt.Sprintf(generationPrompt, topic, summary)
}

// Generate はトピックの要約から5枚を目安にカードを生成し、(principal, topic)のデッキに追加する。
// デッキが既にあれば再利用し、説明は上書きしない。
func (s *GenerationService) Generate(ctx context.Context, principal domain.Principal, topic string) (*domain.GenerationResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		s.observe("invalid")
		return nil, fmt.Errorf("%w: topic is required", domain.ErrValidation)
	}

	summary, err := s.source.FetchSummary(ctx, topic)
	if err != nil {
		s.observe("source_not_found")
		return nil, err
	}

	raw, err := s.generator.Generate(ctx, BuildPrompt(topic, summary))
	if err != nil {
		s.observe("generation_failed")
		return nil, err
	}

	drafts := ParseFlashcards(raw)
	if len(drafts) == 0 {
		slog.WarnContext(ctx, "generation returned no usable flashcards",
			"operation", "generate_flashcards",
			"user_id", principal.ID,
			"topic", topic,
			"raw_length", len(raw),
		)
		s.observe("generation_failed")
		return nil, fmt.Errorf("%w: no usable flashcards in model output", domain.ErrGenerationFailed)
	}

	deck, cards, created, err := s.store.SaveGeneratedDeck(ctx, principal.ID, topic, summary, drafts)
	if err != nil {
		s.observe("error")
		return nil, fmt.Errorf("failed to save generated deck: %w", err)
	}

	s.observe("success")
	return &domain.GenerationResult{
		Deck:        deck,
		DeckCreated: created,
		Flashcards:  cards,
	}, nil
}
