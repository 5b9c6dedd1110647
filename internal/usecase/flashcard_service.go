package usecase

import (
	"context"
	"fmt"
	"strings"

	"flashquiz-service/internal/domain"
)

// FlashcardRepository はカードのデータアクセスのインターフェース。
type FlashcardRepository interface {
	Create(ctx context.Context, card *domain.Flashcard) error
	FindAllByDeckID(ctx context.Context, deckID string) ([]*domain.Flashcard, error)
	FindByIDForUser(ctx context.Context, userID, id string) (*domain.Flashcard, error)
	Update(ctx context.Context, card *domain.Flashcard) error
	Delete(ctx context.Context, id string) error
}

// FlashcardPatch はカードの部分更新。nilのフィールドは変更しない。
type FlashcardPatch struct {
	Question *string
	Answer   *string
	Hint     *string
}

// FlashcardService はカードに関するビジネスロジックを提供する。
// カードの操作はデッキの所有者にのみ許可する。
type FlashcardService struct {
	decks DeckRepository
	cards FlashcardRepository
}

// NewFlashcardService は新しいFlashcardServiceを生成する。
func NewFlashcardService(decks DeckRepository, cards FlashcardRepository) *FlashcardService {
	return &FlashcardService{decks: decks, cards: cards}
}

// ListFlashcards はユーザーが所有するデッキのカード一覧を返す。
func (s *FlashcardService) ListFlashcards(ctx context.Context, userID, deckID string) ([]*domain.Flashcard, error) {
	if deckID == "" {
		return nil, fmt.Errorf("%w: deck_id is required", domain.ErrValidation)
	}
	if _, err := s.decks.FindByID(ctx, userID, deckID); err != nil {
		return nil, fmt.Errorf("finding deck: %w", err)
	}

	cards, err := s.cards.FindAllByDeckID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("listing flashcards: %w", err)
	}
	return cards, nil
}

// CreateFlashcard はユーザーが所有するデッキにカードを追加する。
func (s *FlashcardService) CreateFlashcard(ctx context.Context, userID string, card *domain.Flashcard) (*domain.Flashcard, error) {
	card.Question = strings.TrimSpace(card.Question)
	card.Answer = strings.TrimSpace(card.Answer)
	card.Hint = strings.TrimSpace(card.Hint)
	if card.Question == "" || card.Answer == "" {
		return nil, fmt.Errorf("%w: question and answer are required", domain.ErrValidation)
	}
	if _, err := s.decks.FindByID(ctx, userID, card.DeckID); err != nil {
		return nil, fmt.Errorf("finding deck: %w", err)
	}

	if err := s.cards.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("creating flashcard: %w", err)
	}
	return card, nil
}

// GetFlashcard はユーザーが所有するカードを返す。
func (s *FlashcardService) GetFlashcard(ctx context.Context, userID, id string) (*domain.Flashcard, error) {
	card, err := s.cards.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("finding flashcard: %w", err)
	}
	return card, nil
}

// UpdateFlashcard はカードを部分更新する。
func (s *FlashcardService) UpdateFlashcard(ctx context.Context, userID, id string, patch FlashcardPatch) (*domain.Flashcard, error) {
	card, err := s.cards.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("finding flashcard: %w", err)
	}

	if patch.Question != nil {
		card.Question = strings.TrimSpace(*patch.Question)
	}
	if patch.Answer != nil {
		card.Answer = strings.TrimSpace(*patch.Answer)
	}
	if patch.Hint != nil {
		card.Hint = strings.TrimSpace(*patch.Hint)
	}
	if card.Question == "" || card.Answer == "" {
		return nil, fmt.Errorf("%w: question and answer must not be empty", domain.ErrValidation)
	}

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("updating flashcard: %w", err)
	}
	return card, nil
}

// DeleteFlashcard はユーザーが所有するカードを削除する。
func (s *FlashcardService) DeleteFlashcard(ctx context.Context, userID, id string) error {
	if _, err := s.cards.FindByIDForUser(ctx, userID, id); err != nil {
		return fmt.Errorf("finding flashcard: %w", err)
	}
	if err := s.cards.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting flashcard: %w", err)
	}
	return nil
}
