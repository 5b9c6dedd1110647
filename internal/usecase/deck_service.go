package usecase

import (
	"context"
	"fmt"
	"strings"

	"flashquiz-service/internal/domain"
)

// DeckRepository はデッキのデータアクセスのインターフェース。
type DeckRepository interface {
	Create(ctx context.Context, deck *domain.Deck) error
	FindByID(ctx context.Context, userID, id string) (*domain.Deck, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	FindAllByUserID(ctx context.Context, userID string) ([]*domain.Deck, error)
	Update(ctx context.Context, deck *domain.Deck) error
	Delete(ctx context.Context, userID, id string) error
}

// DeckPatch はデッキの部分更新。nilのフィールドは変更しない。
type DeckPatch struct {
	Title       *string
	Description *string
}

// DeckService はデッキに関するビジネスロジックを提供する。
type DeckService struct {
	repo DeckRepository
}

// NewDeckService は新しいDeckServiceを生成する。
func NewDeckService(repo DeckRepository) *DeckService {
	return &DeckService{repo: repo}
}

// ListDecks はユーザーのデッキ一覧を返す。
func (s *DeckService) ListDecks(ctx context.Context, userID string) ([]*domain.Deck, error) {
	decks, err := s.repo.FindAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}
	return decks, nil
}

// CreateDeck はデッキを作成する。
func (s *DeckService) CreateDeck(ctx context.Context, userID, title, description string) (*domain.Deck, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	deck := &domain.Deck{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
	}
	if err := s.repo.Create(ctx, deck); err != nil {
		return nil, fmt.Errorf("creating deck: %w", err)
	}
	return deck, nil
}

// GetDeck はユーザーが所有するデッキを返す。
func (s *DeckService) GetDeck(ctx context.Context, userID, id string) (*domain.Deck, error) {
	deck, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("finding deck: %w", err)
	}
	return deck, nil
}

// UpdateDeck はデッキを部分更新する。
func (s *DeckService) UpdateDeck(ctx context.Context, userID, id string, patch DeckPatch) (*domain.Deck, error) {
	deck, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("finding deck: %w", err)
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
		}
		deck.Title = title
	}
	if patch.Description != nil {
		deck.Description = strings.TrimSpace(*patch.Description)
	}

	if err := s.repo.Update(ctx, deck); err != nil {
		return nil, fmt.Errorf("updating deck: %w", err)
	}
	return deck, nil
}

// DeleteDeck はデッキと、それに属するカード・フィードバックを削除する。
func (s *DeckService) DeleteDeck(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("deleting deck: %w", err)
	}
	return nil
}
