package repository

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"flashquiz-service/internal/domain"
)

// FlashcardRepository はカードのデータアクセスを提供する。
// カードの所有者は属するデッキの所有者とする。
type FlashcardRepository struct {
	db *gorm.DB
}

// NewFlashcardRepository は新しいFlashcardRepositoryを生成する。
func NewFlashcardRepository(db *gorm.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// Create はカードを作成する。
func (r *FlashcardRepository) Create(ctx context.Context, card *domain.Flashcard) error {
	model := &FlashcardModel{
		DeckID:   card.DeckID,
		Question: card.Question,
		Answer:   card.Answer,
		Hint:     card.Hint,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create flashcard",
			"operation", "create_flashcard",
			"deck_id", card.DeckID,
			"error", err,
		)
		return err
	}
	*card = *model.toDomain()
	return nil
}

// FindAllByDeckID はデッキのカードを作成順に取得する。
func (r *FlashcardRepository) FindAllByDeckID(ctx context.Context, deckID string) ([]*domain.Flashcard, error) {
	var models []FlashcardModel
	err := r.db.WithContext(ctx).
		Where("deck_id = ?", deckID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find flashcards by deck_id",
			"operation", "find_all_flashcards",
			"deck_id", deckID,
			"error", err,
		)
		return nil, err
	}

	cards := make([]*domain.Flashcard, len(models))
	for i := range models {
		cards[i] = models[i].toDomain()
	}
	return cards, nil
}

// FindByIDForUser はユーザーが所有するデッキに属するカードを取得する。
func (r *FlashcardRepository) FindByIDForUser(ctx context.Context, userID, id string) (*domain.Flashcard, error) {
	var model FlashcardModel
	err := r.db.WithContext(ctx).
		Joins("JOIN decks ON decks.id = flashcards.deck_id").
		Where("flashcards.id = ? AND decks.user_id = ?", id, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFlashcardNotFound
		}
		slog.ErrorContext(ctx, "failed to find flashcard",
			"operation", "find_flashcard_by_id",
			"flashcard_id", id,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// Update はカードの内容を更新する。存在と所有の確認は呼び出し側で行う。
func (r *FlashcardRepository) Update(ctx context.Context, card *domain.Flashcard) error {
	result := r.db.WithContext(ctx).
		Model(&FlashcardModel{}).
		Where("id = ?", card.ID).
		Updates(map[string]interface{}{
			"question": card.Question,
			"answer":   card.Answer,
			"hint":     card.Hint,
		})
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to update flashcard",
			"operation", "update_flashcard",
			"flashcard_id", card.ID,
			"error", result.Error,
		)
		return result.Error
	}
	return nil
}

// Delete はカードを削除する。
func (r *FlashcardRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&FlashcardModel{})
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to delete flashcard",
			"operation", "delete_flashcard",
			"flashcard_id", id,
			"error", result.Error,
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrFlashcardNotFound
	}
	return nil
}
