package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"flashquiz-service/internal/domain"
)

// DeckRepository はデッキのデータアクセスを提供する。
type DeckRepository struct {
	db *gorm.DB
}

// NewDeckRepository は新しいDeckRepositoryを生成する。
func NewDeckRepository(db *gorm.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

// Create はデッキを作成する。同じユーザーに同名のデッキがあればErrDeckAlreadyExistsを返す。
func (r *DeckRepository) Create(ctx context.Context, deck *domain.Deck) error {
	model := &DeckModel{
		UserID:      deck.UserID,
		Title:       deck.Title,
		Description: deck.Description,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := titleTaken(tx, deck.UserID, deck.Title, "")
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDeckAlreadyExists
		}
		return tx.Create(model).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrDeckAlreadyExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDeckAlreadyExists
		}
		slog.ErrorContext(ctx, "failed to create deck",
			"operation", "create_deck",
			"user_id", deck.UserID,
			"error", err,
		)
		return err
	}

	*deck = *model.toDomain()
	return nil
}

// FindByID は所有者のデッキを取得する。他人のデッキはErrDeckNotFoundとなる。
func (r *DeckRepository) FindByID(ctx context.Context, userID, id string) (*domain.Deck, error) {
	var model DeckModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDeckNotFound
		}
		slog.ErrorContext(ctx, "failed to find deck",
			"operation", "find_deck_by_id",
			"deck_id", id,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// ExistsByID は所有者を問わずデッキが存在するか確認する。
func (r *DeckRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&DeckModel{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to count decks by id",
			"operation", "exists_deck_by_id",
			"deck_id", id,
			"error", err,
		)
		return false, err
	}
	return count > 0, nil
}

// FindAllByUserID はユーザーのデッキを作成日時順に取得する。
func (r *DeckRepository) FindAllByUserID(ctx context.Context, userID string) ([]*domain.Deck, error) {
	var models []DeckModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find decks by user_id",
			"operation", "find_all_decks",
			"user_id", userID,
			"error", err,
		)
		return nil, err
	}

	decks := make([]*domain.Deck, len(models))
	for i := range models {
		decks[i] = models[i].toDomain()
	}
	return decks, nil
}

// Update はデッキのタイトルと説明を更新する。存在と所有の確認は呼び出し側で行う。
func (r *DeckRepository) Update(ctx context.Context, deck *domain.Deck) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := titleTaken(tx, deck.UserID, deck.Title, deck.ID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDeckAlreadyExists
		}

		result := tx.Model(&DeckModel{}).
			Where("id = ? AND user_id = ?", deck.ID, deck.UserID).
			Updates(map[string]interface{}{
				"title":       deck.Title,
				"description": deck.Description,
			})
		return result.Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrDeckAlreadyExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDeckAlreadyExists
		}
		slog.ErrorContext(ctx, "failed to update deck",
			"operation", "update_deck",
			"deck_id", deck.ID,
			"error", err,
		)
		return err
	}
	return nil
}

// Delete はデッキと、それに属するカード・フィードバックを削除する。
func (r *DeckRepository) Delete(ctx context.Context, userID, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&DeckModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrDeckNotFound
		}
		if err := tx.Where("deck_id = ?", id).Delete(&FlashcardModel{}).Error; err != nil {
			return err
		}
		return tx.Where("deck_id = ?", id).Delete(&FeedbackModel{}).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrDeckNotFound) {
			return err
		}
		slog.ErrorContext(ctx, "failed to delete deck",
			"operation", "delete_deck",
			"deck_id", id,
			"error", err,
		)
		return err
	}
	return nil
}

// SaveGeneratedDeck は(userID, title)のデッキを取得または作成し、カードを追加する。
// 説明は新規作成時のみ設定し、既存デッキの説明は上書きしない。
// すべての書き込みは1つのトランザクションで行う。
func (r *DeckRepository) SaveGeneratedDeck(ctx context.Context, userID, title, description string, drafts []domain.FlashcardDraft) (*domain.Deck, []*domain.Flashcard, bool, error) {
	var (
		deck    DeckModel
		cards   []FlashcardModel
		created bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := DeckModel{UserID: userID, Title: title, Description: description}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate)
		if result.Error != nil {
			return fmt.Errorf("insert deck: %w", result.Error)
		}
		created = result.RowsAffected == 1

		if err := tx.Where("user_id = ? AND title = ?", userID, title).First(&deck).Error; err != nil {
			return fmt.Errorf("reload deck: %w", err)
		}

		cards = make([]FlashcardModel, len(drafts))
		for i, d := range drafts {
			cards[i] = FlashcardModel{
				DeckID:   deck.ID,
				Question: d.Question,
				Answer:   d.Answer,
				Hint:     d.Hint,
			}
		}
		if len(cards) > 0 {
			if err := tx.Create(&cards).Error; err != nil {
				return fmt.Errorf("insert flashcards: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to save generated deck",
			"operation", "save_generated_deck",
			"user_id", userID,
			"title", title,
			"error", err,
		)
		return nil, nil, false, err
	}

	flashcards := make([]*domain.Flashcard, len(cards))
	for i := range cards {
		flashcards[i] = cards[i].toDomain()
	}
	return deck.toDomain(), flashcards, created, nil
}

// titleTaken はユーザーが同名のデッキを既に持っているか確認する。excludeIDのデッキは除く。
func titleTaken(tx *gorm.DB, userID, title, excludeID string) (bool, error) {
	q := tx.Model(&DeckModel{}).Where("user_id = ? AND title = ?", userID, title)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
