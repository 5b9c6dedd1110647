package repository

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"flashquiz-service/internal/domain"
)

// FeedbackRepository はフィードバックのデータアクセスを提供する。
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository は新しいFeedbackRepositoryを生成する。
func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create はフィードバックを作成する。
func (r *FeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	model := &FeedbackModel{
		UserID:  fb.UserID,
		DeckID:  fb.DeckID,
		Comment: fb.Comment,
		Rating:  fb.Rating,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create feedback",
			"operation", "create_feedback",
			"deck_id", fb.DeckID,
			"error", err,
		)
		return err
	}
	*fb = *model.toDomain()
	return nil
}

// FindByID はIDでフィードバックを取得する。
func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*domain.Feedback, error) {
	var model FeedbackModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFeedbackNotFound
		}
		slog.ErrorContext(ctx, "failed to find feedback",
			"operation", "find_feedback_by_id",
			"feedback_id", id,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// FindAll は条件に一致するフィードバックを新しい順に取得する。
func (r *FeedbackRepository) FindAll(ctx context.Context, filter domain.FeedbackFilter) ([]*domain.Feedback, error) {
	q := r.db.WithContext(ctx).Model(&FeedbackModel{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.DeckID != "" {
		q = q.Where("deck_id = ?", filter.DeckID)
	}

	var models []FeedbackModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to list feedback",
			"operation", "find_all_feedback",
			"user_id", filter.UserID,
			"deck_id", filter.DeckID,
			"error", err,
		)
		return nil, err
	}

	feedback := make([]*domain.Feedback, len(models))
	for i := range models {
		feedback[i] = models[i].toDomain()
	}
	return feedback, nil
}

// Update は投稿者本人のフィードバックを更新する。
func (r *FeedbackRepository) Update(ctx context.Context, fb *domain.Feedback) error {
	result := r.db.WithContext(ctx).
		Model(&FeedbackModel{}).
		Where("id = ? AND user_id = ?", fb.ID, fb.UserID).
		Updates(map[string]interface{}{
			"comment": fb.Comment,
			"rating":  fb.Rating,
		})
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to update feedback",
			"operation", "update_feedback",
			"feedback_id", fb.ID,
			"error", result.Error,
		)
		return result.Error
	}
	return nil
}

// Delete は投稿者本人のフィードバックを削除する。
func (r *FeedbackRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&FeedbackModel{})
	if result.Error != nil {
		slog.ErrorContext(ctx, "failed to delete feedback",
			"operation", "delete_feedback",
			"feedback_id", id,
			"error", result.Error,
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrFeedbackNotFound
	}
	return nil
}
