package usecase

import (
	"context"
	"fmt"
	"strings"

	"flashquiz-service/internal/domain"
)

const (
	minRating = 1
	maxRating = 5
)

// FeedbackRepository はフィードバックのデータアクセスのインターフェース。
type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) error
	FindByID(ctx context.Context, id string) (*domain.Feedback, error)
	FindAll(ctx context.Context, filter domain.FeedbackFilter) ([]*domain.Feedback, error)
	Update(ctx context.Context, fb *domain.Feedback) error
	Delete(ctx context.Context, userID, id string) error
}

// FeedbackPatch はフィードバックの部分更新。nilのフィールドは変更しない。
type FeedbackPatch struct {
	Comment *string
	Rating  *int
}

// FeedbackService はフィードバックに関するビジネスロジックを提供する。
type FeedbackService struct {
	decks    DeckRepository
	feedback FeedbackRepository
}

// NewFeedbackService は新しいFeedbackServiceを生成する。
func NewFeedbackService(decks DeckRepository, feedback FeedbackRepository) *FeedbackService {
	return &FeedbackService{decks: decks, feedback: feedback}
}

func validateRating(rating int) error {
	if rating < minRating || rating > maxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", domain.ErrValidation, minRating, maxRating)
	}
	return nil
}

// ListFeedback は条件に一致するフィードバックを返す。
func (s *FeedbackService) ListFeedback(ctx context.Context, filter domain.FeedbackFilter) ([]*domain.Feedback, error) {
	feedback, err := s.feedback.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	return feedback, nil
}

// CreateFeedback はデッキへのフィードバックを投稿する。デッキの所有者は問わない。
func (s *FeedbackService) CreateFeedback(ctx context.Context, userID, deckID, comment string, rating int) (*domain.Feedback, error) {
	if deckID == "" {
		return nil, fmt.Errorf("%w: deck is required", domain.ErrValidation)
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	exists, err := s.decks.ExistsByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("checking deck: %w", err)
	}
	if !exists {
		return nil, domain.ErrDeckNotFound
	}

	fb := &domain.Feedback{
		UserID:  userID,
		DeckID:  deckID,
		Comment: strings.TrimSpace(comment),
		Rating:  rating,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("creating feedback: %w", err)
	}
	return fb, nil
}

// GetFeedback はIDでフィードバックを返す。
func (s *FeedbackService) GetFeedback(ctx context.Context, id string) (*domain.Feedback, error) {
	fb, err := s.feedback.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding feedback: %w", err)
	}
	return fb, nil
}

// UpdateFeedback は投稿者本人のフィードバックを部分更新する。
// 他人のフィードバックは存在しないものとして扱う。
func (s *FeedbackService) UpdateFeedback(ctx context.Context, userID, id string, patch FeedbackPatch) (*domain.Feedback, error) {
	fb, err := s.feedback.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding feedback: %w", err)
	}
	if fb.UserID != userID {
		return nil, domain.ErrFeedbackNotFound
	}

	if patch.Comment != nil {
		fb.Comment = strings.TrimSpace(*patch.Comment)
	}
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
		fb.Rating = *patch.Rating
	}

	if err := s.feedback.Update(ctx, fb); err != nil {
		return nil, fmt.Errorf("updating feedback: %w", err)
	}
	return fb, nil
}

// DeleteFeedback は投稿者本人のフィードバックを削除する。
func (s *FeedbackService) DeleteFeedback(ctx context.Context, userID, id string) error {
	if err := s.feedback.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("deleting feedback: %w", err)
	}
	return nil
}
