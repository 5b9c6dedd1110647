// Package repository はgormによるデータアクセスを提供する。
package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"flashquiz-service/internal/domain"
)

// DeckModel はdecksテーブルのモデル。
type DeckModel struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	UserID      string    `gorm:"type:varchar(255);not null;uniqueIndex:uk_user_title;index:idx_user_id"`
	Title       string    `gorm:"type:varchar(255);not null;uniqueIndex:uk_user_title"`
	Description string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
}

// TableName はテーブル名を返す。
func (DeckModel) TableName() string {
	return "decks"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (m *DeckModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *DeckModel) toDomain() *domain.Deck {
	return &domain.Deck{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// FlashcardModel はflashcardsテーブルのモデル。
type FlashcardModel struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	DeckID    string    `gorm:"type:char(36);not null;index:idx_deck_id"`
	Question  string    `gorm:"type:text;not null"`
	Answer    string    `gorm:"type:text;not null"`
	Hint      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

// TableName はテーブル名を返す。
func (FlashcardModel) TableName() string {
	return "flashcards"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (m *FlashcardModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *FlashcardModel) toDomain() *domain.Flashcard {
	return &domain.Flashcard{
		ID:       m.ID,
		DeckID:   m.DeckID,
		Question: m.Question,
		Answer:   m.Answer,
		Hint:     m.Hint,
	}
}

// FeedbackModel はfeedbackテーブルのモデル。
type FeedbackModel struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(255);not null;index:idx_feedback_user_id"`
	DeckID    string    `gorm:"type:char(36);not null;index:idx_feedback_deck_id"`
	Comment   string    `gorm:"type:text;not null"`
	Rating    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

// TableName はテーブル名を返す。
func (FeedbackModel) TableName() string {
	return "feedback"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (m *FeedbackModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *FeedbackModel) toDomain() *domain.Feedback {
	return &domain.Feedback{
		ID:        m.ID,
		UserID:    m.UserID,
		DeckID:    m.DeckID,
		Comment:   m.Comment,
		Rating:    m.Rating,
		CreatedAt: m.CreatedAt,
	}
}
