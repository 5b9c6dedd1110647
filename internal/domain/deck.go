// Package domain はドメインモデルとビジネスルールを定義する。
package domain

import "time"

// Deck はユーザーが所有するフラッシュカードのデッキを表す。
// (UserID, Title) が自然キーとなる。
type Deck struct {
	ID          string
	UserID      string
	Title       string
	Description string
	CreatedAt   time.Time
}

// Flashcard はデッキに属する1枚のカードを表す。
type Flashcard struct {
	ID       string
	DeckID   string
	Question string
	Answer   string
	Hint     string
}

// Feedback はデッキに対するユーザーの評価を表す。
type Feedback struct {
	ID        string
	UserID    string
	DeckID    string
	Comment   string
	Rating    int
	CreatedAt time.Time
}

// FeedbackFilter はフィードバック一覧の絞り込み条件。空文字は条件なしを表す。
type FeedbackFilter struct {
	UserID string
	DeckID string
}

// FlashcardDraft はモデル出力から解析された、未保存のカード候補。
type FlashcardDraft struct {
	Question string
	Answer   string
	Hint     string
}

// GenerationResult はトピックからのデッキ生成結果を表す。
type GenerationResult struct {
	Deck        *Deck
	DeckCreated bool
	Flashcards  []*Flashcard
}
