package usecase

import (
	"context"
	"fmt"

	"flashquiz-service/internal/domain"
)

// mockDeckRepository はテスト用のモックリポジトリ。
type mockDeckRepository struct {
	decks     map[string]*domain.Deck
	createErr error
	updated   []*domain.Deck
	deleted   []string
}

func newMockDeckRepository(decks ...*domain.Deck) *mockDeckRepository {
	m := &mockDeckRepository{decks: make(map[string]*domain.Deck)}
	for _, d := range decks {
		m.decks[d.ID] = d
	}
	return m
}

func (m *mockDeckRepository) Create(ctx context.Context, deck *domain.Deck) error {
	if m.createErr != nil {
		return m.createErr
	}
	deck.ID = fmt.Sprintf("deck-%d", len(m.decks)+1)
	m.decks[deck.ID] = deck
	return nil
}

func (m *mockDeckRepository) FindByID(ctx context.Context, userID, id string) (*domain.Deck, error) {
	d, ok := m.decks[id]
	if !ok || d.UserID != userID {
		return nil, domain.ErrDeckNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockDeckRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := m.decks[id]
	return ok, nil
}

func (m *mockDeckRepository) FindAllByUserID(ctx context.Context, userID string) ([]*domain.Deck, error) {
	var result []*domain.Deck
	for _, d := range m.decks {
		if d.UserID == userID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDeckRepository) Update(ctx context.Context, deck *domain.Deck) error {
	m.updated = append(m.updated, deck)
	m.decks[deck.ID] = deck
	return nil
}

func (m *mockDeckRepository) Delete(ctx context.Context, userID, id string) error {
	d, ok := m.decks[id]
	if !ok || d.UserID != userID {
		return domain.ErrDeckNotFound
	}
	delete(m.decks, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// mockFlashcardRepository はテスト用のモックリポジトリ。
type mockFlashcardRepository struct {
	decks   *mockDeckRepository
	cards   map[string]*domain.Flashcard
	deleted []string
}

func newMockFlashcardRepository(decks *mockDeckRepository, cards ...*domain.Flashcard) *mockFlashcardRepository {
	m := &mockFlashcardRepository{decks: decks, cards: make(map[string]*domain.Flashcard)}
	for _, c := range cards {
		m.cards[c.ID] = c
	}
	return m
}

func (m *mockFlashcardRepository) Create(ctx context.Context, card *domain.Flashcard) error {
	card.ID = fmt.Sprintf("card-%d", len(m.cards)+1)
	m.cards[card.ID] = card
	return nil
}

func (m *mockFlashcardRepository) FindAllByDeckID(ctx context.Context, deckID string) ([]*domain.Flashcard, error) {
	var result []*domain.Flashcard
	for _, c := range m.cards {
		if c.DeckID == deckID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockFlashcardRepository) FindByIDForUser(ctx context.Context, userID, id string) (*domain.Flashcard, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, domain.ErrFlashcardNotFound
	}
	if _, err := m.decks.FindByID(ctx, userID, c.DeckID); err != nil {
		return nil, domain.ErrFlashcardNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockFlashcardRepository) Update(ctx context.Context, card *domain.Flashcard) error {
	m.cards[card.ID] = card
	return nil
}

func (m *mockFlashcardRepository) Delete(ctx context.Context, id string) error {
	delete(m.cards, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// mockFeedbackRepository はテスト用のモックリポジトリ。
type mockFeedbackRepository struct {
	feedback  map[string]*domain.Feedback
	gotFilter domain.FeedbackFilter
}

func newMockFeedbackRepository(feedback ...*domain.Feedback) *mockFeedbackRepository {
	m := &mockFeedbackRepository{feedback: make(map[string]*domain.Feedback)}
	for _, fb := range feedback {
		m.feedback[fb.ID] = fb
	}
	return m
}

func (m *mockFeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	fb.ID = fmt.Sprintf("fb-%d", len(m.feedback)+1)
	m.feedback[fb.ID] = fb
	return nil
}

func (m *mockFeedbackRepository) FindByID(ctx context.Context, id string) (*domain.Feedback, error) {
	fb, ok := m.feedback[id]
	if !ok {
		return nil, domain.ErrFeedbackNotFound
	}
	copied := *fb
	return &copied, nil
}

func (m *mockFeedbackRepository) FindAll(ctx context.Context, filter domain.FeedbackFilter) ([]*domain.Feedback, error) {
	m.gotFilter = filter
	var result []*domain.Feedback
	for _, fb := range m.feedback {
		result = append(result, fb)
	}
	return result, nil
}

func (m *mockFeedbackRepository) Update(ctx context.Context, fb *domain.Feedback) error {
	m.feedback[fb.ID] = fb
	return nil
}

func (m *mockFeedbackRepository) Delete(ctx context.Context, userID, id string) error {
	fb, ok := m.feedback[id]
	if !ok || fb.UserID != userID {
		return domain.ErrFeedbackNotFound
	}
	delete(m.feedback, id)
	return nil
}
