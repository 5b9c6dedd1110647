package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"flashquiz-service/internal/domain"
)

// mockContentSource はテスト用のContentSource。
type mockContentSource struct {
	summaries map[string]string
	calls     int
}

func (m *mockContentSource) FetchSummary(ctx context.Context, topic string) (string, error) {
	m.calls++
	summary, ok := m.summaries[topic]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrSourceNotFound, topic)
	}
	return summary, nil
}

// mockGenerator はテスト用のFlashcardGenerator。
type mockGenerator struct {
	output  string
	err     error
	prompts []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

// memoryDeckStore は(userID, title)をキーに取得または作成するテスト用ストア。
type memoryDeckStore struct {
	decks map[string]*domain.Deck
	cards map[string][]*domain.Flashcard
	saves int
	err   error
}

func newMemoryDeckStore() *memoryDeckStore {
	return &memoryDeckStore{
		decks: make(map[string]*domain.Deck),
		cards: make(map[string][]*domain.Flashcard),
	}
}

func (m *memoryDeckStore) SaveGeneratedDeck(ctx context.Context, userID, title, description string, drafts []domain.FlashcardDraft) (*domain.Deck, []*domain.Flashcard, bool, error) {
	m.saves++
	if m.err != nil {
		return nil, nil, false, m.err
	}

	key := userID + "/" + title
	deck, ok := m.decks[key]
	if !ok {
		deck = &domain.Deck{ID: fmt.Sprintf("deck-%d", len(m.decks)+1), UserID: userID, Title: title, Description: description}
		m.decks[key] = deck
	}

	var saved []*domain.Flashcard
	for _, d := range drafts {
		card := &domain.Flashcard{
			ID:       fmt.Sprintf("card-%d", len(m.cards[deck.ID])+1),
			DeckID:   deck.ID,
			Question: d.Question,
			Answer:   d.Answer,
			Hint:     d.Hint,
		}
		m.cards[deck.ID] = append(m.cards[deck.ID], card)
		saved = append(saved, card)
	}
	return deck, saved, !ok, nil
}

func (m *memoryDeckStore) totalCards() int {
	n := 0
	for _, cards := range m.cards {
		n += len(cards)
	}
	return n
}

var testPrincipal = domain.Principal{ID: "user_abc123", Username: "mario"}

func newTestGenerationService() (*GenerationService, *mockContentSource, *mockGenerator, *memoryDeckStore, map[string]int) {
	// Dwayne Johnsonには要約がない
	source := &mockContentSource{summaries: map[string]string{"Rome": "Capital city of Italy"}}
	gen := &mockGenerator{output: fiveCards}
	store := newMemoryDeckStore()
	outcomes := make(map[string]int)
	service := NewGenerationService(source, gen, store, func(outcome string) { outcomes[outcome]++ })
	return service, source, gen, store, outcomes
}

func TestGenerationService_Generate(t *testing.T) {
	service, _, gen, _, outcomes := newTestGenerationService()

	result, err := service.Generate(context.Background(), testPrincipal, "  Rome ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.DeckCreated {
		t.Error("want new deck")
	}
	if result.Deck.Title != "Rome" || result.Deck.UserID != "user_abc123" {
		t.Errorf("unexpected deck %+v", result.Deck)
	}
	if result.Deck.Description != "Capital city of Italy" {
		t.Errorf("want summary as description, got %q", result.Deck.Description)
	}
	if len(result.Flashcards) != 5 {
		t.Errorf("want 5 flashcards, got %d", len(result.Flashcards))
	}
	if outcomes["success"] != 1 {
		t.Errorf("want success recorded, got %v", outcomes)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{"exactly 5 flashcards", "Article title: Rome", "Article summary: Capital city of Italy", "must not exceed 50 characters"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerationService_Generate_SameTopicTwice(t *testing.T) {
	service, source, _, store, _ := newTestGenerationService()

	first, err := service.Generate(context.Background(), testPrincipal, "Rome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	source.summaries["Rome"] = "A changed summary"
	second, err := service.Generate(context.Background(), testPrincipal, "Rome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.DeckCreated {
		t.Error("want existing deck reused")
	}
	if first.Deck.ID != second.Deck.ID {
		t.Errorf("want one deck, got %s and %s", first.Deck.ID, second.Deck.ID)
	}
	if len(store.decks) != 1 {
		t.Errorf("want exactly 1 deck, got %d", len(store.decks))
	}
	if second.Deck.Description != "Capital city of Italy" {
		t.Errorf("want description from first call, got %q", second.Deck.Description)
	}
	if got := store.totalCards(); got != 10 {
		t.Errorf("want 10 flashcards, got %d", got)
	}
}

func TestGenerationService_Generate_SourceNotFound(t *testing.T) {
	service, _, gen, store, outcomes := newTestGenerationService()

	_, err := service.Generate(context.Background(), testPrincipal, "Dwayne Johnson")
	if !errors.Is(err, domain.ErrSourceNotFound) {
		t.Errorf("want ErrSourceNotFound, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Error("generator must not be called without a summary")
	}
	if store.saves != 0 {
		t.Error("nothing must be written")
	}
	if outcomes["source_not_found"] != 1 {
		t.Errorf("want source_not_found recorded, got %v", outcomes)
	}
}

func TestGenerationService_Generate_EmptyTopic(t *testing.T) {
	service, source, _, _, _ := newTestGenerationService()

	for _, topic := range []string{"", "   "} {
		if _, err := service.Generate(context.Background(), testPrincipal, topic); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("topic %q: want ErrValidation, got %v", topic, err)
		}
	}
	if source.calls != 0 {
		t.Error("content source must not be called for an empty topic")
	}
}

func TestGenerationService_Generate_UnusableOutput(t *testing.T) {
	for _, output := range []string{"not json", "[]", `["a", "b"]`} {
		service, _, gen, store, _ := newTestGenerationService()
		gen.output = output

		_, err := service.Generate(context.Background(), testPrincipal, "Rome")
		if !errors.Is(err, domain.ErrGenerationFailed) {
			t.Errorf("output %q: want ErrGenerationFailed, got %v", output, err)
		}
		if store.saves != 0 {
			t.Errorf("output %q: nothing must be written", output)
		}
	}
}

func TestGenerationService_Generate_ProviderError(t *testing.T) {
	service, _, gen, store, _ := newTestGenerationService()
	gen.err = fmt.Errorf("%w: status 500", domain.ErrGenerationFailed)

	if _, err := service.Generate(context.Background(), testPrincipal, "Rome"); !errors.Is(err, domain.ErrGenerationFailed) {
		t.Errorf("want ErrGenerationFailed, got %v", err)
	}
	if store.saves != 0 {
		t.Error("nothing must be written")
	}
}

func TestGenerationService_Generate_StoreError(t *testing.T) {
	service, _, _, store, _ := newTestGenerationService()
	boom := errors.New("db down")
	store.err = boom

	if _, err := service.Generate(context.Background(), testPrincipal, "Rome"); !errors.Is(err, boom) {
		t.Errorf("want wrapped store error, got %v", err)
	}
}
