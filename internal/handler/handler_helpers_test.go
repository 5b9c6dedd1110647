package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flashquiz-service/internal/domain"
	"flashquiz-service/internal/middleware"
	"flashquiz-service/internal/usecase"
)

// stubVerifier は"token-<user>"形式のトークンを受け入れるTokenVerifier。
type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string) (*domain.VerifiedClaims, error) {
	user, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, domain.ErrAuthBadSignature
	}
	return &domain.VerifiedClaims{Subject: user}, nil
}

// stubIdentity はsubjectをそのままPrincipalにするIdentityResolver。
type stubIdentity struct{}

func (stubIdentity) Resolve(ctx context.Context, subject string) (*domain.Principal, error) {
	return &domain.Principal{ID: subject}, nil
}

// mockDeckRepository はテスト用のモックリポジトリ。
type mockDeckRepository struct {
	decks map[string]*domain.Deck
	seq   int
}

func (m *mockDeckRepository) Create(ctx context.Context, deck *domain.Deck) error {
	for _, d := range m.decks {
		if d.UserID == deck.UserID && d.Title == deck.Title {
			return domain.ErrDeckAlreadyExists
		}
	}
	m.seq++
	deck.ID = fmt.Sprintf("deck-%d", m.seq)
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
	m.decks[deck.ID] = deck
	return nil
}

func (m *mockDeckRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := m.FindByID(ctx, userID, id); err != nil {
		return err
	}
	delete(m.decks, id)
	return nil
}

// SaveGeneratedDeck は(userID, title)で取得または作成し、カードを追加する。
func (m *mockDeckRepository) SaveGeneratedDeck(ctx context.Context, userID, title, description string, drafts []domain.FlashcardDraft) (*domain.Deck, []*domain.Flashcard, bool, error) {
	var deck *domain.Deck
	for _, d := range m.decks {
		if d.UserID == userID && d.Title == title {
			deck = d
		}
	}
	created := deck == nil
	if created {
		deck = &domain.Deck{UserID: userID, Title: title, Description: description}
		if err := m.Create(ctx, deck); err != nil {
			return nil, nil, false, err
		}
	}
	cards := make([]*domain.Flashcard, len(drafts))
	for i, d := range drafts {
		cards[i] = &domain.Flashcard{ID: fmt.Sprintf("%s-card-%d", deck.ID, i+1), DeckID: deck.ID, Question: d.Question, Answer: d.Answer, Hint: d.Hint}
	}
	return deck, cards, created, nil
}

// mockFlashcardRepository はテスト用のモックリポジトリ。
type mockFlashcardRepository struct {
	decks *mockDeckRepository
	cards map[string]*domain.Flashcard
	seq   int
}

func (m *mockFlashcardRepository) Create(ctx context.Context, card *domain.Flashcard) error {
	m.seq++
	card.ID = fmt.Sprintf("card-%d", m.seq)
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
	return nil
}

// mockFeedbackRepository はテスト用のモックリポジトリ。
type mockFeedbackRepository struct {
	feedback map[string]*domain.Feedback
	seq      int
}

func (m *mockFeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	m.seq++
	fb.ID = fmt.Sprintf("fb-%d", m.seq)
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
	var result []*domain.Feedback
	for _, fb := range m.feedback {
		if filter.UserID != "" && fb.UserID != filter.UserID {
			continue
		}
		if filter.DeckID != "" && fb.DeckID != filter.DeckID {
			continue
		}
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

// stubSource はトピックごとの要約を返すContentSource。
type stubSource map[string]string

func (s stubSource) FetchSummary(ctx context.Context, topic string) (string, error) {
	summary, ok := s[topic]
	if !ok {
		return "", domain.ErrSourceNotFound
	}
	return summary, nil
}

// stubGenerator は固定の出力を返すFlashcardGenerator。
type stubGenerator struct{ output string }

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.output, nil
}

const generatedCards = `[
  {"question":"Capital of Italy?","answer":"Rome","hint":"Seven hills"},
  {"question":"River?","answer":"Tiber","hint":"Flows through"}
]`

type testServer struct {
	handler   http.Handler
	decks     *mockDeckRepository
	cards     *mockFlashcardRepository
	feedback  *mockFeedbackRepository
	generator *stubGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	decks := &mockDeckRepository{decks: make(map[string]*domain.Deck)}
	cards := &mockFlashcardRepository{decks: decks, cards: make(map[string]*domain.Flashcard)}
	feedback := &mockFeedbackRepository{feedback: make(map[string]*domain.Feedback)}
	generator := &stubGenerator{output: generatedCards}

	gate := middleware.NewAuthGate(stubVerifier{}, stubIdentity{})
	h := Handlers{
		Decks:      NewDeckHandler(usecase.NewDeckService(decks)),
		Flashcards: NewFlashcardHandler(usecase.NewFlashcardService(decks, cards)),
		Feedback:   NewFeedbackHandler(usecase.NewFeedbackService(decks, feedback)),
		Generate:   NewGenerateHandler(usecase.NewGenerationService(stubSource{"Rome": "Capital city of Italy"}, generator, decks, nil)),
	}

	return &testServer{
		handler:   NewRouter(gate, h, nil),
		decks:     decks,
		cards:     cards,
		feedback:  feedback,
		generator: generator,
	}
}

// do はuserとして認証したリクエストを送る。userが空なら認証ヘッダーを付けない。
func (s *testServer) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("Authorization", "Bearer token-"+user)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &resp)
	return resp.Code
}
