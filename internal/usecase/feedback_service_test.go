package usecase

import (
	"context"
	"errors"
	"testing"

	"flashquiz-service/internal/domain"
)

func newTestFeedbackService() (*FeedbackService, *mockFeedbackRepository) {
	decks := newMockDeckRepository(&domain.Deck{ID: "deck-1", UserID: "owner", Title: "Rome"})
	feedback := newMockFeedbackRepository(&domain.Feedback{ID: "fb-existing", UserID: "user-1", DeckID: "deck-1", Comment: "good", Rating: 4})
	return NewFeedbackService(decks, feedback), feedback
}

func TestFeedbackService_CreateFeedback(t *testing.T) {
	service, _ := newTestFeedbackService()

	// 他人のデッキにも投稿できる
	fb, err := service.CreateFeedback(context.Background(), "user-2", "deck-1", " nice ", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.UserID != "user-2" || fb.Comment != "nice" || fb.Rating != 5 {
		t.Errorf("unexpected feedback %+v", fb)
	}

	tests := []struct {
		name   string
		deckID string
		rating int
		want   error
	}{
		{"missing deck id", "", 3, domain.ErrValidation},
		{"rating too low", "deck-1", 0, domain.ErrValidation},
		{"rating too high", "deck-1", 6, domain.ErrValidation},
		{"unknown deck", "deck-missing", 3, domain.ErrDeckNotFound},
	}
	for _, tt := range tests {
		if _, err := service.CreateFeedback(context.Background(), "user-2", tt.deckID, "", tt.rating); !errors.Is(err, tt.want) {
			t.Errorf("%s: want %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestFeedbackService_GetFeedback_IsPlainLookup(t *testing.T) {
	service, _ := newTestFeedbackService()

	fb, err := service.GetFeedback(context.Background(), "fb-existing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Comment != "good" {
		t.Errorf("unexpected feedback %+v", fb)
	}
	if _, err := service.GetFeedback(context.Background(), "fb-missing"); !errors.Is(err, domain.ErrFeedbackNotFound) {
		t.Errorf("want ErrFeedbackNotFound, got %v", err)
	}
}

func TestFeedbackService_UpdateFeedback_AuthorOnly(t *testing.T) {
	service, _ := newTestFeedbackService()
	rating := 2

	if _, err := service.UpdateFeedback(context.Background(), "user-2", "fb-existing", FeedbackPatch{Rating: &rating}); !errors.Is(err, domain.ErrFeedbackNotFound) {
		t.Errorf("want ErrFeedbackNotFound for non-author, got %v", err)
	}

	fb, err := service.UpdateFeedback(context.Background(), "user-1", "fb-existing", FeedbackPatch{Rating: &rating})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Rating != 2 || fb.Comment != "good" {
		t.Errorf("unexpected feedback %+v", fb)
	}

	bad := 9
	if _, err := service.UpdateFeedback(context.Background(), "user-1", "fb-existing", FeedbackPatch{Rating: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

func TestFeedbackService_ListAndDelete(t *testing.T) {
	service, repo := newTestFeedbackService()

	filter := domain.FeedbackFilter{UserID: "user-1", DeckID: "deck-1"}
	if _, err := service.ListFeedback(context.Background(), filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotFilter != filter {
		t.Errorf("want filter passed through, got %+v", repo.gotFilter)
	}

	if err := service.DeleteFeedback(context.Background(), "user-2", "fb-existing"); !errors.Is(err, domain.ErrFeedbackNotFound) {
		t.Errorf("want ErrFeedbackNotFound for non-author, got %v", err)
	}
	if err := service.DeleteFeedback(context.Background(), "user-1", "fb-existing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
