package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/shun-hikari/shun-gunma/domain/entities"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// stubGenerator returns a canned lesson and records the request it saw
type stubGenerator struct {
	lesson  *entities.Lesson
	err     error
	lastReq repositories.LessonRequest
}

func (s *stubGenerator) GenerateLesson(ctx context.Context, req repositories.LessonRequest) (*entities.Lesson, error) {
	s.lastReq = req
	return s.lesson, s.err
}

func TestLessonServiceGenerate(t *testing.T) {
	lesson := entities.NewLesson(entities.LessonKindReading, "travel", entities.LevelBeginner)
	lesson.Passage = "A short passage."
	gen := &stubGenerator{lesson: lesson}
	service := NewLessonService(gen, zaptest.NewLogger(t))

	got, err := service.Generate(context.Background(), repositories.LessonRequest{
		Kind:  entities.LessonKindReading,
		Topic: "travel",
		Level: entities.LevelBeginner,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got.ID != lesson.ID {
		t.Errorf("Expected the generated lesson back, got %s", got.ID)
	}
}

func TestLessonServiceDefaultsLevel(t *testing.T) {
	gen := &stubGenerator{lesson: entities.NewLesson(entities.LessonKindToeic, "", "")}
	service := NewLessonService(gen, zaptest.NewLogger(t))

	_, err := service.Generate(context.Background(), repositories.LessonRequest{Kind: entities.LessonKindToeic})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gen.lastReq.Level != entities.LevelIntermediate {
		t.Errorf("Expected level defaulted to intermediate, got %q", gen.lastReq.Level)
	}
}

func TestLessonServiceRejectsBadRequest(t *testing.T) {
	service := NewLessonService(&stubGenerator{}, zaptest.NewLogger(t))

	if _, err := service.Generate(context.Background(), repositories.LessonRequest{Kind: "podcast"}); err == nil {
		t.Error("Expected unsupported kind to fail")
	}
	if _, err := service.Generate(context.Background(), repositories.LessonRequest{
		Kind:  entities.LessonKindReading,
		Level: "expert",
	}); err == nil {
		t.Error("Expected unsupported level to fail")
	}
}

func TestLessonServicePropagatesProviderError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	service := NewLessonService(&stubGenerator{err: wantErr}, zaptest.NewLogger(t))

	_, err := service.Generate(context.Background(), repositories.LessonRequest{Kind: entities.LessonKindDialogue})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected provider error, got %v", err)
	}
}
