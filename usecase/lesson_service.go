package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shun-hikari/shun-gunma/domain/entities"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// LessonService generates lesson content through the configured provider
type LessonService struct {
	generator repositories.LessonGenerator
	logger    *zap.Logger
}

// NewLessonService creates a new lesson service
func NewLessonService(generator repositories.LessonGenerator, logger *zap.Logger) *LessonService {
	return &LessonService{
		generator: generator,
		logger:    logger,
	}
}

// Generate requests lesson content for the given kind, topic and level
func (s *LessonService) Generate(ctx context.Context, req repositories.LessonRequest) (*entities.Lesson, error) {
	switch req.Kind {
	case entities.LessonKindReading, entities.LessonKindDialogue, entities.LessonKindToeic:
	default:
		return nil, fmt.Errorf("unsupported lesson kind: %q", req.Kind)
	}

	switch req.Level {
	case entities.LevelBeginner, entities.LevelIntermediate, entities.LevelAdvanced:
	case "":
		req.Level = entities.LevelIntermediate
	default:
		return nil, fmt.Errorf("unsupported level: %q", req.Level)
	}

	started := time.Now()
	lesson, err := s.generator.GenerateLesson(ctx, req)
	if err != nil {
		s.logger.Error("Lesson generation failed",
			zap.String("kind", string(req.Kind)),
			zap.String("topic", req.Topic),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Lesson generated",
		zap.String("id", lesson.ID),
		zap.String("kind", string(lesson.Kind)),
		zap.Duration("elapsed", time.Since(started)))

	return lesson, nil
}
