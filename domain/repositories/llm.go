package repositories

import (
	"context"

	"github.com/shun-hikari/shun-gunma/domain/entities"
)

// LessonGenerator abstracts any generative content provider
type LessonGenerator interface {
	// GenerateLesson produces structured lesson content for the request
	GenerateLesson(ctx context.Context, req LessonRequest) (*entities.Lesson, error)
}

// LessonRequest describes the lesson content to generate
type LessonRequest struct {
	Kind  entities.LessonKind `json:"kind"`
	Topic string              `json:"topic"`
	Level entities.Level      `json:"level"`
}
