package api

import (
	"github.com/shun-hikari/shun-gunma/domain/entities"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// GenerateLessonRequest asks for new lesson content
type GenerateLessonRequest struct {
	Kind  entities.LessonKind `json:"kind"`
	Topic string              `json:"topic"`
	Level entities.Level      `json:"level"`
}

// CheckQuizRequest submits quiz answers for grading. The lesson lives
// client-side, so the questions ride along with the submission.
type CheckQuizRequest struct {
	Questions []entities.Question `json:"questions"`
	Answers   []int               `json:"answers"`
}

// VoicesResponse lists the ranked voices for a language
type VoicesResponse struct {
	Language string               `json:"language"`
	Voices   []repositories.Voice `json:"voices"`
}

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
