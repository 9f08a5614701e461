package llm

import (
	"context"

	"github.com/shun-hikari/shun-gunma/domain/entities"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// MockLessonGenerator is a placeholder generator for development and
// tests without a Gemini API key.
type MockLessonGenerator struct{}

// Ensure MockLessonGenerator implements the LessonGenerator interface
var _ repositories.LessonGenerator = (*MockLessonGenerator)(nil)

// NewMockLessonGenerator creates a new mock lesson generator
func NewMockLessonGenerator() *MockLessonGenerator {
	return &MockLessonGenerator{}
}

// GenerateLesson returns canned lesson content for the requested kind
func (m *MockLessonGenerator) GenerateLesson(ctx context.Context, req repositories.LessonRequest) (*entities.Lesson, error) {
	lesson := entities.NewLesson(req.Kind, req.Topic, req.Level)

	switch req.Kind {
	case entities.LessonKindDialogue:
		lesson.Title = "At the Airport"
		lesson.Lines = []entities.DialogueLine{
			{Speaker: "M", Text: "Excuse me, where is the check-in counter for flight 204?"},
			{Speaker: "W", Text: "It's at the far end of terminal two, next to the cafe."},
			{Speaker: "M", Text: "Thanks. Do you know if the flight is on time?"},
			{Speaker: "W", Text: "I believe it was delayed by thirty minutes."},
		}
		lesson.Vocabulary = []entities.VocabEntry{
			{Term: "check-in counter", Meaning: "the desk where you register for a flight"},
			{Term: "delayed", Meaning: "running later than scheduled"},
		}
		lesson.Questions = []entities.Question{
			{
				Prompt:      "Why might the man arrive at the gate later than planned?",
				Choices:     []string{"The flight is delayed", "The terminal is closed", "He lost his ticket", "The cafe is busy"},
				Answer:      0,
				Explanation: "The woman says the flight was delayed by thirty minutes.",
			},
		}
	case entities.LessonKindToeic:
		lesson.Title = "Grammar Practice"
		lesson.Questions = []entities.Question{
			{
				Prompt:      "The quarterly report must be submitted ___ Friday at noon.",
				Choices:     []string{"by", "until", "on to", "at the"},
				Answer:      0,
				Explanation: "\"By\" marks a deadline for a completed action.",
			},
			{
				Prompt:      "All visitors ___ to sign in at the front desk.",
				Choices:     []string{"require", "are required", "requiring", "requirement"},
				Answer:      1,
				Explanation: "The passive voice is needed: visitors are required to sign in.",
			},
		}
	default:
		lesson.Kind = entities.LessonKindReading
		lesson.Title = "A Morning Routine"
		lesson.Passage = "Every morning, Kenji wakes up at six o'clock. He makes a cup of " +
			"coffee and reads the news before work. On Tuesdays he goes for a short run " +
			"along the river. He believes a calm morning makes the whole day better."
		lesson.Vocabulary = []entities.VocabEntry{
			{Term: "routine", Meaning: "a fixed sequence of daily actions", Example: "Exercise is part of my routine."},
			{Term: "calm", Meaning: "quiet and relaxed"},
		}
		lesson.Questions = []entities.Question{
			{
				Prompt:      "What does Kenji do on Tuesdays?",
				Choices:     []string{"He goes for a run", "He sleeps late", "He skips coffee", "He works from home"},
				Answer:      0,
				Explanation: "The passage says he runs along the river on Tuesdays.",
			},
		}
	}

	return lesson, nil
}
