package usecase

import (
	"github.com/shun-hikari/shun-gunma/domain/entities"
)

// AnswerResult reports the outcome for one question
type AnswerResult struct {
	Index       int    `json:"index"`
	Correct     bool   `json:"correct"`
	Submitted   int    `json:"submitted"`
	Answer      int    `json:"answer"`
	Explanation string `json:"explanation,omitempty"`
}

// QuizResult aggregates answer checking for one quiz submission
type QuizResult struct {
	Total   int            `json:"total"`
	Correct int            `json:"correct"`
	Score   int            `json:"score"`
	Results []AnswerResult `json:"results"`
}

// QuizService checks quiz submissions against the lesson's answer key
type QuizService struct{}

// NewQuizService creates a new quiz service
func NewQuizService() *QuizService {
	return &QuizService{}
}

// CheckAnswers grades submitted choice indices against the questions.
// A missing or out-of-range submission counts as wrong and is reported
// as -1.
func (s *QuizService) CheckAnswers(questions []entities.Question, answers []int) QuizResult {
	result := QuizResult{
		Total:   len(questions),
		Results: make([]AnswerResult, 0, len(questions)),
	}

	for i, q := range questions {
		submitted := -1
		if i < len(answers) && answers[i] >= 0 && answers[i] < len(q.Choices) {
			submitted = answers[i]
		}

		correct := submitted == q.Answer
		if correct {
			result.Correct++
		}

		result.Results = append(result.Results, AnswerResult{
			Index:       i,
			Correct:     correct,
			Submitted:   submitted,
			Answer:      q.Answer,
			Explanation: q.Explanation,
		})
	}

	if result.Total > 0 {
		result.Score = result.Correct * 100 / result.Total
	}
	return result
}
