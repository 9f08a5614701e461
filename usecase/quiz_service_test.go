package usecase

import (
	"testing"

	"github.com/shun-hikari/shun-gunma/domain/entities"
)

func TestCheckAnswers(t *testing.T) {
	questions := []entities.Question{
		{Prompt: "Q1", Choices: []string{"a", "b", "c", "d"}, Answer: 1, Explanation: "Past tense."},
		{Prompt: "Q2", Choices: []string{"a", "b", "c", "d"}, Answer: 2},
		{Prompt: "Q3", Choices: []string{"a", "b", "c", "d"}, Answer: 0},
		{Prompt: "Q4", Choices: []string{"a", "b", "c", "d"}, Answer: 3},
	}

	service := NewQuizService()
	result := service.CheckAnswers(questions, []int{1, 0, 9})

	if result.Total != 4 {
		t.Errorf("Expected total 4, got %d", result.Total)
	}
	if result.Correct != 1 {
		t.Errorf("Expected 1 correct, got %d", result.Correct)
	}
	if result.Score != 25 {
		t.Errorf("Expected score 25, got %d", result.Score)
	}

	if !result.Results[0].Correct {
		t.Error("Expected first answer to be correct")
	}
	if result.Results[0].Explanation != "Past tense." {
		t.Errorf("Expected explanation passed through, got %q", result.Results[0].Explanation)
	}
	if result.Results[1].Correct {
		t.Error("Expected second answer to be wrong")
	}
	// Out-of-range submission is normalized to -1.
	if result.Results[2].Submitted != -1 {
		t.Errorf("Expected out-of-range submission reported as -1, got %d", result.Results[2].Submitted)
	}
	// Missing submission is also -1.
	if result.Results[3].Submitted != -1 {
		t.Errorf("Expected missing submission reported as -1, got %d", result.Results[3].Submitted)
	}
}

func TestCheckAnswersEmpty(t *testing.T) {
	service := NewQuizService()
	result := service.CheckAnswers(nil, nil)
	if result.Total != 0 || result.Score != 0 {
		t.Errorf("Expected zero result for empty quiz, got %+v", result)
	}
	if len(result.Results) != 0 {
		t.Errorf("Expected no per-question results, got %d", len(result.Results))
	}
}

func TestCheckAnswersAllCorrect(t *testing.T) {
	questions := []entities.Question{
		{Prompt: "Q1", Choices: []string{"a", "b"}, Answer: 0},
		{Prompt: "Q2", Choices: []string{"a", "b"}, Answer: 1},
	}
	result := NewQuizService().CheckAnswers(questions, []int{0, 1})
	if result.Score != 100 {
		t.Errorf("Expected score 100, got %d", result.Score)
	}
}
