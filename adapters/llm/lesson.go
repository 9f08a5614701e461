package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shun-hikari/shun-gunma/domain/entities"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// lessonPayload is the JSON shape the model is asked to produce. It is
// deliberately flat so a single schema serves every lesson kind.
type lessonPayload struct {
	Title   string `json:"title"`
	Passage string `json:"passage,omitempty"`
	Lines   []struct {
		Speaker     string `json:"speaker"`
		Text        string `json:"text"`
		Translation string `json:"translation,omitempty"`
	} `json:"lines,omitempty"`
	Vocabulary []struct {
		Term    string `json:"term"`
		Meaning string `json:"meaning"`
		Example string `json:"example,omitempty"`
	} `json:"vocabulary,omitempty"`
	Questions []struct {
		Prompt      string   `json:"prompt"`
		Choices     []string `json:"choices"`
		Answer      int      `json:"answer"`
		Explanation string   `json:"explanation,omitempty"`
	} `json:"questions"`
}

// buildPrompt renders the kind-specific generation prompt
func buildPrompt(req repositories.LessonRequest) (string, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = "everyday life"
	}
	cefr := req.Level.CEFR()

	var b strings.Builder
	b.WriteString("You are an English teacher creating lesson material for a ")
	b.WriteString(string(req.Level))
	b.WriteString(" learner (CEFR ")
	b.WriteString(cefr)
	b.WriteString("). Respond with a single JSON object and nothing else.\n\n")

	switch req.Kind {
	case entities.LessonKindReading:
		fmt.Fprintf(&b, "Write a reading passage of 150-250 words about %q, "+
			"followed by 4 multiple-choice comprehension questions and "+
			"6 vocabulary entries drawn from the passage.\n", topic)
		b.WriteString(`JSON shape: {"title", "passage", "vocabulary": [{"term", "meaning", "example"}], "questions": [{"prompt", "choices": [4 strings], "answer": <0-based index>, "explanation"}]}`)
	case entities.LessonKindDialogue:
		fmt.Fprintf(&b, "Write a natural two-person conversation of 8-12 turns about %q. "+
			"Use the speaker labels M and W. Add a Japanese translation per line, "+
			"4 vocabulary entries and 3 comprehension questions.\n", topic)
		b.WriteString(`JSON shape: {"title", "lines": [{"speaker": "M"|"W", "text", "translation"}], "vocabulary": [{"term", "meaning"}], "questions": [{"prompt", "choices": [4 strings], "answer": <0-based index>, "explanation"}]}`)
	case entities.LessonKindToeic:
		fmt.Fprintf(&b, "Write 8 TOEIC Part 5 style incomplete-sentence grammar questions "+
			"loosely themed around %q. Each has exactly 4 choices and a short "+
			"explanation of the grammar point.\n", topic)
		b.WriteString(`JSON shape: {"title", "questions": [{"prompt": "<sentence with ___ blank>", "choices": [4 strings], "answer": <0-based index>, "explanation"}]}`)
	default:
		return "", fmt.Errorf("unknown lesson kind: %s", req.Kind)
	}

	return b.String(), nil
}

// ParseLesson parses the model's JSON output into a validated lesson.
// Markdown code fences around the JSON are tolerated; models add them
// even when asked not to.
func ParseLesson(req repositories.LessonRequest, raw string) (*entities.Lesson, error) {
	var payload lessonPayload
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("generated lesson is not valid JSON: %w", err)
	}

	lesson := entities.NewLesson(req.Kind, req.Topic, req.Level)
	lesson.Title = strings.TrimSpace(payload.Title)
	lesson.Passage = strings.TrimSpace(payload.Passage)

	for _, line := range payload.Lines {
		lesson.Lines = append(lesson.Lines, entities.DialogueLine{
			Speaker:     strings.TrimSpace(line.Speaker),
			Text:        strings.TrimSpace(line.Text),
			Translation: strings.TrimSpace(line.Translation),
		})
	}
	for _, v := range payload.Vocabulary {
		lesson.Vocabulary = append(lesson.Vocabulary, entities.VocabEntry{
			Term:    strings.TrimSpace(v.Term),
			Meaning: strings.TrimSpace(v.Meaning),
			Example: strings.TrimSpace(v.Example),
		})
	}
	for _, q := range payload.Questions {
		lesson.Questions = append(lesson.Questions, entities.Question{
			Prompt:      strings.TrimSpace(q.Prompt),
			Choices:     q.Choices,
			Answer:      q.Answer,
			Explanation: strings.TrimSpace(q.Explanation),
		})
	}

	if err := lesson.Validate(); err != nil {
		return nil, fmt.Errorf("generated lesson is incomplete: %w", err)
	}
	return lesson, nil
}

// stripFences removes a surrounding markdown code fence, if present
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
