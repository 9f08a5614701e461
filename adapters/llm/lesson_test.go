package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/shun-hikari/shun-gunma/domain/entities"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

func TestParseLessonReading(t *testing.T) {
	raw := `{
		"title": "A Day at the Market",
		"passage": "Every Saturday, Tom visits the local market.",
		"vocabulary": [{"term": "local", "meaning": "nearby"}],
		"questions": [{
			"prompt": "When does Tom visit the market?",
			"choices": ["Monday", "Saturday", "Sunday", "Friday"],
			"answer": 1,
			"explanation": "The passage says every Saturday."
		}]
	}`

	req := repositories.LessonRequest{Kind: entities.LessonKindReading, Topic: "shopping", Level: entities.LevelBeginner}
	lesson, err := ParseLesson(req, raw)
	if err != nil {
		t.Fatalf("ParseLesson failed: %v", err)
	}

	if lesson.Title != "A Day at the Market" {
		t.Errorf("Unexpected title: %q", lesson.Title)
	}
	if lesson.Kind != entities.LessonKindReading || lesson.Level != entities.LevelBeginner {
		t.Errorf("Request fields not carried over: %+v", lesson)
	}
	if len(lesson.Questions) != 1 || lesson.Questions[0].Answer != 1 {
		t.Errorf("Questions not parsed: %+v", lesson.Questions)
	}
	if len(lesson.Vocabulary) != 1 || lesson.Vocabulary[0].Term != "local" {
		t.Errorf("Vocabulary not parsed: %+v", lesson.Vocabulary)
	}
	if lesson.ID == "" {
		t.Error("Expected a generated lesson ID")
	}
}

func TestParseLessonDialogueWithFences(t *testing.T) {
	raw := "```json\n" + `{
		"title": "At the Airport",
		"lines": [
			{"speaker": "M", "text": "Where is gate 12?", "translation": "12番ゲートはどこですか。"},
			{"speaker": "W", "text": "Down the hall, on your left."}
		],
		"questions": []
	}` + "\n```"

	req := repositories.LessonRequest{Kind: entities.LessonKindDialogue, Level: entities.LevelIntermediate}
	lesson, err := ParseLesson(req, raw)
	if err != nil {
		t.Fatalf("ParseLesson failed: %v", err)
	}
	if len(lesson.Lines) != 2 {
		t.Fatalf("Expected 2 dialogue lines, got %d", len(lesson.Lines))
	}
	if lesson.Lines[0].Speaker != "M" || lesson.Lines[0].Translation == "" {
		t.Errorf("Dialogue line not parsed: %+v", lesson.Lines[0])
	}
}

func TestParseLessonRejectsInvalidJSON(t *testing.T) {
	req := repositories.LessonRequest{Kind: entities.LessonKindReading}
	if _, err := ParseLesson(req, "this is not JSON"); err == nil {
		t.Error("Expected invalid JSON to fail")
	}
}

func TestParseLessonRejectsIncompleteLesson(t *testing.T) {
	req := repositories.LessonRequest{Kind: entities.LessonKindToeic}
	_, err := ParseLesson(req, `{"title": "Empty Quiz", "questions": []}`)
	if err == nil {
		t.Fatal("Expected incomplete lesson to fail validation")
	}
	if !strings.Contains(err.Error(), "incomplete") {
		t.Errorf("Expected incompleteness error, got %v", err)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	for _, kind := range []entities.LessonKind{entities.LessonKindReading, entities.LessonKindDialogue, entities.LessonKindToeic} {
		prompt, err := buildPrompt(repositories.LessonRequest{Kind: kind, Topic: "travel", Level: entities.LevelAdvanced})
		if err != nil {
			t.Fatalf("buildPrompt(%s) failed: %v", kind, err)
		}
		if !strings.Contains(prompt, "travel") {
			t.Errorf("Prompt for %s does not mention the topic", kind)
		}
		if !strings.Contains(prompt, "C1") {
			t.Errorf("Prompt for %s does not mention the CEFR band", kind)
		}
		if !strings.Contains(prompt, "JSON") {
			t.Errorf("Prompt for %s does not request JSON output", kind)
		}
	}

	if _, err := buildPrompt(repositories.LessonRequest{Kind: "podcast"}); err == nil {
		t.Error("Expected unknown kind to fail")
	}
}

func TestMockLessonGenerator(t *testing.T) {
	gen := NewMockLessonGenerator()
	for _, kind := range []entities.LessonKind{entities.LessonKindReading, entities.LessonKindDialogue, entities.LessonKindToeic} {
		lesson, err := gen.GenerateLesson(context.Background(), repositories.LessonRequest{Kind: kind, Level: entities.LevelIntermediate})
		if err != nil {
			t.Fatalf("GenerateLesson(%s) failed: %v", kind, err)
		}
		if err := lesson.Validate(); err != nil {
			t.Errorf("Mock %s lesson does not validate: %v", kind, err)
		}
		if lesson.Kind != kind {
			t.Errorf("Expected kind %s, got %s", kind, lesson.Kind)
		}
	}
}
