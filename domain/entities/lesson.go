package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LessonKind identifies the type of generated lesson content
type LessonKind string

const (
	LessonKindReading  LessonKind = "reading"
	LessonKindDialogue LessonKind = "dialogue"
	LessonKindToeic    LessonKind = "toeic"
)

// Level represents the learner's proficiency level
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// CEFR returns the CEFR band used to steer generation prompts
func (l Level) CEFR() string {
	switch l {
	case LevelBeginner:
		return "A2"
	case LevelAdvanced:
		return "C1"
	default:
		return "B1-B2"
	}
}

// DialogueLine is a single utterance within a generated dialogue
type DialogueLine struct {
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	Translation string `json:"translation,omitempty"`
}

// VocabEntry is a vocabulary item attached to a lesson
type VocabEntry struct {
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
	Example string `json:"example,omitempty"`
}

// Question is a multiple-choice question within a lesson
type Question struct {
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

// Lesson represents one generated piece of lesson content
type Lesson struct {
	ID         string         `json:"id"`
	Kind       LessonKind     `json:"kind"`
	Topic      string         `json:"topic"`
	Level      Level          `json:"level"`
	Title      string         `json:"title"`
	Passage    string         `json:"passage,omitempty"`
	Lines      []DialogueLine `json:"lines,omitempty"`
	Vocabulary []VocabEntry   `json:"vocabulary,omitempty"`
	Questions  []Question     `json:"questions"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewLesson creates an empty lesson shell for the given request parameters
func NewLesson(kind LessonKind, topic string, level Level) *Lesson {
	return &Lesson{
		ID:        uuid.NewString(),
		Kind:      kind,
		Topic:     topic,
		Level:     level,
		CreatedAt: time.Now(),
	}
}

// SpeakableText returns the text that should be read aloud for this lesson.
// Dialogues keep their speaker labels so the playback layer can split them.
func (l *Lesson) SpeakableText() string {
	if l.Kind == LessonKindDialogue {
		var b strings.Builder
		for i, line := range l.Lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(line.Speaker)
			b.WriteString(": ")
			b.WriteString(line.Text)
		}
		return b.String()
	}
	return l.Passage
}

// Validate checks that the lesson content is complete for its kind
func (l *Lesson) Validate() error {
	switch l.Kind {
	case LessonKindReading:
		if strings.TrimSpace(l.Passage) == "" {
			return errors.New("reading lesson requires a passage")
		}
	case LessonKindDialogue:
		if len(l.Lines) == 0 {
			return errors.New("dialogue lesson requires at least one line")
		}
		for _, line := range l.Lines {
			if strings.TrimSpace(line.Speaker) == "" || strings.TrimSpace(line.Text) == "" {
				return errors.New("dialogue line requires speaker and text")
			}
		}
	case LessonKindToeic:
		if len(l.Questions) == 0 {
			return errors.New("toeic lesson requires at least one question")
		}
	default:
		return errors.New("unknown lesson kind")
	}

	for i, q := range l.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}

	return nil
}

// Validate checks that a question has a well-formed answer key
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return errors.New("question prompt is required")
	}
	if len(q.Choices) < 2 {
		return errors.New("question requires at least two choices")
	}
	if q.Answer < 0 || q.Answer >= len(q.Choices) {
		return errors.New("question answer index out of range")
	}
	return nil
}
