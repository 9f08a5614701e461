package speech

import (
	"regexp"
	"strings"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// Segment is a run of dialogue text attributed to one speaker label.
// An empty Speaker marks narration before the first label.
type Segment struct {
	Speaker string
	Text    string
}

// speakerLabelRegex matches transcript lines of the form "Label: text".
// Labels start with a letter so clock times ("10:30") never match, and
// stay short so ordinary sentences with a colon are left alone.
var speakerLabelRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 .'-]{0,24}):\s*(.*)$`)

// SplitSpeakers splits a multi-speaker transcript on speaker-label line
// boundaries. Lines without a label continue the previous speaker's
// segment; consecutive lines from the same speaker are merged.
func SplitSpeakers(text string) []Segment {
	var segments []Segment
	current := -1

	appendText := func(speaker, line string) {
		if current >= 0 && segments[current].Speaker == speaker {
			segments[current].Text += " " + line
			return
		}
		segments = append(segments, Segment{Speaker: speaker, Text: line})
		current = len(segments) - 1
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := speakerLabelRegex.FindStringSubmatch(line); m != nil {
			speaker := strings.TrimSpace(m[1])
			body := strings.TrimSpace(m[2])
			if body == "" {
				// A bare label; the utterance follows on later lines.
				segments = append(segments, Segment{Speaker: speaker})
				current = len(segments) - 1
				continue
			}
			appendText(speaker, body)
			continue
		}

		speaker := ""
		if current >= 0 {
			speaker = segments[current].Speaker
		}
		if current >= 0 && segments[current].Text == "" {
			segments[current].Text = line
			continue
		}
		appendText(speaker, line)
	}

	// Drop labels that never received text.
	out := segments[:0]
	for _, s := range segments {
		if strings.TrimSpace(s.Text) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// VoiceAssigner assigns a stable voice per speaker label for the
// duration of one playback. The first time a label appears it takes the
// best unused voice, honoring an implied gender when the label carries
// one; later appearances reuse the same voice.
type VoiceAssigner struct {
	ranked   []repositories.Voice
	assigned map[string]repositories.Voice
	used     map[string]bool
}

// NewVoiceAssigner creates an assigner over a best-first voice list
func NewVoiceAssigner(ranked []repositories.Voice) *VoiceAssigner {
	return &VoiceAssigner{
		ranked:   ranked,
		assigned: make(map[string]repositories.Voice),
		used:     make(map[string]bool),
	}
}

// Assign returns the voice for a speaker label, creating a stable
// assignment on first use. With no voices available it returns the zero
// Voice, leaving the provider default in effect.
func (a *VoiceAssigner) Assign(speaker string) repositories.Voice {
	key := strings.ToLower(strings.TrimSpace(speaker))
	if v, ok := a.assigned[key]; ok {
		return v
	}
	if len(a.ranked) == 0 {
		return repositories.Voice{}
	}

	v := a.pick(impliedGender(key))
	a.assigned[key] = v
	a.used[v.ID] = true
	return v
}

// pick chooses the best unused voice, preferring a gender match when
// the label implies one. With every voice taken it falls back to
// round-robin over the ranked list.
func (a *VoiceAssigner) pick(gender string) repositories.Voice {
	if gender != "" {
		for _, v := range a.ranked {
			if !a.used[v.ID] && strings.EqualFold(v.Gender, gender) {
				return v
			}
		}
	}
	for _, v := range a.ranked {
		if !a.used[v.ID] {
			return v
		}
	}
	return a.ranked[len(a.assigned)%len(a.ranked)]
}

// impliedGender maps conventional transcript labels to a voice gender
func impliedGender(label string) string {
	switch strings.TrimSuffix(label, ".") {
	case "m", "man", "male", "boy", "mr", "sir", "he":
		return "male"
	case "w", "f", "woman", "female", "girl", "mrs", "ms", "madam", "she":
		return "female"
	}
	switch {
	case strings.HasPrefix(label, "mr "), strings.HasPrefix(label, "mr. "):
		return "male"
	case strings.HasPrefix(label, "mrs "), strings.HasPrefix(label, "mrs. "),
		strings.HasPrefix(label, "ms "), strings.HasPrefix(label, "ms. "):
		return "female"
	}
	return ""
}
