package speech

import (
	"sort"
	"strings"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
)

// Name fragments that hint at voice quality. Remote engines tend to
// expose their premium tiers through naming rather than flags.
var qualityHints = map[string]int{
	"neural":   40,
	"natural":  40,
	"wavenet":  40,
	"premium":  30,
	"enhanced": 30,
	"studio":   30,
	"online":   20,
	"hd":       20,
	"compact":  -30,
	"espeak":   -40,
	"novelty":  -50,
}

// ScoreVoice scores a voice by name-based heuristics and its
// network-vs-local flag. Higher is better.
func ScoreVoice(v repositories.Voice) int {
	score := 0
	name := strings.ToLower(v.Name)
	for hint, weight := range qualityHints {
		if strings.Contains(name, hint) {
			score += weight
		}
	}
	if v.Remote {
		score += 25
	}
	if v.Default {
		score += 5
	}
	return score
}

// RankVoices filters voices to the requested language and orders them
// best-first. Language matching is by BCP-47 prefix, so "en" matches
// "en-US" and "en-GB". An empty lang keeps every voice.
func RankVoices(voices []repositories.Voice, lang string) []repositories.Voice {
	lang = strings.ToLower(lang)
	base := strings.SplitN(lang, "-", 2)[0]

	ranked := make([]repositories.Voice, 0, len(voices))
	for _, v := range voices {
		if lang == "" || matchesLanguage(strings.ToLower(v.Language), lang, base) {
			ranked = append(ranked, v)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ScoreVoice(ranked[i]), ScoreVoice(ranked[j])
		if si != sj {
			return si > sj
		}
		// Exact locale matches beat same-language neighbors.
		ei := strings.ToLower(ranked[i].Language) == lang
		ej := strings.ToLower(ranked[j].Language) == lang
		if ei != ej {
			return ei
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

func matchesLanguage(voiceLang, lang, base string) bool {
	if voiceLang == lang {
		return true
	}
	voiceBase := strings.SplitN(voiceLang, "-", 2)[0]
	return voiceBase == base
}
