package summarize

import (
	"strings"

	"github.com/parentbud/carecards/internal/extract"
	"github.com/parentbud/carecards/internal/topics"
)

// adviceKeywords mark sentences that read like actionable parenting guidance.
// A sentence needs at least two distinct hits to qualify.
var adviceKeywords = []string{
	"child", "kid", "toddler", "baby", "parent",
	"help", "try", "teach", "encourage", "praise", "reward",
	"routine", "consistent", "calm", "gentle", "patience",
	"sleep", "bedtime", "behavior", "tantrum",
	"feel", "emotion", "talk", "listen", "play", "practice",
	"limit", "model", "offer", "choice", "comfort",
}

// linkingStarts are sentence openers that depend on prior context and read
// poorly as standalone tips.
var linkingStarts = []string{
	"however", "but", "also", "and", "or", "so", "because",
	"although", "though", "yet", "still", "meanwhile",
	"furthermore", "moreover", "additionally", "therefore", "thus",
	"this", "that", "these", "those", "it ", "they ",
}

const (
	minSentenceLen = 50
	maxSentenceLen = 350
	minKeywordHits = 2
	// tipTargetLen closes a multi-sentence tip once it is long enough.
	tipTargetLen      = 200
	maxSentencesInTip = 3
)

// extractTips builds one tip set per topic by pulling advice-like sentences
// straight from the source text. It reports false when the sources do not
// yield at least MinTips tips, signalling the caller to fall through to
// templates.
func extractTips(topic topics.Topic, docs []extract.SourceDocument) ([]TipSet, bool) {
	if len(docs) == 0 {
		return nil, false
	}

	var combined strings.Builder
	var tips []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			tips = append(tips, strings.Join(current, " "))
			current = current[:0]
			currentLen = 0
		}
	}

	for _, doc := range docs {
		combined.WriteString(doc.Text)
		combined.WriteByte('\n')
		for _, sent := range splitSentences(doc.Text) {
			if len(tips) >= MaxTips {
				break
			}
			if !qualifies(sent) {
				// A non-qualifying sentence breaks the run; a tip spans
				// consecutive advice sentences only.
				flush()
				continue
			}
			current = append(current, sent)
			currentLen += len(sent)
			if len(current) >= maxSentencesInTip || currentLen >= tipTargetLen {
				flush()
			}
		}
		flush()
	}
	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	if len(tips) < MinTips {
		return nil, false
	}

	set := TipSet{
		Title:     topic.Title,
		Subtitle:  topic.Subtitle,
		Tips:      tips,
		AgeGroups: topics.DetectAgeGroups(combined.String(), topic.AgeGroups),
	}
	return []TipSet{set}, true
}

// qualifies applies the length band, keyword floor and opener filter.
func qualifies(sent string) bool {
	if len(sent) < minSentenceLen || len(sent) > maxSentenceLen {
		return false
	}
	lower := strings.ToLower(sent)
	for _, start := range linkingStarts {
		if strings.HasPrefix(lower, start) {
			return false
		}
	}
	hits := 0
	for _, kw := range adviceKeywords {
		if strings.Contains(lower, kw) {
			hits++
			if hits >= minKeywordHits {
				return true
			}
		}
	}
	return false
}

// splitSentences breaks prose on terminal punctuation followed by whitespace.
// Newlines also terminate a sentence so headings do not glue onto body text.
func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				flush()
			}
		}
	}
	flush()
	return out
}
