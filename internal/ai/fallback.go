package ai

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

const fallbackLimit = 5

var (
	summaryKeywords = []string{"소재", "질감", "촉감", "핏", "색감", "두께", "신축성", "마감", "퀄리티", "원단", "재질", "사이즈"}

	htmlEntities = strings.NewReplacer("&quot;", `"`, "&amp;", "&", "&lt;", "<", "&gt;", ">", "...", "")
	htmlTag      = regexp.MustCompile(`<[^>]+>`)
	spaces       = regexp.MustCompile(`\s+`)
)

// FallbackSummary picks up to five review sentences that talk about material,
// fit or finish. It is used when the summary provider is unavailable.
func FallbackSummary(reviews []string) *ReviewSummary {
	picked := make([]string, 0, fallbackLimit)

	for _, review := range reviews {
		for _, sentence := range splitSentences(cleanReview(review)) {
			if len(picked) == fallbackLimit {
				break
			}
			if utf8.RuneCountInString(sentence) <= 10 || !mentionsKeyword(sentence) {
				continue
			}
			if slices.Contains(picked, sentence) {
				continue
			}
			picked = append(picked, sentence)
		}
	}

	return &ReviewSummary{Pros: picked, Cons: []string{}, FitStyle: []string{}}
}

// Empty reports whether the summary carries nothing to show.
func (s *ReviewSummary) Empty() bool {
	return s == nil || len(s.Pros)+len(s.Cons)+len(s.FitStyle) == 0
}

func cleanReview(s string) string {
	s = htmlTag.ReplaceAllString(htmlEntities.Replace(s), "")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// splitSentences splits after '.', '?' or '!' followed by whitespace.
func splitSentences(s string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(s)
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '?', '!':
			if runes[i+1] == ' ' {
				if part := strings.TrimSpace(string(runes[start : i+1])); part != "" {
					out = append(out, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(string(runes[start:])); part != "" {
		out = append(out, part)
	}
	return out
}

func mentionsKeyword(s string) bool {
	for _, k := range summaryKeywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
