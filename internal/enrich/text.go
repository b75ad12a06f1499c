package enrich

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	wordPattern      = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)
	categorySplitter = regexp.MustCompile(`[>/|]`)
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"day": true, "get": true, "has": true, "him": true, "his": true,
	"how": true, "its": true, "may": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "who": true, "boy": true,
	"did": true, "she": true, "use": true, "way": true, "will": true,
	"with": true,
}

// Words kept lowercase by titleCase unless they lead the title.
var minorWords = map[string]bool{
	"and": true, "or": true, "but": true, "for": true, "nor": true,
	"on": true, "at": true, "to": true, "from": true, "by": true,
	"of": true, "in": true, "with": true,
}

// keywords returns distinct lowercase words longer than three letters that
// are not stop words, in first-occurrence order.
func keywords(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if stopWords[w] || len(w) <= 3 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// categoryKeywords extracts keywords from each segment of a category path
// such as "Home > Kitchen / Small Appliances".
func categoryKeywords(category string) []string {
	if category == "" {
		return nil
	}
	var out []string
	for _, part := range categorySplitter.Split(category, -1) {
		out = append(out, keywords(part)...)
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// keywordDensity is configured-keyword occurrences per word of text.
func keywordDensity(text string, seo []string) float64 {
	if text == "" || len(seo) == 0 {
		return 0
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	count := 0
	for _, kw := range seo {
		if kw == "" {
			continue
		}
		count += strings.Count(lower, strings.ToLower(kw))
	}
	return float64(count) / float64(words)
}

// sentences splits on periods and drops blank pieces.
func sentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// readability is a simplified Flesch reading ease, clamped to 0-100.
func readability(text string) float64 {
	if text == "" {
		return 0
	}
	n := len(sentences(text))
	words := strings.Fields(text)
	if n == 0 || len(words) == 0 {
		return 0
	}
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}
	wps := float64(len(words)) / float64(n)
	spw := float64(syllables) / float64(len(words))
	score := 206.835 - 1.015*wps - 84.6*spw
	return max(0, min(100, score))
}

// countSyllables counts vowel groups, dropping a trailing silent e. Every
// word has at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		if strings.ContainsRune("aeiouy", r) {
			if !prevVowel {
				count++
			}
			prevVowel = true
		} else {
			prevVowel = false
		}
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	return max(1, count)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

// titleCase capitalizes each word, keeping minor words lowercase after the
// first position.
func titleCase(title string) string {
	words := strings.Fields(title)
	for i, w := range words {
		if i > 0 && minorWords[strings.ToLower(w)] {
			words[i] = strings.ToLower(w)
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// labelize turns an attribute key like "pack_size" into "Pack Size".
func labelize(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// addKeyword works kw into text, extending a short first sentence or
// appending a new one.
func addKeyword(text, kw string) string {
	parts := strings.Split(text, ".")
	if utf8.RuneCountInString(parts[0]) < 100 {
		parts[0] = strings.TrimSpace(parts[0]) + " with " + kw
		return strings.Join(parts, ".")
	}
	return strings.TrimRight(text, ".") + ". Features " + kw + "."
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// richness rewards word and attribute volume, capped at 100.
//
// Scoring breakdown:
//   - Title words:       2 each, max 20
//   - Description words: 0.5 each, max 40
//   - Attributes:        3 each, max 30
//   - Images:            2 each, max 10
func richness(title, description string, attrs, images int) float64 {
	score := 0.0
	if title != "" {
		score += min(20, float64(len(strings.Fields(title)))*2)
	}
	if description != "" {
		score += min(40, float64(len(strings.Fields(description)))*0.5)
	}
	score += min(30, float64(attrs)*3)
	score += min(10, float64(images)*2)
	return min(100, score)
}

func appendUnique(dst []string, seen map[string]bool, items ...string) []string {
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		dst = append(dst, s)
	}
	return dst
}
