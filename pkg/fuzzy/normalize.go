// Package fuzzy normalizes artist names and track titles so that the same recording listed by
// different providers produces the same search query, and scores how alike two titles are.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	bracketDecorationRegex = regexp.MustCompile(
		`(?i)\s*[\(\[]\s*(?:feat\.?|ft\.?|featuring|with|remaster(?:ed)?|\d{4}\s+remaster(?:ed)?|deluxe|` +
			`extended|radio edit|clean|explicit|official|lyrics?|audio|visuali[sz]er|hq|hd|4k)\b[^\)\]]*[\)\]]`)
	suffixDecorationRegex = regexp.MustCompile(
		`(?i)\s+-\s+(?:\d{4}\s+)?(?:remaster(?:ed)?|radio edit|extended|deluxe|clean|explicit|mono|stereo)\b.*$`)
	trailingFeatRegex = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s+.*$`)
	apostropheRegex   = regexp.MustCompile(`['’]`)
	punctRegex        = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
)

// Normalize folds text to lower case ASCII-ish words: accents are stripped, punctuation
// becomes a separator and runs of whitespace collapse.
func Normalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = apostropheRegex.ReplaceAllString(text, "")
	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(strings.ToLower(text))
}

// Artist normalizes an artist credit. Featured artists are dropped and "&" reads as "and".
func Artist(artist string) string {
	artist = trailingFeatRegex.ReplaceAllString(artist, "")
	artist = strings.ReplaceAll(artist, "&", " and ")
	return Normalize(artist)
}

// Title normalizes a track title, dropping featuring credits and release decorations such as
// "(Remastered)", "- Radio Edit" or "[Official Video]". Remix and live markers are kept since
// they name a different recording.
func Title(title string) string {
	title = bracketDecorationRegex.ReplaceAllString(title, "")
	title = suffixDecorationRegex.ReplaceAllString(title, "")
	title = trailingFeatRegex.ReplaceAllString(title, "")
	return Normalize(title)
}

// Query builds a provider-neutral search query from an artist and a title. Either may be empty.
func Query(artist, title string) string {
	parts := make([]string, 0, 2)
	if a := Artist(artist); a != "" {
		parts = append(parts, a)
	}
	if t := Title(title); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}

// Similarity scores two strings between 0 and 1 as the length of their longest common
// subsequence over the longer length.
func Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	return float64(longestCommonSubsequence(a, b)) / float64(max(len(a), len(b)))
}

// TitleSimilarity compares two titles after normalizing both.
func TitleSimilarity(t1, t2 string) float64 {
	return Similarity(Title(t1), Title(t2))
}

func longestCommonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
