package services

import (
	"regexp"
	"strings"
	"unicode"
)

// ModerationCategory names the list a comment was flagged by.
type ModerationCategory string

const (
	CategoryAbuse  ModerationCategory = "abuse"
	CategoryThreat ModerationCategory = "threat"
	CategorySpam   ModerationCategory = "spam"
)

// Base canonical words. Input is cleaned to canonical form and compared
// against these, never the other way around.
var baseAbuseWords = []string{
	"idiot",
	"moron",
	"loser",
	"stupid",
	"dumb",
	"pathetic",
	"trash",
	"scum",
	"shut up",
	"go away",
}

var baseThreatWords = []string{
	"kill",
	"murder",
	"assault",
	"attack",
	"hurt",
	"shoot",
	"stab",
	"strangle",
	"threat",
	"revenge",
	"i know where you live",
	"find you",
}

var baseSpamWords = []string{
	"free money",
	"click here",
	"buy now",
	"crypto giveaway",
	"dm me for",
	"promo code",
	"work from home",
	"casino",
}

var (
	spaceRegex = regexp.MustCompile(`\s+`)
	linkRegex  = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)
)

// ModerationResult describes why a comment was rejected.
type ModerationResult struct {
	Flagged    bool                 `json:"flagged"`
	Categories []ModerationCategory `json:"categories,omitempty"`
	Matched    []string             `json:"matched,omitempty"`
}

// CheckComment runs a comment through the banned-word lists. More than two
// links in one comment is treated as spam.
func CheckComment(content string) ModerationResult {
	var res ModerationResult
	cleaned := CleanText(content)

	lists := []struct {
		category ModerationCategory
		words    []string
	}{
		{CategoryAbuse, baseAbuseWords},
		{CategoryThreat, baseThreatWords},
		{CategorySpam, baseSpamWords},
	}
	for _, l := range lists {
		if ok, words := ContainsConfirmedWord(cleaned, l.words); ok {
			res.Categories = append(res.Categories, l.category)
			res.Matched = append(res.Matched, words...)
		}
	}

	if len(linkRegex.FindAllString(content, -1)) > 2 && !hasCategory(res.Categories, CategorySpam) {
		res.Categories = append(res.Categories, CategorySpam)
		res.Matched = append(res.Matched, "links")
	}

	res.Flagged = len(res.Categories) > 0
	return res
}

func hasCategory(cats []ModerationCategory, c ModerationCategory) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}

// CleanText normalizes text to canonical form: lowercase, common
// look-alike substitutions undone, non-letters turned into spaces and
// repeated letters collapsed.
func CleanText(text string) string {
	cleaned := strings.ToLower(text)

	replacements := map[string]string{
		"@": "a",
		"4": "a",
		"3": "e",
		"!": "i",
		"1": "i",
		"0": "o",
		"$": "s",
		"5": "s",
		"7": "t",
		"+": "t",
		"а": "a", // Cyrillic
		"е": "e", // Cyrillic
		"і": "i", // Cyrillic
		"о": "o", // Cyrillic
		"р": "p", // Cyrillic
	}
	for old, repl := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, repl)
	}

	var builder strings.Builder
	for _, r := range cleaned {
		if unicode.IsLetter(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	cleaned = collapseRepeats(builder.String())

	cleaned = spaceRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// collapseRepeats reduces runs of the same letter to one letter.
// Example: "kiiiill" -> "kil".
func collapseRepeats(text string) string {
	if len(text) == 0 {
		return text
	}

	var result strings.Builder
	lastChar := rune(0)
	lastWasLetter := false

	for _, char := range text {
		isLetter := unicode.IsLetter(char)
		if isLetter && lastWasLetter && char == lastChar {
			continue
		}
		result.WriteRune(char)
		lastChar = char
		lastWasLetter = isLetter
	}
	return result.String()
}

// ContainsConfirmedWord checks if cleaned text contains any of baseWords.
// Base words go through the same collapsing as the input, so "kill" is
// matched as "kil". Single words must match a whole word ("skill" is not
// "kill"); phrases match anywhere.
func ContainsConfirmedWord(cleanedText string, baseWords []string) (bool, []string) {
	var confirmed []string
	words := strings.Fields(cleanedText)
	padded := " " + cleanedText + " "

	for _, baseWord := range baseWords {
		canonical := collapseRepeats(strings.ToLower(baseWord))

		if len(strings.Fields(canonical)) == 1 {
			for _, w := range words {
				if w == canonical {
					confirmed = append(confirmed, baseWord)
					break
				}
			}
			continue
		}
		if strings.Contains(padded, " "+canonical+" ") {
			confirmed = append(confirmed, baseWord)
		}
	}
	return len(confirmed) > 0, confirmed
}
