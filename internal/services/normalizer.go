package services

import (
	"sort"
	"strings"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func stripPunctuation(text string, keep rune) string {
	return strings.Map(func(r rune) rune {
		if r != keep && strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, text)
}

// NormalizeForEmbedding lower-cases text, drops ASCII punctuation other than
// commas and collapses whitespace.
func NormalizeForEmbedding(text string) string {
	return strings.Join(strings.Fields(stripPunctuation(strings.ToLower(text), ',')), " ")
}

// SplitSkills splits a raw skill list on commas, semicolons and newlines.
// Entries are trimmed and empty ones dropped; case and order are kept.
func SplitSkills(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeSkillList returns the lower-cased, deduplicated, sorted skills joined by ", ".
func NormalizeSkillList(raw string) string {
	seen := make(map[string]struct{})
	var skills []string
	for _, s := range SplitSkills(raw) {
		s = strings.ToLower(s)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return strings.Join(skills, ", ")
}
