package prompt

import (
	"regexp"
	"strings"
)

const fence = "```"

// ExtractFenced returns the trimmed text between the first "```lang" marker
// and the next closing fence. Without a marker the whole trimmed text is
// returned, so the result is never an error. An unclosed block runs to the
// end of text.
func ExtractFenced(text, lang string) string {
	_, after, found := strings.Cut(text, fence+lang)
	if !found {
		return strings.TrimSpace(text)
	}
	body, _, _ := strings.Cut(after, fence)
	return strings.TrimSpace(body)
}

// ExtractSQL extracts a ```sql block.
func ExtractSQL(text string) string {
	return ExtractFenced(text, "sql")
}

// ExtractPython extracts a ```python block.
func ExtractPython(text string) string {
	return ExtractFenced(text, "python")
}

var numbered = regexp.MustCompile(`(?:^|\n)\s*\d+\.\s+`)

// ParseQuestions splits a numbered list into its items. Text before the
// first number is an introduction and is dropped when a list is present.
func ParseQuestions(text string) []string {
	parts := numbered.Split(text, -1)
	if len(parts) > 1 {
		parts = parts[1:]
	}

	var questions []string
	for _, p := range parts {
		if q := strings.TrimSpace(p); q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}
