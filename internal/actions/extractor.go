package actions

import (
	"regexp"
	"strings"
)

// ContactExtraction holds whatever contact details the heuristics found in a
// transcript. Fields are empty when nothing matched.
type ContactExtraction struct {
	Name  string
	Phone string
	Email string
}

// HasContact reports whether the extraction is confident enough to act on.
// An email alone is too weak a signal to create a record from.
func (c ContactExtraction) HasContact() bool {
	return c.Name != "" || c.Phone != ""
}

var (
	// UK mobile and geographic numbers, national or international form,
	// with optional spacing.
	phonePattern = regexp.MustCompile(`(?:\+44\s?7\d{3}|\(?07\d{3}\)?)\s?\d{3}\s?\d{3}|(?:\+44\s?\d{2,4}|\(?0\d{2,4}\)?)\s?\d{3,4}\s?\d{3,4}`)

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Self-introductions like "my name is Sarah Jones" or "this is Tom".
	// The trigger phrase is matched case-insensitively but the captured name
	// must be capitalized, which keeps "this is a problem" from matching.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:\bmy name is )([A-Z][a-z]+(?: [A-Z][a-z]+)?)`),
		regexp.MustCompile(`(?i:\bthis is )([A-Z][a-z]+(?: [A-Z][a-z]+)?)\b`),
		regexp.MustCompile(`(?i:\bi'?m called )([A-Z][a-z]+(?: [A-Z][a-z]+)?)`),
	}
)

// ExtractContact runs best-effort regex heuristics over free transcript text.
// A miss on every pattern is a normal outcome, not an error.
func ExtractContact(text string) ContactExtraction {
	var out ContactExtraction
	if text == "" {
		return out
	}

	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			out.Name = strings.TrimSpace(m[1])
			break
		}
	}
	if m := phonePattern.FindString(text); m != "" {
		out.Phone = strings.TrimSpace(m)
	}
	if m := emailPattern.FindString(text); m != "" {
		out.Email = strings.ToLower(m)
	}
	return out
}
