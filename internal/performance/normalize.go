package performance

import "unicode"

// normalize does simple casefolding and drops punctuation and spaces, so
// "High", " high " and "HIGH." all compare equal.
func normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r), unicode.IsPunct(r):
			// skip
		default:
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
