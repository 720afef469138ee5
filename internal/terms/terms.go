package terms

import (
	"strings"
	"unicode/utf8"
)

const minTermLength = 2

// Expand normalizes a concept name and its aliases into a deduplicated set of
// matchable search terms. Parenthetical synonyms are emitted both as the
// inner text and as the string with the parenthetical removed; " - " and "/"
// separated variants are emitted per side. Output order follows first
// appearance; expanding the output again discovers nothing new.
func Expand(raw []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(raw))

	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if utf8.RuneCountInString(s) < minTermLength {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, s := range raw {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < minTermLength {
			continue
		}

		add(s)

		if open := strings.Index(s, "("); open >= 0 {
			if length := strings.Index(s[open:], ")"); length > 0 {
				add(s[open+1 : open+length])
				add(s[:open] + s[open+length+1:])
			}
		}

		for _, sep := range []string{" - ", "/"} {
			if !strings.Contains(s, sep) {
				continue
			}
			for _, part := range strings.Split(s, sep) {
				add(part)
			}
		}
	}

	return out
}
