// internal/common/completion/sanitize.go
package completion

import "strings"

const fence = "```"

// Sanitize strips the markdown code fence completion models like to wrap
// JSON in. It does not validate what remains.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		// An opening fence may carry a language tag up to the first newline,
		// or run straight into the payload as in ```json{...}.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && isLangTag(s[:nl]) {
			s = s[nl+1:]
		} else {
			s = stripInlineTag(s)
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+') {
			return false
		}
	}
	return true
}

func stripInlineTag(s string) string {
	n := 0
	for n < len(s) && (s[n] >= 'a' && s[n] <= 'z' || s[n] >= 'A' && s[n] <= 'Z') {
		n++
	}
	if n == 0 || n == len(s) {
		return s
	}
	switch s[n] {
	case '{', '[', ' ', '\t', '\r', '\n':
		return s[n:]
	}
	return s
}
