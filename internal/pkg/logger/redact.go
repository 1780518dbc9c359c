package logger

import "strings"

// RedactEmail masks a member email address for safe logging.
// "jane.doe@example.com" → "ja***@example.com". Local parts of two
// characters or fewer are fully masked, and anything that does not look
// like an address at all becomes "***@***".
func RedactEmail(email string) string {
	local, dom, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(dom, "@") {
		return "***@***"
	}
	if len(local) <= 2 {
		return "***@" + dom
	}
	return local[:2] + "***@" + dom
}
