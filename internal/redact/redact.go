// Package redact scrubs sensitive information from strings before they are
// logged or returned in error responses: bearer tokens, API keys, SQL
// fragments leaked by the database driver, and local file paths.
package redact

import "regexp"

// Redaction placeholders
const (
	JWTPlaceholder  = "[REDACTED_JWT]"
	KeyPlaceholder  = "[REDACTED_KEY]"
	SQLPlaceholder  = "[REDACTED_SQL]"
	PathPlaceholder = "[REDACTED_PATH]"
)

var (
	// JWT tokens: three base64url segments, the first two starting with eyJ
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// API keys and secrets named in key=value or key: value style
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// SQL fragments surfaced by driver errors
	sqlRegex = regexp.MustCompile(
		`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE|WHERE)(?:[\s\w,*()='"?]+)?`,
	)

	// Local filesystem paths, e.g. the database file location
	pathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)

	replacements = []struct {
		pattern     *regexp.Regexp
		placeholder string
	}{
		{jwtRegex, JWTPlaceholder},
		{apiKeyRegex, KeyPlaceholder},
		{sqlRegex, SQLPlaceholder},
		{pathRegex, PathPlaceholder},
	}
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
