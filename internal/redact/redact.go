// Package redact scrubs sensitive values out of strings before they are
// logged. Error messages from the database driver, the token library and the
// upstream HTTP client can carry connection strings, bearer credentials,
// signed tokens, email addresses and bank account numbers; none of those may
// reach the logs verbatim.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	AccountPlaceholder    = "[REDACTED_ACCOUNT]"
	StackTracePlaceholder = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order; later rules see the output of earlier ones.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`(?s)(?:panic: |goroutine \d+ \[).*`),
		replacement: StackTracePlaceholder,
	},
	{
		// user:password@ in connection strings
		pattern:     regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*)://[^/\s:@]+:[^@\s]+@`),
		replacement: "${1}://" + CredentialPlaceholder + "@",
	},
	{
		pattern:     regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		replacement: JWTPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9_\-.~+/=]+`),
		replacement: "Bearer " + TokenPlaceholder,
	},
	{
		pattern: regexp.MustCompile(
			`(?i)\b(password|passwd|pwd|secret|jwt_secret|api_key|apikey|access_token|refresh_token|token)(\s*[=:]\s*)("?)[^\s"&,]+`,
		),
		replacement: "${1}${2}${3}" + Placeholder,
	},
	{
		pattern:     regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		replacement: EmailPlaceholder,
	},
	{
		// NUBAN account numbers are ten digits
		pattern:     regexp.MustCompile(`\b\d{10}\b`),
		replacement: AccountPlaceholder,
	},
}

// String returns input with every sensitive value replaced by a placeholder.
func String(input string) string {
	if input == "" {
		return input
	}
	out := input
	for _, r := range rules {
		out = r.pattern.ReplaceAllString(out, r.replacement)
	}
	return out
}

// Error redacts err.Error(). A nil error yields the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
