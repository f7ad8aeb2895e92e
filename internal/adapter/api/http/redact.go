package http

import "regexp"

var tokenParams = []string{"token", "access_token", "api_key", "key"}

// RedactURLSecrets redacts token-style query parameters from URLs in
// error messages, so a failed request never leaks credentials into
// logs.
//
// Example:
//
//	input:  "https://api.example.com/endpoint?token=secret123&foo=bar"
//	output: "https://api.example.com/endpoint?token=[REDACTED]&foo=bar"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, param := range tokenParams {
		re := regexp.MustCompile(param + `=([^&"\s]+)`)
		result = re.ReplaceAllString(result, param+"=[REDACTED]")
	}
	return result
}

// RedactBearerTokens strips the credential from "Bearer <token>" and
// "token <token>" authorization strings.
func RedactBearerTokens(text string) string {
	re := regexp.MustCompile(`(?i)(bearer|token)\s+[A-Za-z0-9._\-]+`)
	return re.ReplaceAllString(text, "$1 [REDACTED]")
}
