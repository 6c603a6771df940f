package metrics

import (
	"strings"
	"unicode"
)

var friendlyAliases = map[string]string{
	"restclient.StatusError":            "http_status",
	"restclient.ParseError":             "invalid_json",
	"restclient.UnsupportedMethodError": "unsupported_method",
	"restclient.UnreachableError":       "unreachable",
	"url.Error":                         "transport",
	"context.deadlineExceededError":     "deadline_exceeded",
}

// FriendlyErrorName turns a Go error type name into a short snake_case label.
func FriendlyErrorName(typeName string) string {
	cleaned := strings.TrimPrefix(strings.TrimSpace(typeName), "*")
	if cleaned == "" {
		return "unknown"
	}
	if idx := strings.LastIndex(cleaned, "/"); idx != -1 {
		cleaned = cleaned[idx+1:]
	}
	if alias, ok := friendlyAliases[cleaned]; ok {
		return alias
	}

	name := cleaned
	if idx := strings.Index(name, "."); idx != -1 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, "Error")
	if snake := snakeCase(name); snake != "" {
		return snake
	}
	return "error"
}

func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '.' || r == ' ' || r == '-' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}
