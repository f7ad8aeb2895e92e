package observability

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"

	apihttp "github.com/bkyoung/tidy-review/internal/adapter/api/http"
	"github.com/bkyoung/tidy-review/internal/usecase/review"
)

// ReviewLogger implements review.Logger on top of the API log
// level/format settings, so the assembler and the GitHub client share
// one logging configuration.
type ReviewLogger struct {
	level  apihttp.LogLevel
	format apihttp.LogFormat
}

// NewReviewLogger creates a new review logger adapter.
func NewReviewLogger(level apihttp.LogLevel, format apihttp.LogFormat) review.Logger {
	return &ReviewLogger{level: level, format: format}
}

// LogWarning logs a warning message with structured fields.
func (l *ReviewLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > apihttp.LogLevelError {
		return
	}
	l.emit("WARN", message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *ReviewLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > apihttp.LogLevelInfo {
		return
	}
	l.emit("INFO", message, fields)
}

func (l *ReviewLogger) emit(level, message string, fields map[string]interface{}) {
	if l.format == apihttp.LogFormatJSON {
		entry := map[string]interface{}{
			"level":   strings.ToLower(level),
			"message": message,
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("[%s] %s", level, message)
			return
		}
		log.Printf("%s", data)
		return
	}

	if len(fields) == 0 {
		log.Printf("[%s] %s", level, message)
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		data, err := json.Marshal(fields[k])
		if err != nil {
			b.WriteString("?")
			continue
		}
		b.Write(data)
	}
	log.Printf("[%s] %s%s", level, message, b.String())
}
