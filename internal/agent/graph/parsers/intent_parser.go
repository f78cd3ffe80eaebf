package parsers

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/study-buddy/server/internal/agent/model"
	errx "github.com/study-buddy/server/internal/core/error"
	logx "github.com/study-buddy/server/pkg/logger"
)

const endDelim = "<|COMPLETE|>"

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 4 * 1024
	maxErrSnippet = 200
)

// ParseIntent extracts an intent label from raw classifier output.
//
// An exact label wins. Otherwise the first known label appearing as a word is used,
// so "Intent: stress_relief." still parses. Output with no known label returns its
// first word unchanged, leaving the caller to treat it as unknown.
func ParseIntent(content string) (intent model.Intent, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "intent_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("intent parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			intent = ""
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "intent_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	if idx := strings.Index(content, endDelim); idx >= 0 {
		content = content[:idx]
	}
	if !utf8.ValidString(content) {
		return "", fmt.Errorf("classifier output invalid utf8")
	}

	normalized := strings.ToLower(strings.TrimSpace(content))
	if normalized == "" {
		return "", fmt.Errorf("classifier output is empty")
	}
	if in, ok := model.ParseIntent(trimPunct(normalized)); ok {
		return in, nil
	}

	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	for _, w := range words {
		if in, ok := model.ParseIntent(w); ok {
			return in, nil
		}
	}
	if len(words) == 0 {
		return "", fmt.Errorf("classifier output has no label: %q", safeSnippet(content))
	}
	return model.Intent(words[0]), nil
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) && r != '_' || unicode.IsSpace(r) || r == '`'
	})
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
