// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	thinkPattern = regexp.MustCompile(`(?is)<think>.*?</think>`)
	fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")
)

// Validator is implemented by reply schemas that can reject a decoded value
// (out-of-range confidence, empty required field).
type Validator interface {
	Valid() bool
}

// ExtractJSON returns the first JSON object in text. It drops <think>
// blocks, then tries the whole text, a fenced code block, and finally every
// balanced brace block in order.
func ExtractJSON(text string) (string, error) {
	t := strings.TrimSpace(thinkPattern.ReplaceAllString(text, ""))
	if strings.HasPrefix(t, "{") && json.Valid([]byte(t)) {
		return t, nil
	}
	if m := fencePattern.FindStringSubmatch(t); m != nil && json.Valid([]byte(m[1])) {
		return m[1], nil
	}
	for start := strings.IndexByte(t, '{'); start >= 0; {
		if end := matchBrace(t, start); end > start {
			if block := t[start : end+1]; json.Valid([]byte(block)) {
				return block, nil
			}
		}
		next := strings.IndexByte(t[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSON
}

// matchBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON strings, or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Parse decodes the first JSON object in content into T. Values whose
// pointer implements Validator must report Valid.
func Parse[T any](content string) (T, error) {
	var zero T
	block, err := ExtractJSON(content)
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal([]byte(block), &v); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	if val, ok := any(&v).(Validator); ok && !val.Valid() {
		return zero, ErrInvalid
	}
	return v, nil
}

// SafeStructured sends prompt to the model and decodes the reply into T.
// Any failure (no model, transport error, timeout, malformed or invalid
// reply) returns fallback; it never returns an error. name labels the call
// site in logs.
func SafeStructured[T any](ctx context.Context, c *Client, name, prompt string, fallback T) T {
	text, err := c.Raw(ctx, prompt)
	if err != nil {
		c.log().Debug("advisory call failed, using default", zap.String("call", name), zap.Error(err))
		return fallback
	}
	v, err := Parse[T](text)
	if err != nil {
		c.log().Warn("advisory reply unusable, using default",
			zap.String("call", name), zap.Int("reply_bytes", len(text)), zap.Error(err))
		return fallback
	}
	return v
}

func (c *Client) log() *zap.Logger {
	if c == nil || c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}
