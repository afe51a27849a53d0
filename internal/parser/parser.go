// Package parser extracts JSON documents from free-form model replies.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyContent is returned when the reply holds nothing to parse.
var ErrEmptyContent = errors.New("model returned empty content")

// fencedBlock matches the first markdown code fence, with or without a language tag.
var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\\r?\\n?(.*?)```")

// StripCodeFences removes a leading ```lang line and a trailing ``` from s.
// Text without fences is returned trimmed.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		header := strings.TrimSpace(s[:nl])
		if !strings.ContainsAny(header, "{[") {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FencedBlock returns the interior of the first fenced code block in s.
func FencedBlock(s string) (string, bool) {
	m := fencedBlock.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractObject returns the first balanced {...} object in s, ignoring braces
// inside string literals.
func ExtractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\':
			escaped = inString
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// DecodeFencedOrRaw tries the interior of the first fenced code block, then
// the raw content, then the first balanced object in the content. The error
// from the raw attempt is returned.
func DecodeFencedOrRaw(content string, v interface{}) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	if block, ok := FencedBlock(content); ok {
		if err := json.Unmarshal([]byte(block), v); err == nil {
			return nil
		}
	}

	rawErr := json.Unmarshal([]byte(strings.TrimSpace(content)), v)
	if rawErr == nil {
		return nil
	}

	if obj, ok := ExtractObject(content); ok {
		if err := json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("reply is not valid JSON: %w", rawErr)
}

// DecodeStripped strips surrounding code fences and decodes the remainder.
func DecodeStripped(content string, v interface{}) error {
	stripped := StripCodeFences(content)
	if stripped == "" {
		return ErrEmptyContent
	}
	if err := json.Unmarshal([]byte(stripped), v); err != nil {
		return fmt.Errorf("reply is not valid JSON: %w", err)
	}
	return nil
}
