// Package llmjson parses JSON values out of free-form model output.
//
// Model responses are untrusted text: they may wrap the payload in markdown
// fences, prepend chatter, or return a value of the wrong shape. Decoding
// yields a Result that is either a value or a reason, never a panic.
package llmjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when the text contains no JSON value of the wanted kind.
var ErrNoJSON = errors.New("no JSON value in response")

// Result is the outcome of parsing a model response.
type Result[T any] struct {
	Value  T
	Reason error
}

// OK reports whether parsing succeeded.
func (r Result[T]) OK() bool { return r.Reason == nil }

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

// Fail wraps a failure reason.
func Fail[T any](err error) Result[T] { return Result[T]{Reason: err} }

// Failf is Fail with fmt.Errorf formatting.
func Failf[T any](format string, args ...any) Result[T] {
	return Result[T]{Reason: fmt.Errorf(format, args...)}
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag. Text without a fence is returned trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	idx := strings.Index(s, "```")
	if idx == -1 {
		return s
	}
	s = s[idx+3:]
	if nl := strings.IndexByte(s, '\n'); nl != -1 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	if end := strings.Index(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// Extract returns the first balanced JSON value opening with open ('{' or '[')
// found in s. Brackets inside string literals are ignored.
func Extract(s string, open byte) (string, error) {
	var closer byte
	switch open {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	default:
		return "", fmt.Errorf("unsupported opener %q", open)
	}

	s = StripFences(s)
	start := strings.IndexByte(s, open)
	if start == -1 {
		return "", ErrNoJSON
	}

	depth := 0
	inString, escape := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON value: %w", ErrNoJSON)
}

// DecodeObject extracts and decodes a JSON object into T.
func DecodeObject[T any](text string) Result[T] {
	raw, err := Extract(text, '{')
	if err != nil {
		return Fail[T](err)
	}
	return decode[T](raw)
}

// DecodeArray extracts and decodes a JSON array of T.
func DecodeArray[T any](text string) Result[[]T] {
	raw, err := Extract(text, '[')
	if err != nil {
		return Fail[[]T](err)
	}
	return decode[[]T](raw)
}

// DecodeArrayOrObject accepts either an array of T or a single T object,
// whichever appears first in the text. A lone object becomes a one-element
// slice.
func DecodeArrayOrObject[T any](text string) Result[[]T] {
	s := StripFences(text)
	arr := strings.IndexByte(s, '[')
	obj := strings.IndexByte(s, '{')
	if obj != -1 && (arr == -1 || obj < arr) {
		one := DecodeObject[T](s)
		if !one.OK() {
			return Fail[[]T](one.Reason)
		}
		return Ok([]T{one.Value})
	}
	return DecodeArray[T](s)
}

func decode[T any](raw string) Result[T] {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Failf[T]("decoding model JSON: %w", err)
	}
	return Ok(v)
}

// Compact returns s with insignificant whitespace removed when it is valid
// JSON, and s unchanged otherwise. Used for debug logging.
func Compact(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
