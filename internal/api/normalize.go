package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FallbackMessage is used when an error body carries nothing readable.
const FallbackMessage = "request failed"

// NormalizeErrorBody turns any error payload into one message:
//
//   - an array joins each element's "msg" (or the element itself) with ", "
//   - an object with a "detail" field yields that detail
//   - any other object yields its JSON text
//   - a string passes through
//
// It never fails; bodies with nothing recognizable yield FallbackMessage.
func NormalizeErrorBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return FallbackMessage
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return string(trimmed)
	}
	if msg := normalizeValue(v); msg != "" {
		return msg
	}
	return FallbackMessage
}

func normalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := normalizeItem(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if detail, ok := t["detail"]; ok {
			if s := normalizeValue(detail); s != "" {
				return s
			}
		}
		if len(t) == 0 {
			return ""
		}
		return compact(t)
	default:
		return ""
	}
}

// normalizeItem renders one element of a validation error list.
func normalizeItem(item any) string {
	if m, ok := item.(map[string]any); ok {
		if msg, ok := m["msg"].(string); ok && msg != "" {
			return msg
		}
		if len(m) == 0 {
			return ""
		}
		return compact(m)
	}
	if s, ok := item.(string); ok {
		return strings.TrimSpace(s)
	}
	if item == nil {
		return ""
	}
	return compact(item)
}

func compact(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
