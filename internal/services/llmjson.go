package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// extractJSON strips markdown fences and surrounding prose from an LLM answer.
// Whichever of object or array opens first wins.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")

	closing := "}"
	start := startObj
	if startArr != -1 && (startObj == -1 || startArr < startObj) {
		closing = "]"
		start = startArr
	}
	if start == -1 {
		return text
	}

	end := strings.LastIndex(text, closing)
	if end <= start {
		return text
	}
	return text[start : end+1]
}

func parseJSONResponse(response string, target interface{}) error {
	jsonStr := extractJSON(response)
	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// flattenSection renders one extracted section as plain text. Lists are
// comma-joined, objects have their values space-joined, null is empty.
func flattenSection(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return strings.TrimSpace(flattenValue(v, ", "))
}

func flattenValue(v interface{}, sep string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(flattenValue(item, " ")); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, sep)
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := strings.TrimSpace(flattenValue(t[k], ", ")); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprint(v)
}

// coerceFloat accepts a JSON number or a finite numeric string.
func coerceFloat(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}
