package ai

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/myrjola/ikigai/internal/errors"
)

// Decode extracts one JSON object from a model response.
//
// Clean JSON is decoded directly. Otherwise Markdown code fences are stripped and the outermost {...} span is
// decoded. When repair is set, a final attempt runs the candidate through jsonrepair. Anything that is not a JSON
// object is ErrMalformed.
func Decode(text string, repair bool) (json.RawMessage, error) {
	if obj, ok := asObject(text); ok {
		return obj, nil
	}

	candidate := outermostObject(stripFences(text))
	if obj, ok := asObject(candidate); ok {
		return obj, nil
	}
	// Fences sharing a line with the object are dropped with the line above.
	if inline := outermostObject(text); inline != candidate {
		if obj, ok := asObject(inline); ok {
			return obj, nil
		}
	}

	if repair && candidate != "" {
		if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
			if obj, ok := asObject(repaired); ok {
				return obj, nil
			}
		}
	}
	return nil, errors.Wrap(ErrMalformed, "decode response")
}

// asObject returns the compacted object if s is exactly one JSON object.
func asObject(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// stripFences drops the lines that open or close a Markdown code block.
func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func outermostObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
