package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeFencedJSON decodes a JSON payload from model output text into v.
// Models routinely wrap JSON in a fenced code block or surround it with
// prose; the decoder strips an optional ```json fence and falls back to
// carving out the outermost JSON value. Callers apply their own fixed
// fallback value when an error is returned.
func decodeFencedJSON(text string, v any) error {
	payload := stripCodeFence(text)
	if payload == "" {
		return fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal([]byte(payload), v); err == nil {
		return nil
	}
	carved, ok := carveJSON(payload)
	if !ok {
		return fmt.Errorf("no JSON value found in payload")
	}
	if err := json.Unmarshal([]byte(carved), v); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)

	if idx := strings.Index(trimmed, "```json"); idx != -1 {
		rest := trimmed[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(trimmed, "```"); idx != -1 {
		rest := trimmed[idx+3:]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return trimmed
}

// carveJSON extracts the outermost brace- or bracket-delimited region from
// text that contains JSON mixed with prose.
func carveJSON(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return "", false
	}
	closing := byte('}')
	if text[start] == '[' {
		closing = ']'
	}
	end := strings.LastIndexByte(text, closing)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}
