package llm

import (
	"encoding/json"
	"strings"
)

// jsonInstruction is appended to every prompt so both backends answer with
// bare JSON. Some models fence the output anyway, hence stripFences.
const jsonInstruction = "\n\nIMPORTANT: Respond with valid JSON only. Do not include markdown formatting, code fences, or any text outside the JSON object."

// stripFences removes a leading ```json (or bare ```) fence and a trailing
// ``` fence from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeJSON parses model output into a generic JSON object after fence
// stripping. It returns a classified MalformedJSON error on parse failure,
// never the raw text.
func decodeJSON(raw string) (map[string]any, error) {
	cleaned := stripFences(raw)
	var out map[string]any
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, NewError(KindMalformedJSON, 0, "model output is not valid JSON", err)
	}
	return out, nil
}
