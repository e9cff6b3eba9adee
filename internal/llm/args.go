package llm

import (
	"encoding/json"

	"github.com/kaptinlin/jsonrepair"
)

// ParseArgs decodes tool-call arguments. Smaller models often emit almost-JSON
// (single quotes, trailing commas, truncated objects), so a failed decode is
// retried once on the repaired text. Unrecoverable input is kept under "_raw".
func ParseArgs(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err == nil {
		args = nil
		if err := json.Unmarshal([]byte(repaired), &args); err == nil && args != nil {
			return args
		}
	}
	return map[string]any{"_raw": raw}
}
