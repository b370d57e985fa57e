package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

type cup struct {
	Items json.RawMessage `json:"items"`
}

// flattenCups decodes a cups list and returns every item of every cup. A
// cup's items may be a slot->item object or a plain list; object slots are
// visited in key order so results are deterministic.
func flattenCups(raw json.RawMessage) ([]ItemInput, error) {
	if isNullJSON(raw) {
		return nil, nil
	}
	var cups []cup
	if err := json.Unmarshal(raw, &cups); err != nil {
		return nil, fmt.Errorf("cups must be a list: %w", err)
	}

	var out []ItemInput
	for i, c := range cups {
		items, err := cupItems(c.Items)
		if err != nil {
			return nil, fmt.Errorf("cup %d: %w", i, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

func cupItems(raw json.RawMessage) ([]ItemInput, error) {
	if isNullJSON(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '[' {
		var list []ItemInput
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		return list, nil
	}

	var slots map[string]ItemInput
	if err := json.Unmarshal(trimmed, &slots); err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]ItemInput, 0, len(keys))
	for _, k := range keys {
		out = append(out, slots[k])
	}
	return out, nil
}

func isNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func compactJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
