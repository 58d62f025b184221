// Package types provides type definitions for the resume record consumed by every renderer
// and by the layout estimator.
package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NormalizeListField converts a list-shaped field into a sequence of strings.
//
// A nil or empty value yields an empty sequence. A []string is returned unchanged since
// sequences are assumed to be normalized upstream. A string is split on commas, each piece is
// trimmed and empty pieces are dropped. Any other shape degrades to an empty sequence.
func NormalizeListField(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string:
		if v == nil {
			return []string{}
		}
		return v
	case StringList:
		if v == nil {
			return []string{}
		}
		return []string(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return []string{}
			}
			out = append(out, s)
		}
		return out
	case string:
		return splitCommaList(v)
	default:
		return []string{}
	}
}

func splitCommaList(s string) []string {
	out := []string{}
	for _, piece := range strings.Split(s, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		out = append(out, piece)
	}
	return out
}

// StringList is a list of strings that accepts either a JSON array or a single
// comma-separated JSON string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = StringList{}
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = StringList(NormalizeListField(raw))
	return nil
}

// MarshalJSON always emits an array, never null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
