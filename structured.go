package capsa

import (
	"bytes"
	"encoding/json"
)

// StructuredData is an insertion-ordered string-keyed map of
// JSON-representable values, used for the optional structured-data field
// of a capsa. Ordinary Go maps do not preserve key order, which would
// make the JSON serialized before encryption nondeterministic across
// otherwise-identical builds.
type StructuredData struct {
	keys   []string
	values map[string]any
}

// NewStructuredData returns an empty StructuredData.
func NewStructuredData() *StructuredData {
	return &StructuredData{values: make(map[string]any)}
}

// Set assigns key to value, preserving first-insertion order. Setting an
// existing key updates its value without moving its position.
func (s *StructuredData) Set(key string, value any) *StructuredData {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
	return s
}

// Len reports the number of entries.
func (s *StructuredData) Len() int {
	return len(s.keys)
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (s *StructuredData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
