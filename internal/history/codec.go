package history

import (
	"bytes"
	"encoding/gob"
)

func init() {
	// Result sequences are []any; gob needs the common concrete
	// element types registered up front.
	gob.Register([]any(nil))
	gob.Register(map[string]any(nil))
	gob.Register([]string(nil))
	gob.Register([]int(nil))
}

// encodeResults serializes a result sequence using encoding/gob.
// Callers must ensure that result values are gob-encodable; custom
// struct results need a gob.Register call on the caller's side.
func encodeResults(results []any) ([]byte, error) {
	if results == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeResults is the inverse of encodeResults.
func decodeResults(data []byte) ([]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var results []any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}
