package api

import (
	"bytes"
	"encoding/json"
)

// Entity unwraps single-entity responses that may or may not be wrapped in
// a {data:{...}} envelope, mirroring what the normalizer does for listings.
type Entity[T any] struct {
	Value T
}

// UnmarshalJSON prefers the enveloped form when a non-null data field is
// present and falls back to decoding the payload directly.
func (e *Entity[T]) UnmarshalJSON(b []byte) error {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &probe); err == nil {
		data := bytes.TrimSpace(probe.Data)
		if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
			return json.Unmarshal(data, &e.Value)
		}
	}
	return json.Unmarshal(b, &e.Value)
}
