package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Meta is the pagination block of a list envelope.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// Envelope is the uniform backend response wrapper.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Meta    *Meta           `json:"meta,omitempty"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

// Empty reports whether data is absent, null, an empty object or an empty list.
func (e *Envelope) Empty() bool {
	if e == nil {
		return true
	}
	trimmed := bytes.TrimSpace(e.Data)
	switch string(trimmed) {
	case "", "null", "{}", "[]":
		return true
	}
	return false
}

// DecodeData unmarshals the data block into T. Null data yields the zero value.
func DecodeData[T any](env *Envelope) (T, error) {
	var out T
	if env == nil || len(bytes.TrimSpace(env.Data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &Error{Kind: KindMalformed, Detail: fmt.Sprintf("data: %v", err), Err: err}
	}
	return out, nil
}

// parseEnvelope validates the wire shape before anything is trusted.
func parseEnvelope(body []byte) (*Envelope, error) {
	if !gjson.ValidBytes(body) {
		return nil, &Error{Kind: KindDecode, Err: fmt.Errorf("%d bytes of invalid JSON", len(body))}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, &Error{Kind: KindMalformed, Detail: "body is not an object"}
	}
	if flag := doc.Get("success"); flag.Type != gjson.True && flag.Type != gjson.False {
		return nil, &Error{Kind: KindMalformed, Detail: "success flag missing"}
	}
	if status := doc.Get("status"); status.Exists() && status.Type != gjson.Number {
		return nil, &Error{Kind: KindMalformed, Detail: "status is not numeric"}
	}
	if meta := doc.Get("meta"); meta.Exists() && meta.Type != gjson.Null && !meta.IsObject() {
		return nil, &Error{Kind: KindMalformed, Detail: "meta is not an object"}
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindMalformed, Detail: err.Error(), Err: err}
	}
	return &env, nil
}
