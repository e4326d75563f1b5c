package decode

import (
	"encoding/json"

	"github.com/rhuss/opexcore/pkg/api"
)

// Envelope is the {success, msg, data} wrapper some backends put around
// every response. A false Success is a business outcome, not an error.
type Envelope struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// HasData reports whether the envelope carries a non-null payload.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// DecodeEnvelope decodes a {success, msg, data} envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := Object(data, &env, "success"); err != nil {
		return nil, err
	}
	return &env, nil
}

// EnvelopeResult converts an envelope into a Result. When the envelope
// succeeded, convert builds the Record from its payload, which is nil when
// the backend sent none; a nil convert leaves Record unset.
func EnvelopeResult[T any](env *Envelope, convert func(json.RawMessage) (*T, error)) (*api.Result[T], error) {
	var data json.RawMessage
	if env.HasData() {
		data = env.Data
	}
	if !env.Success {
		res := api.Failed[T](env.Msg)
		res.Data = data
		return res, nil
	}
	var rec *T
	if convert != nil {
		var err error
		if rec, err = convert(data); err != nil {
			return nil, err
		}
	}
	res := api.Succeeded(rec)
	res.Message = env.Msg
	res.Data = data
	return res, nil
}

// IsObject reports whether data holds a JSON object.
func IsObject(data []byte) bool {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return c == '{'
	}
	return false
}
