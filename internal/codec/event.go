package codec

import (
	"encoding/json"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

var api = sonic.ConfigFastest

// Envelope is the wire form of a bus event.
type Envelope struct {
	Header  schema.EventHeader `json:"header"`
	Payload json.RawMessage    `json:"payload"`
}

// Encode serializes header and payload into an envelope.
func Encode(header schema.EventHeader, payload any) ([]byte, error) {
	if header.Version == 0 {
		header.Version = schema.SchemaVersion
	}
	body, err := api.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}
	data, err := api.Marshal(Envelope{Header: header, Payload: body})
	if err != nil {
		return nil, errors.Wrap(err, "marshal envelope")
	}
	return data, nil
}

// Decode parses an envelope and checks its schema version.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := api.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.Wrap(err, "unmarshal envelope")
	}
	if env.Header.Version != schema.SchemaVersion {
		return Envelope{}, exception.ErrEnvelopeVersion
	}
	return env, nil
}

// DecodeActivity extracts an activity payload.
func DecodeActivity(env Envelope) (schema.Activity, error) {
	var a schema.Activity
	if env.Header.Type != schema.EventActivity {
		return a, exception.ErrEnvelopeType
	}
	if err := api.Unmarshal(env.Payload, &a); err != nil {
		return a, errors.Wrap(err, "unmarshal activity")
	}
	return a, nil
}

// DecodeNotification extracts a notification payload.
func DecodeNotification(env Envelope) (schema.Notification, error) {
	var n schema.Notification
	if env.Header.Type != schema.EventNotification {
		return n, exception.ErrEnvelopeType
	}
	if err := api.Unmarshal(env.Payload, &n); err != nil {
		return n, errors.Wrap(err, "unmarshal notification")
	}
	return n, nil
}
