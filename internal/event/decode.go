package event

import "encoding/json"

// DecodePayload extracts a typed payload from a published event. In-process
// delivery hands subscribers the concrete payload struct, so the common case
// is a plain type assertion; payloads that crossed a serialization boundary
// (the dead-letter log, an external transport) arrive as generic maps and
// take the JSON round-trip instead.
func DecodePayload[T any](payload interface{}) (T, error) {
	if typed, ok := payload.(T); ok {
		return typed, nil
	}

	var decoded T
	raw, err := json.Marshal(payload)
	if err != nil {
		return decoded, err
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return decoded, err
	}
	return decoded, nil
}
