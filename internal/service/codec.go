package service

import (
	"encoding/json"
	"fmt"
)

// jsonCodec serializes request and response messages as plain JSON. The API
// has no protobuf schema; registering this codec under the standard "json"
// name lets Connect clients speak application/json against ordinary structs.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
