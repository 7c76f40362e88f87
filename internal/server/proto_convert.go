package server

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	msgFrame    = "frame"
	msgSchedule = "schedule"
	msgError    = "error"
	msgPong     = "pong"
)

// encodeEnvelope wraps payload as {type, payload} in a protobuf Struct.
func encodeEnvelope(kind string, payload map[string]any) ([]byte, error) {
	envelope, err := structpb.NewStruct(map[string]any{
		"type":    kind,
		"payload": payload,
	})
	if err != nil {
		return nil, fmt.Errorf("build %s envelope: %w", kind, err)
	}
	data, err := proto.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}
	return data, nil
}

// decodeEnvelope is the inverse of encodeEnvelope.
func decodeEnvelope(data []byte) (string, map[string]any, error) {
	var envelope structpb.Struct
	if err := proto.Unmarshal(data, &envelope); err != nil {
		return "", nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	fields := envelope.AsMap()
	kind, _ := fields["type"].(string)
	if kind == "" {
		return "", nil, fmt.Errorf("envelope without type")
	}
	payload, _ := fields["payload"].(map[string]any)
	return kind, payload, nil
}
