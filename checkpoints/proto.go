package checkpoints

import (
	"encoding/json"
	"fmt"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// saveProto saves the checkpoint as a binary protobuf Struct. The checkpoint
// is mapped through its JSON representation, so the two formats stay
// field-for-field identical.
func (cs *CheckpointSaver) saveProto(checkpoint *Checkpoint, path string) error {
	raw, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("failed to decode checkpoint fields: %v", err)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("failed to build protobuf struct: %v", err)
	}

	data, err := proto.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal protobuf checkpoint: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %v", err)
	}
	return nil
}

// loadProto loads a checkpoint from binary protobuf format.
func (cs *CheckpointSaver) loadProto(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %v", err)
	}

	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal protobuf checkpoint: %v", err)
	}

	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkpoint fields: %v", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(raw, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}
	return &checkpoint, nil
}
