package proto

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// Frame layout: [kind: 4 bytes big-endian][json payload].
const HeaderSize = 4

var ErrShortFrame = errors.New("frame shorter than header")

// Encode marshals v and prepends the kind tag.
func Encode(kind Kind, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[:HeaderSize], uint32(kind))
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// DecodeKind splits a frame into its kind tag and payload bytes.
// The payload slice aliases the frame.
func DecodeKind(frame []byte) (Kind, []byte, error) {
	if len(frame) < HeaderSize {
		return KindInvalid, nil, ErrShortFrame
	}
	return Kind(binary.BigEndian.Uint32(frame[:HeaderSize])), frame[HeaderSize:], nil
}

// DecodePayload unmarshals payload bytes into v.
func DecodePayload(payload []byte, v any) error {
	return json.Unmarshal(payload, v)
}
