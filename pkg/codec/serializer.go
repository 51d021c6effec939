package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Serializer names accepted by NewSerializer.
const (
	SerializerJSON = "json"
	SerializerGob  = "gob"
)

// Serializer converts session data to the plaintext that gets signed and encrypted.
type Serializer interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// NewSerializer resolves a serializer by name.
func NewSerializer(name string) (Serializer, error) {
	switch name {
	case SerializerJSON, "":
		return jsonSerializer{}, nil
	case SerializerGob:
		return gobSerializer{}, nil
	default:
		return nil, fmt.Errorf("%w: serializer %q", ErrUnknownScheme, name)
	}
}

type jsonSerializer struct{}

func (jsonSerializer) Name() string { return SerializerJSON }

func (jsonSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// gobSerializer keeps Go types intact at the cost of larger payloads.
// Interface values inside Data must be registered with gob.Register.
type gobSerializer struct{}

func (gobSerializer) Name() string { return SerializerGob }

func (gobSerializer) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobSerializer) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
