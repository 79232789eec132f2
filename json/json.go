// Package json encodes through json-iterator in standard library compatible
// mode and fills `default` tags of struct pointers before encoding or
// decoding, so cached variant records and API payloads carry the same
// defaults as the config structs.
package json

import (
	"io"
	"reflect"

	"github.com/creasty/defaults"
	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// withDefaults runs defaults.Set when v is a non-nil pointer to a struct.
// Maps, slices and struct values pass through untouched.
func withDefaults(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	return defaults.Set(v)
}

func Marshal(v any) ([]byte, error) {
	if err := withDefaults(v); err != nil {
		return nil, err
	}
	return api.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	if err := withDefaults(v); err != nil {
		return nil, err
	}
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal fills defaults first; fields present in data win, explicit
// zero values included.
func Unmarshal(data []byte, v any) error {
	if err := withDefaults(v); err != nil {
		return err
	}
	return api.Unmarshal(data, v)
}

// Encoder is a jsoniter stream encoder with defaults applied per value.
type Encoder struct {
	*jsoniter.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{Encoder: api.NewEncoder(w)}
}

func (e *Encoder) Encode(v any) error {
	if err := withDefaults(v); err != nil {
		return err
	}
	return e.Encoder.Encode(v)
}

// Decoder is the reading counterpart of Encoder.
type Decoder struct {
	*jsoniter.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{Decoder: api.NewDecoder(r)}
}

func (d *Decoder) Decode(v any) error {
	if err := withDefaults(v); err != nil {
		return err
	}
	return d.Decoder.Decode(v)
}
