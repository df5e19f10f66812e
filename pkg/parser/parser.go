package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Parse decodes a JSON document into a Value, preserving object member order.
// The standard map-based decoding cannot keep member order, so the document is
// walked through the decoder's token stream instead.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case string:
		return String(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	var members []Member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return Value{}, err
	}
	return Value{kind: KindObject, members: members}, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	var items []Value
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, val)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return Value{}, err
	}
	return Value{kind: KindArray, items: items}, nil
}
