package jsonv

import (
	"bytes"
	"encoding/json"

	"github.com/buger/jsonparser"

	"github.com/teranos/corrfill/errors"
)

// Parse decodes a single JSON document. Object members keep document order;
// a key repeated inside one object keeps its first position and its last
// value. Malformed input yields an error wrapping errors.ErrInvalidRequest.
func Parse(data []byte) (Value, error) {
	// jsonparser skips over trailing commas and raw control characters
	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Value{}, errors.WrapInvalidRequest(err, "parse json")
	}
	raw, dataType, _, err := jsonparser.Get(doc)
	if err != nil {
		return Value{}, errors.WrapInvalidRequest(err, "parse json")
	}
	return decode(raw, dataType)
}

// MustParse is Parse for literals known to be valid; it panics on error.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func decode(raw []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.Null:
		return Null(), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, errors.WrapInvalidRequest(err, "parse json boolean")
		}
		return Bool(b), nil

	case jsonparser.Number:
		return Number(string(raw)), nil

	case jsonparser.String:
		s, err := unquote(raw)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil

	case jsonparser.Array:
		return decodeArray(raw)

	case jsonparser.Object:
		return decodeObject(raw)
	}

	return Value{}, errors.NewInvalidRequestError("parse json: unknown value type %v", dataType)
}

func decodeArray(raw []byte) (Value, error) {
	elems := []Value{}
	var firstErr error

	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		elem, err := decode(value, dataType)
		if err != nil {
			firstErr = err
			return
		}
		elems = append(elems, elem)
	})
	if firstErr != nil {
		return Value{}, firstErr
	}
	if err != nil {
		return Value{}, errors.WrapInvalidRequest(err, "parse json array")
	}
	return Array(elems...), nil
}

func decodeObject(raw []byte) (Value, error) {
	obj := NewObject()

	err := jsonparser.ObjectEach(raw, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		member, err := decode(value, dataType)
		if err != nil {
			return err
		}
		obj.Set(string(key), member)
		return nil
	})
	if errors.Is(err, jsonparser.MalformedStringEscapeError) {
		return decodeObjectTokens(raw)
	}
	if err != nil {
		if errors.IsInvalidRequestError(err) {
			return Value{}, err
		}
		return Value{}, errors.WrapInvalidRequest(err, "parse json object")
	}
	return ObjectValue(obj), nil
}

// unquote decodes the contents of a JSON string. jsonparser refuses lone
// UTF-16 surrogate escapes; encoding/json turns them into U+FFFD.
func unquote(raw []byte) (string, error) {
	if s, err := jsonparser.ParseString(raw); err == nil {
		return s, nil
	}
	quoted := make([]byte, 0, len(raw)+2)
	quoted = append(append(append(quoted, '"'), raw...), '"')
	var s string
	if err := json.Unmarshal(quoted, &s); err != nil {
		return "", errors.WrapInvalidRequest(err, "parse json string")
	}
	return s, nil
}

// decodeObjectTokens walks an object whose keys jsonparser cannot unescape.
// Members still keep document order.
func decodeObjectTokens(raw []byte) (Value, error) {
	obj := NewObject()
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return Value{}, errors.WrapInvalidRequest(err, "parse json object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, errors.WrapInvalidRequest(err, "parse json object")
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, errors.NewInvalidRequestError("parse json object: unexpected token %v", tok)
		}
		var member json.RawMessage
		if err := dec.Decode(&member); err != nil {
			return Value{}, errors.WrapInvalidRequest(err, "parse json object")
		}
		v, err := Parse(member)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)
	}
	return ObjectValue(obj), nil
}
