package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"
)

// DecodeJSON parses a single JSON document into a Value, keeping object keys
// in document order. Duplicate keys are allowed; the last one wins.
func DecodeJSON(data []byte) (Value, error) {
	dec := newDecoder(data)
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			return Value{}, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return Value{}, err
	}
	return v, nil
}

// DecodeJSONStream parses a stream of whitespace separated JSON documents.
func DecodeJSONStream(data []byte) ([]Value, error) {
	dec := newDecoder(data)
	var out []Value
	for {
		if dec.PeekKind() == 0 {
			if _, err := dec.ReadToken(); errors.Is(err, io.EOF) {
				return out, nil
			} else if err != nil {
				return nil, err
			}
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", len(out), err)
		}
		out = append(out, v)
	}
}

func newDecoder(data []byte) *jsontext.Decoder {
	return jsontext.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true))
}

func decodeValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, err
	}
	switch tok.Kind() {
	case 'n':
		return Null(), nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return Number(tok.Float()), nil
	case '[':
		items := []Value{}
		for dec.PeekKind() != ']' {
			item, err := decodeValue(dec)
			if err != nil {
				return Value{}, fmt.Errorf("read array element: %w", err)
			}
			items = append(items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, fmt.Errorf("read array close: %w", err)
		}
		return sequenceOf(items), nil
	case '{':
		var entries []Entry
		for dec.PeekKind() != '}' {
			keyTok, err := dec.ReadToken()
			if err != nil {
				return Value{}, fmt.Errorf("read object key: %w", err)
			}
			key := keyTok.String()
			val, err := decodeValue(dec)
			if err != nil {
				return Value{}, fmt.Errorf("read object value for key %q: %w", key, err)
			}
			entries = append(entries, Entry{Key: key, Value: val})
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, fmt.Errorf("read object close: %w", err)
		}
		return Mapping(entries...), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok.Kind())
	}
}

// EncodeJSON writes v as JSON with mapping keys in order. An empty indent
// produces compact output. Non-finite numbers and opaque values are written
// as strings.
func EncodeJSON(v Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	var opts []jsontext.Options
	if indent != "" {
		opts = append(opts, jsontext.WithIndent(indent))
	}
	enc := jsontext.NewEncoder(&buf, opts...)
	if err := encodeValue(enc, v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeValue(enc *jsontext.Encoder, v Value) error {
	switch v.kind {
	case KindNull:
		return enc.WriteToken(jsontext.Null)
	case KindBool:
		return enc.WriteToken(jsontext.Bool(v.b))
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return enc.WriteToken(jsontext.String(FormatNumber(v.n)))
		}
		return enc.WriteToken(jsontext.Float(v.n))
	case KindString:
		return enc.WriteToken(jsontext.String(v.s))
	case KindSequence:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range v.items {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	case KindMapping:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, e := range v.entries {
			if err := enc.WriteToken(jsontext.String(e.Key)); err != nil {
				return err
			}
			if err := encodeValue(enc, e.Value); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	default:
		return enc.WriteToken(jsontext.String(Stringify(v)))
	}
}

// Quote returns s as a JSON string literal.
func Quote(s string) string {
	out, err := jsontext.AppendQuote(nil, s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(out)
}
