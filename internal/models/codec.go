package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// numberLiteral is the JSON number grammar from RFC 8259.
var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// IsNumberLiteral reports whether s is a valid JSON number.
func IsNumberLiteral(s string) bool {
	return numberLiteral.MatchString(s)
}

// MarshalJSON encodes v compactly, keeping object key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf, "", ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent encodes v with one member per line, keeping key order.
func MarshalIndent(v Value, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes exactly one JSON value from data.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := Decode(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON value")
	}
	*v = val
	return nil
}

// Decode reads the next JSON value from dec token by token so that
// object member order is preserved. Callers should enable UseNumber on
// dec; float64 tokens are still accepted.
func Decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case float64:
		return Float(t), nil
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T, want string", keyTok)
				}
				member, err := Decode(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, member)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindObject, obj: obj}, nil
		case '[':
			arr := make([]Value, 0)
			for dec.More() {
				item, err := Decode(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: KindArray, arr: arr}, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

func (v Value) encode(buf *bytes.Buffer, prefix, indent string) error {
	return v.encodeDepth(buf, prefix, indent, 0)
}

func (v Value) encodeDepth(buf *bytes.Buffer, prefix, indent string, depth int) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if !IsNumberLiteral(v.s) {
			return fmt.Errorf("invalid number literal %q", v.s)
		}
		buf.WriteString(v.s)
	case KindString:
		writeString(buf, v.s)
	case KindArray:
		if len(v.arr) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, prefix, indent, depth+1)
			if err := item.encodeDepth(buf, prefix, indent, depth+1); err != nil {
				return err
			}
		}
		newline(buf, prefix, indent, depth)
		buf.WriteByte(']')
	case KindObject:
		obj := v.Object()
		if obj.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, prefix, indent, depth+1)
			writeString(buf, k)
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			if err := obj.values[k].encodeDepth(buf, prefix, indent, depth+1); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
		}
		newline(buf, prefix, indent, depth)
		buf.WriteByte('}')
	}
	return nil
}

func newline(buf *bytes.Buffer, prefix, indent string, depth int) {
	if indent == "" && prefix == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(prefix)
	buf.WriteString(strings.Repeat(indent, depth))
}

// writeString quotes s without the HTML escaping json.Marshal applies,
// so placeholders such as "<new>" stay readable in saved files.
func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}
