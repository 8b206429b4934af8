package params

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the value shape of a parameter code.
type Kind int

// Value kinds.
const (
	KindInt Kind = iota + 1
	KindSwitch
	KindText
	KindEnum
	KindObject
	KindJSON
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindSwitch:
		return "switch"
	case KindText:
		return "text"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Polarity is the on/off convention of a switch code.
type Polarity int

const (
	// PolarityNormal encodes ON as 1 and OFF as 0.
	PolarityNormal Polarity = iota

	// PolarityFlipped encodes ON as 0 and OFF as 1.
	PolarityFlipped
)

// Wire switch values.
const (
	switchOne  = 1
	switchZero = 0
)

// Object is the decoded form of a structured parameter, keyed by semantic
// sub-field name.
type Object map[string]any

// Rule describes how one parameter code is encoded and decoded.
// Build rules with the constructors below; the zero Rule is invalid.
type Rule struct {
	kind     Kind
	polarity Polarity
	bounded  bool
	min, max int
	enum     *EnumSet
	fields   []Field
	base64   bool
}

// Field is a named sub-field of an object rule. Key is the JSON key used on
// the wire; Name is the semantic name exposed in Object.
type Field struct {
	Name string
	Key  string
	Rule Rule
}

// Int returns a rule for plain integer codes.
func Int() Rule {
	return Rule{kind: KindInt}
}

// IntRange returns an integer rule rejecting values outside [lo, hi].
func IntRange(lo, hi int) Rule {
	return Rule{kind: KindInt, bounded: true, min: lo, max: hi}
}

// Switch returns an on/off rule with ON=1.
func Switch() Rule {
	return Rule{kind: KindSwitch, polarity: PolarityNormal}
}

// FlippedSwitch returns an on/off rule with ON=0.
func FlippedSwitch() Rule {
	return Rule{kind: KindSwitch, polarity: PolarityFlipped}
}

// Text returns a pass-through string rule.
func Text() Rule {
	return Rule{kind: KindText}
}

// Enum returns a rule for codes carrying a member of set.
func Enum(set *EnumSet) Rule {
	return Rule{kind: KindEnum, enum: set}
}

// ObjectOf returns a rule for JSON object codes with the given sub-fields.
func ObjectOf(fields ...Field) Rule {
	return Rule{kind: KindObject, fields: fields}
}

// Base64ObjectOf is ObjectOf with the JSON text base64 encoded on the wire.
func Base64ObjectOf(fields ...Field) Rule {
	return Rule{kind: KindObject, fields: fields, base64: true}
}

// JSON returns a rule for free-form JSON codes. Numbers decode as float64,
// so integer inputs do not survive a round trip unchanged.
func JSON() Rule {
	return Rule{kind: KindJSON}
}

// Sub declares an object sub-field. It panics if rule is not scalar.
func Sub(name, key string, rule Rule) Field {
	if !rule.scalar() {
		panic(fmt.Sprintf("params: sub-field %q must use a scalar rule, got %s", name, rule.kind))
	}
	return Field{Name: name, Key: key, Rule: rule}
}

// Kind returns the value kind.
func (r Rule) Kind() Kind { return r.kind }

// Polarity returns the switch convention. Only meaningful for KindSwitch.
func (r Rule) Polarity() Polarity { return r.polarity }

// EnumSet returns the enumeration for KindEnum rules.
func (r Rule) EnumSet() *EnumSet { return r.enum }

// Fields returns the sub-fields of an object rule.
func (r Rule) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Base64 reports whether the object is base64 wrapped on the wire.
func (r Rule) Base64() bool { return r.base64 }

func (r Rule) scalar() bool {
	switch r.kind {
	case KindInt, KindSwitch, KindText, KindEnum:
		return true
	default:
		return false
	}
}

// Encode converts a semantic value into its wire representation.
func (r Rule) Encode(v any) (string, error) {
	switch r.kind {
	case KindInt:
		n, err := r.checkInt(v)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil

	case KindSwitch:
		on, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("%w: switch expects bool, got %T", ErrInvalidValue, v)
		}
		return strconv.Itoa(r.switchOrdinal(on)), nil

	case KindText:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%w: text expects string, got %T", ErrInvalidValue, v)
		}
		return s, nil

	case KindEnum:
		if r.enum == nil {
			return "", fmt.Errorf("%w: enum rule without a set", ErrInvalidValue)
		}
		m, err := r.enum.resolve(v)
		if err != nil {
			return "", err
		}
		return m.Wire(), nil

	case KindObject:
		return r.encodeObject(v)

	case KindJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		return string(b), nil

	default:
		return "", fmt.Errorf("%w: unsupported rule kind %d", ErrInvalidValue, r.kind)
	}
}

// Decode converts a raw wire value into its semantic value.
func (r Rule) Decode(raw string) (any, error) {
	switch r.kind {
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: integer %q: %w", ErrDecodingFailed, raw, err)
		}
		return n, nil

	case KindSwitch:
		return r.decodeSwitch(strings.TrimSpace(raw))

	case KindText:
		return raw, nil

	case KindEnum:
		if r.enum == nil {
			return nil, fmt.Errorf("%w: enum rule without a set", ErrDecodingFailed)
		}
		return r.enum.decodeWire(raw)

	case KindObject:
		return r.decodeObject(raw)

	case KindJSON:
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		var out any
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingFailed, err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unsupported rule kind %d", ErrDecodingFailed, r.kind)
	}
}

// checkInt coerces v to int and applies the range, if any.
func (r Rule) checkInt(v any) (int, error) {
	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: int expects an integer, got %T", ErrInvalidValue, v)
	}
	if r.bounded && (n < r.min || n > r.max) {
		return 0, fmt.Errorf("%w: %d outside [%d, %d]", ErrInvalidValue, n, r.min, r.max)
	}
	return n, nil
}

func (r Rule) switchOrdinal(on bool) int {
	if on == (r.polarity == PolarityNormal) {
		return switchOne
	}
	return switchZero
}

func (r Rule) decodeSwitch(raw string) (bool, error) {
	var n int
	switch strings.ToLower(raw) {
	case "1", "true":
		n = switchOne
	case "0", "false":
		n = switchZero
	default:
		return false, fmt.Errorf("%w: switch value %q", ErrDecodingFailed, raw)
	}
	return n == r.switchOrdinal(true), nil
}

// jsonValue converts a semantic scalar into the value embedded in an object.
func (r Rule) jsonValue(v any) (any, error) {
	switch r.kind {
	case KindInt:
		return r.checkInt(v)
	case KindSwitch:
		on, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: switch expects bool, got %T", ErrInvalidValue, v)
		}
		return r.switchOrdinal(on), nil
	case KindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: text expects string, got %T", ErrInvalidValue, v)
		}
		return s, nil
	case KindEnum:
		m, err := r.enum.resolve(v)
		if err != nil {
			return nil, err
		}
		return m.Ordinal, nil
	default:
		return nil, fmt.Errorf("%w: %s is not a scalar rule", ErrInvalidValue, r.kind)
	}
}

// fromJSON converts a value decoded from an object (numbers as json.Number)
// back into its semantic scalar.
func (r Rule) fromJSON(v any) (any, error) {
	switch r.kind {
	case KindInt:
		n, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: expected integer, got %v", ErrDecodingFailed, v)
		}
		return n, nil
	case KindSwitch:
		if b, ok := v.(bool); ok {
			return r.decodeSwitch(strconv.FormatBool(b))
		}
		n, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: expected switch, got %v", ErrDecodingFailed, v)
		}
		return r.decodeSwitch(strconv.Itoa(n))
	case KindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected string, got %v", ErrDecodingFailed, v)
		}
		return s, nil
	case KindEnum:
		n, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("%w: expected enum ordinal, got %v", ErrDecodingFailed, v)
		}
		return r.enum.decodeWire(strconv.Itoa(n))
	default:
		return nil, fmt.Errorf("%w: %s is not a scalar rule", ErrDecodingFailed, r.kind)
	}
}

func (r Rule) fieldByName(name string) (Field, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (r Rule) encodeObject(v any) (string, error) {
	var in map[string]any
	switch val := v.(type) {
	case nil:
		in = nil
	case Object:
		in = val
	case map[string]any:
		in = val
	default:
		return "", fmt.Errorf("%w: object expects a map, got %T", ErrInvalidValue, v)
	}

	var text []byte
	if in == nil {
		text = []byte("null")
	} else {
		wire := make(map[string]any, len(in))
		for name, fv := range in {
			f, ok := r.fieldByName(name)
			if !ok {
				return "", fmt.Errorf("%w: object has no sub-field %q", ErrInvalidValue, name)
			}
			jv, err := f.Rule.jsonValue(fv)
			if err != nil {
				return "", fmt.Errorf("sub-field %s: %w", name, err)
			}
			wire[f.Key] = jv
		}
		b, err := json.Marshal(wire)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		text = b
	}

	if r.base64 {
		return base64.StdEncoding.EncodeToString(text), nil
	}
	return string(text), nil
}

func (r Rule) decodeObject(raw string) (any, error) {
	text := []byte(strings.TrimSpace(raw))
	if len(text) == 0 {
		return nil, nil
	}
	if r.base64 {
		b, err := base64.StdEncoding.DecodeString(string(text))
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %w", ErrDecodingFailed, err)
		}
		text = b
	}

	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	var wire map[string]any
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: object: %w", ErrDecodingFailed, err)
	}
	if wire == nil {
		return nil, nil
	}

	out := make(Object, len(r.fields))
	for _, f := range r.fields {
		jv, present := wire[f.Key]
		if !present || jv == nil {
			continue
		}
		v, err := f.Rule.fromJSON(jv)
		if err != nil {
			return nil, fmt.Errorf("sub-field %s: %w", f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}

// toInt coerces Go and JSON numeric values to int. Floats must be integral.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return floatToInt(f)
		}
		return int(i), true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
