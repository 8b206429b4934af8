package params

import (
	"errors"
	"fmt"
)

// Family identifies a device family sharing one parameter code scheme.
type Family string

// Known families.
const (
	FamilyDefault   Family = "default"
	FamilyIndoorCam Family = "indoor_cam"
	FamilyDoorbell  Family = "doorbell"
)

// RawParameter is a parameter as exchanged with the cloud.
type RawParameter struct {
	Code  int    `json:"param_type"`
	Value string `json:"param_value"`
}

// Assignment pairs a semantic attribute name with the value to write.
type Assignment struct {
	Name  string
	Value any
}

// Set is shorthand for Assignment{Name: name, Value: value}.
func Set(name string, value any) Assignment {
	return Assignment{Name: name, Value: value}
}

// Binding ties a semantic name to a code and its value rule.
type Binding struct {
	Name string
	Code int
	Rule Rule
}

// Bind declares a binding.
func Bind(name string, code int, rule Rule) Binding {
	return Binding{Name: name, Code: code, Rule: rule}
}

// DecodeResult is the outcome of decoding a batch of raw parameters.
type DecodeResult struct {
	// Values holds decoded parameters keyed by semantic name.
	Values map[string]any

	// Unmapped holds raw values for codes the schema does not bind.
	Unmapped map[int]string

	// Skipped lists parameters whose raw value could not be decoded.
	Skipped []*DecodeError
}

// Schema is the immutable set of bindings for one device family.
type Schema struct {
	family      Family
	deviceTypes []int
	bindings    []Binding
	byName      map[string]Binding
	byCode      map[int]Binding
}

// NewSchema builds a schema from its bindings.
//
// Names and codes must be unique within the family; a duplicate is a
// programming error and panics.
func NewSchema(family Family, deviceTypes []int, bindings ...Binding) *Schema {
	s := &Schema{
		family:      family,
		deviceTypes: append([]int(nil), deviceTypes...),
		bindings:    append([]Binding(nil), bindings...),
		byName:      make(map[string]Binding, len(bindings)),
		byCode:      make(map[int]Binding, len(bindings)),
	}
	for _, b := range bindings {
		if b.Name == "" {
			panic(fmt.Sprintf("params: %s binding for code %d has no name", family, b.Code))
		}
		if b.Rule.kind == 0 {
			panic(fmt.Sprintf("params: %s binding %q has no rule", family, b.Name))
		}
		if prev, dup := s.byName[b.Name]; dup {
			panic(fmt.Sprintf("params: %s binds %q to both %d and %d", family, b.Name, prev.Code, b.Code))
		}
		if prev, dup := s.byCode[b.Code]; dup {
			panic(fmt.Sprintf("params: %s binds code %d to both %q and %q", family, b.Code, prev.Name, b.Name))
		}
		s.byName[b.Name] = b
		s.byCode[b.Code] = b
	}
	return s
}

// Family returns the family the schema describes.
func (s *Schema) Family() Family {
	return s.family
}

// DeviceTypes returns the device types that resolve to this schema.
func (s *Schema) DeviceTypes() []int {
	return append([]int(nil), s.deviceTypes...)
}

// Names returns the bound attribute names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.bindings))
	for i, b := range s.bindings {
		names[i] = b.Name
	}
	return names
}

// Bindings returns all bindings in declaration order.
func (s *Schema) Bindings() []Binding {
	return append([]Binding(nil), s.bindings...)
}

// Lookup returns the binding for a semantic name.
func (s *Schema) Lookup(name string) (Binding, error) {
	b, ok := s.byName[name]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q is not defined for %s", ErrUnknownAttribute, name, s.family)
	}
	return b, nil
}

// Code returns the parameter code for a semantic name.
func (s *Schema) Code(name string) (int, error) {
	b, err := s.Lookup(name)
	if err != nil {
		return 0, err
	}
	return b.Code, nil
}

// NameOf returns the semantic name bound to a code.
func (s *Schema) NameOf(code int) (string, bool) {
	b, ok := s.byCode[code]
	return b.Name, ok
}

// Encode converts a semantic value into the wire value for code.
func (s *Schema) Encode(code int, value any) (string, error) {
	b, ok := s.byCode[code]
	if !ok {
		return "", fmt.Errorf("%w: code %d is not defined for %s", ErrUnknownAttribute, code, s.family)
	}
	wire, err := b.Rule.Encode(value)
	if err != nil {
		return "", fmt.Errorf("encoding %s (%d): %w", b.Name, b.Code, err)
	}
	return wire, nil
}

// EncodeNamed is Encode addressed by semantic name.
func (s *Schema) EncodeNamed(name string, value any) (RawParameter, error) {
	b, err := s.Lookup(name)
	if err != nil {
		return RawParameter{}, err
	}
	wire, err := s.Encode(b.Code, value)
	if err != nil {
		return RawParameter{}, err
	}
	return RawParameter{Code: b.Code, Value: wire}, nil
}

// Decode converts a raw wire value for code into its semantic value.
func (s *Schema) Decode(code int, raw string) (any, error) {
	b, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: code %d is not defined for %s", ErrUnknownAttribute, code, s.family)
	}
	v, err := b.Rule.Decode(raw)
	if err != nil {
		return nil, &DecodeError{Code: code, Name: b.Name, Raw: raw, Err: err}
	}
	return v, nil
}

// EncodeAll encodes a batch of assignments in order. It is all or nothing:
// the first unknown name or invalid value aborts the batch.
func (s *Schema) EncodeAll(assignments []Assignment) ([]RawParameter, error) {
	out := make([]RawParameter, 0, len(assignments))
	for _, a := range assignments {
		p, err := s.EncodeNamed(a.Name, a.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodeAll decodes a batch of raw parameters. A parameter that fails to
// decode is reported in Skipped and excluded from Values; it never stops
// the rest of the batch.
func (s *Schema) DecodeAll(raw []RawParameter) DecodeResult {
	res := DecodeResult{
		Values:   make(map[string]any, len(raw)),
		Unmapped: make(map[int]string),
	}
	for _, p := range raw {
		b, ok := s.byCode[p.Code]
		if !ok {
			res.Unmapped[p.Code] = p.Value
			continue
		}
		v, err := s.Decode(p.Code, p.Value)
		if err != nil {
			var de *DecodeError
			if !errors.As(err, &de) {
				de = &DecodeError{Code: p.Code, Name: b.Name, Raw: p.Value, Err: err}
			}
			res.Skipped = append(res.Skipped, de)
			continue
		}
		res.Values[b.Name] = v
	}
	return res
}
