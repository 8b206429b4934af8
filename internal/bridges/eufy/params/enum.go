package params

import (
	"fmt"
	"strconv"
	"strings"
)

// noneOrdinal is the ordinal every vendor enum reserves for "no value".
const noneOrdinal = -1

// EnumValue is a single member of a vendor enumeration.
//
// Values are comparable with ==. Decoding always yields the canonical member
// declared in the set, so compare against the exported package variables.
type EnumValue struct {
	Set     string `json:"set"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`

	// wire overrides the ordinal on the wire for members the vendor encodes
	// differently (see RecordingQuality1080P).
	wire string
}

// String returns "set.NAME".
func (v EnumValue) String() string {
	return v.Set + "." + v.Name
}

// Wire returns the wire representation of the member.
func (v EnumValue) Wire() string {
	if v.wire != "" {
		return v.wire
	}
	return strconv.Itoa(v.Ordinal)
}

// EnumSet is an ordered vendor enumeration.
//
// Ordinals are not required to be unique; lookups by ordinal return the first
// declared member, which makes such codes lossy on decode (see TimeFormats).
type EnumSet struct {
	name    string
	members []EnumValue
	byName  map[string]EnumValue
}

// NewEnumSet builds an enumeration from its members in declaration order and
// appends the NONE member (-1) shared by all vendor enums.
// It panics if a member belongs to another set or a name repeats.
func NewEnumSet(name string, members ...EnumValue) *EnumSet {
	s := &EnumSet{
		name:   name,
		byName: make(map[string]EnumValue, len(members)+1),
	}
	all := append(append([]EnumValue{}, members...), EnumValue{Set: name, Name: "NONE", Ordinal: noneOrdinal})
	for _, m := range all {
		if m.Set != name {
			panic(fmt.Sprintf("params: enum member %s declared in set %q", m, name))
		}
		if _, dup := s.byName[m.Name]; dup {
			panic(fmt.Sprintf("params: duplicate enum member %s", m))
		}
		s.byName[m.Name] = m
		s.members = append(s.members, m)
	}
	return s
}

// Name returns the set name.
func (s *EnumSet) Name() string {
	return s.name
}

// Members returns the members in declaration order, NONE last.
func (s *EnumSet) Members() []EnumValue {
	out := make([]EnumValue, len(s.members))
	copy(out, s.members)
	return out
}

// None returns the NONE member.
func (s *EnumSet) None() EnumValue {
	return s.byName["NONE"]
}

// Member looks a member up by name (case-insensitive).
func (s *EnumSet) Member(name string) (EnumValue, bool) {
	m, ok := s.byName[strings.ToUpper(strings.TrimSpace(name))]
	return m, ok
}

// ByOrdinal returns the first member declared with the given ordinal.
func (s *EnumSet) ByOrdinal(ordinal int) (EnumValue, bool) {
	for _, m := range s.members {
		if m.Ordinal == ordinal {
			return m, true
		}
	}
	return EnumValue{}, false
}

// resolve maps a caller-supplied value onto a canonical member.
// Accepted forms are an EnumValue of this set, a member name, or a known
// integer ordinal.
func (s *EnumSet) resolve(v any) (EnumValue, error) {
	switch val := v.(type) {
	case EnumValue:
		if val.Set != s.name {
			return EnumValue{}, fmt.Errorf("%w: %s is not a member of %s", ErrInvalidValue, val, s.name)
		}
		m, ok := s.byName[val.Name]
		if !ok {
			return EnumValue{}, fmt.Errorf("%w: unknown member %s", ErrInvalidValue, val)
		}
		return m, nil
	case string:
		m, ok := s.Member(val)
		if !ok {
			return EnumValue{}, fmt.Errorf("%w: %q is not a member of %s", ErrInvalidValue, val, s.name)
		}
		return m, nil
	}

	n, ok := toInt(v)
	if !ok {
		return EnumValue{}, fmt.Errorf("%w: %s expects an enum member, got %T", ErrInvalidValue, s.name, v)
	}
	m, ok := s.ByOrdinal(n)
	if !ok {
		return EnumValue{}, fmt.Errorf("%w: ordinal %d is not defined in %s", ErrInvalidValue, n, s.name)
	}
	return m, nil
}

// decodeWire maps a raw wire value onto a member. Member wire overrides are
// matched before falling back to the ordinal.
func (s *EnumSet) decodeWire(raw string) (EnumValue, error) {
	raw = strings.TrimSpace(raw)
	for _, m := range s.members {
		if m.wire != "" && m.wire == raw {
			return m, nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return EnumValue{}, fmt.Errorf("%w: %s ordinal %q: %w", ErrDecodingFailed, s.name, raw, err)
	}
	m, ok := s.ByOrdinal(n)
	if !ok {
		return EnumValue{}, fmt.Errorf("%w: ordinal %d is not defined in %s", ErrDecodingFailed, n, s.name)
	}
	return m, nil
}
