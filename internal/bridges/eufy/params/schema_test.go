package params

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// samples returns representative semantic values for a rule.
func samples(r Rule) []any {
	switch r.Kind() {
	case KindInt:
		return []any{0, 7}
	case KindSwitch:
		return []any{true, false}
	case KindText:
		return []any{"", "abc"}
	case KindEnum:
		var out []any
		for _, m := range r.EnumSet().Members() {
			out = append(out, m)
		}
		return out
	case KindObject:
		obj := Object{}
		for _, f := range r.Fields() {
			obj[f.Name] = samples(f.Rule)[1]
		}
		return []any{obj, nil}
	case KindJSON:
		return []any{map[string]any{"zone": "front"}, []any{"a", "b"}}
	default:
		return nil
	}
}

func TestRoundTripEveryBinding(t *testing.T) {
	for _, s := range Families() {
		for _, b := range s.Bindings() {
			for i, v := range samples(b.Rule) {
				t.Run(fmt.Sprintf("%s/%s/%d", s.Family(), b.Name, i), func(t *testing.T) {
					wire, err := s.Encode(b.Code, v)
					if err != nil {
						t.Fatalf("Encode(%d, %v): %v", b.Code, v, err)
					}
					got, err := s.Decode(b.Code, wire)
					if err != nil {
						t.Fatalf("Decode(%d, %q): %v", b.Code, wire, err)
					}
					if !reflect.DeepEqual(got, v) {
						t.Errorf("round trip %v -> %q -> %#v", v, wire, got)
					}
				})
			}
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		deviceType int
		want       Family
	}{
		{DeviceTypeIndoorCam, FamilyIndoorCam},
		{DeviceTypeDoorbell, FamilyDoorbell},
		{0, FamilyDefault},
		{1, FamilyDefault},
		{9999, FamilyDefault},
		{-3, FamilyDefault},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.deviceType), func(t *testing.T) {
			if got := Resolve(tt.deviceType).Family(); got != tt.want {
				t.Errorf("Resolve(%d) = %s, want %s", tt.deviceType, got, tt.want)
			}
		})
	}
}

func TestIndoorStatusLED(t *testing.T) {
	s := Resolve(DeviceTypeIndoorCam)
	got, err := s.Decode(6014, "1")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != true {
		t.Errorf("Decode(6014, \"1\") = %v, want true", got)
	}

	res := s.DecodeAll([]RawParameter{{Code: 6014, Value: "1"}})
	if res.Values[AttrStatusLED] != true {
		t.Errorf("Values[%s] = %v, want true", AttrStatusLED, res.Values[AttrStatusLED])
	}
}

func TestFacadeAttributesBound(t *testing.T) {
	// Every family used by the camera facade must bind the snooze and power
	// attributes.
	for _, s := range Families() {
		for _, name := range []string{AttrOpenDevice, AttrSnoozedAt, AttrSnoozeMode} {
			if _, err := s.Code(name); err != nil {
				t.Errorf("%s: %v", s.Family(), err)
			}
		}
	}
	for _, name := range []string{
		AttrStatusLED,
		AttrMotionDetectionSwitch, AttrMotionDetectionType, AttrMotionDetectionSensitivity,
		AttrSoundDetectionSwitch, AttrSoundDetectionType, AttrSoundDetectionSensitivity,
	} {
		if _, err := IndoorCam.Code(name); err != nil {
			t.Errorf("indoor_cam: %v", err)
		}
	}
}

func TestDecodeAllIsolatesFailures(t *testing.T) {
	s := IndoorCam
	raw := []RawParameter{
		{Code: 6014, Value: "1"},
		{Code: 6041, Value: "not-an-ordinal"},
		{Code: 6040, Value: "0"},
		{Code: 424242, Value: "mystery"},
		{Code: 2037, Value: "1700000000"},
	}

	res := s.DecodeAll(raw)

	want := map[string]any{
		AttrStatusLED:             true,
		AttrMotionDetectionSwitch: false,
		AttrSnoozedAt:             1700000000,
	}
	if !reflect.DeepEqual(res.Values, want) {
		t.Errorf("Values = %v, want %v", res.Values, want)
	}
	if len(res.Skipped) != 1 {
		t.Fatalf("Skipped = %v, want one entry", res.Skipped)
	}
	skip := res.Skipped[0]
	if skip.Code != 6041 || skip.Name != AttrMotionDetectionSensitivity || skip.Raw != "not-an-ordinal" {
		t.Errorf("Skipped[0] = %+v", skip)
	}
	if !errors.Is(skip, ErrDecodingFailed) {
		t.Errorf("Skipped[0] does not wrap ErrDecodingFailed: %v", skip)
	}
	if res.Unmapped[424242] != "mystery" {
		t.Errorf("Unmapped = %v", res.Unmapped)
	}
	if _, ok := res.Values[AttrMotionDetectionSensitivity]; ok {
		t.Error("failed parameter leaked into Values")
	}
}

func TestDecodeAllEmpty(t *testing.T) {
	res := Default.DecodeAll(nil)
	if len(res.Values) != 0 || len(res.Unmapped) != 0 || len(res.Skipped) != 0 {
		t.Errorf("DecodeAll(nil) = %+v", res)
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		attr    string
		value   any
		wantErr error
	}{
		{"unknown name", IndoorCam, "battery_level", 50, ErrUnknownAttribute},
		{"structured value on int code", IndoorCam, AttrSnoozedAt, map[string]any{"t": 1}, ErrInvalidValue},
		{"int on switch code", IndoorCam, AttrStatusLED, 1, ErrInvalidValue},
		{"out of range", Doorbell, "battery_level", 101, ErrInvalidValue},
		{"enum from another set", IndoorCam, AttrMotionDetectionType, DoorbellMotionAll, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.schema.EncodeNamed(tt.attr, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("EncodeNamed(%s, %v) error = %v, want %v", tt.attr, tt.value, err, tt.wantErr)
			}
		})
	}

	if _, err := IndoorCam.Encode(1, true); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Encode(unknown code) error = %v, want ErrUnknownAttribute", err)
	}
	if _, err := IndoorCam.Decode(1, "1"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Decode(unknown code) error = %v, want ErrUnknownAttribute", err)
	}
}

func TestEncodeAllIsAllOrNothing(t *testing.T) {
	out, err := IndoorCam.EncodeAll([]Assignment{
		Set(AttrStatusLED, true),
		Set(AttrMotionDetectionSensitivity, "EXTREME"),
	})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("EncodeAll error = %v, want ErrInvalidValue", err)
	}
	if out != nil {
		t.Errorf("EncodeAll returned %v on error", out)
	}

	out, err = IndoorCam.EncodeAll([]Assignment{
		Set(AttrStatusLED, false),
		Set(AttrMotionDetectionType, MotionPersonAndPet),
	})
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	want := []RawParameter{{Code: 6014, Value: "0"}, {Code: 6045, Value: "3"}}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("EncodeAll = %v, want %v", out, want)
	}
}

func TestFlippedPolarityBinding(t *testing.T) {
	p, err := Doorbell.EncodeNamed("audio_recording", true)
	if err != nil {
		t.Fatalf("EncodeNamed: %v", err)
	}
	if p.Code != 1288 || p.Value != "0" {
		t.Errorf("audio_recording on = %+v, want {1288 0}", p)
	}
}

func TestNameCodeBijection(t *testing.T) {
	for _, s := range Families() {
		for _, b := range s.Bindings() {
			code, err := s.Code(b.Name)
			if err != nil || code != b.Code {
				t.Errorf("%s: Code(%s) = %d, %v; want %d", s.Family(), b.Name, code, err, b.Code)
			}
			name, ok := s.NameOf(b.Code)
			if !ok || name != b.Name {
				t.Errorf("%s: NameOf(%d) = %q, %v; want %q", s.Family(), b.Code, name, ok, b.Name)
			}
		}
	}
}

func TestNewSchemaPanics(t *testing.T) {
	tests := []struct {
		name     string
		bindings []Binding
	}{
		{"duplicate name", []Binding{Bind("a", 1, Int()), Bind("a", 2, Int())}},
		{"duplicate code", []Binding{Bind("a", 1, Int()), Bind("b", 1, Int())}},
		{"empty name", []Binding{Bind("", 1, Int())}},
		{"zero rule", []Binding{{Name: "a", Code: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewSchema did not panic")
				}
			}()
			NewSchema("test", nil, tt.bindings...)
		})
	}
}
