package params

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

// ─── Int ────────────────────────────────────────────────────────────

func TestIntEncode(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		value   any
		want    string
		wantErr bool
	}{
		{"int", Int(), 42, "42", false},
		{"negative", Int(), -1, "-1", false},
		{"int64", Int(), int64(7), "7", false},
		{"integral float", Int(), 3.0, "3", false},
		{"json number", Int(), json.Number("12"), "12", false},
		{"fractional float", Int(), 3.5, "", true},
		{"string", Int(), "3", "", true},
		{"bool", Int(), true, "", true},
		{"map", Int(), map[string]any{"a": 1}, "", true},
		{"in range", IntRange(0, 100), 100, "100", false},
		{"below range", IntRange(0, 100), -1, "", true},
		{"above range", IntRange(0, 100), 101, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rule.Encode(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Encode(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("Encode(%v) error = %v, want ErrInvalidValue", tt.value, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestIntDecode(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"1700000000", 1700000000, false},
		{" 5 ", 5, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Int().Decode(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrDecodingFailed) {
					t.Errorf("Decode(%q) error = %v, want ErrDecodingFailed", tt.raw, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %v, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

// ─── Switch ─────────────────────────────────────────────────────────

func TestSwitchPolarity(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		on   string
		off  string
	}{
		{"normal", Switch(), "1", "0"},
		{"flipped", FlippedSwitch(), "0", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			on, err := tt.rule.Encode(true)
			if err != nil || on != tt.on {
				t.Errorf("Encode(true) = %q, %v; want %q", on, err, tt.on)
			}
			off, err := tt.rule.Encode(false)
			if err != nil || off != tt.off {
				t.Errorf("Encode(false) = %q, %v; want %q", off, err, tt.off)
			}

			got, err := tt.rule.Decode(tt.on)
			if err != nil || got != true {
				t.Errorf("Decode(%q) = %v, %v; want true", tt.on, got, err)
			}
			got, err = tt.rule.Decode(tt.off)
			if err != nil || got != false {
				t.Errorf("Decode(%q) = %v, %v; want false", tt.off, got, err)
			}
		})
	}
}

func TestSwitchDecodeAcceptsBooleans(t *testing.T) {
	got, err := Switch().Decode("true")
	if err != nil || got != true {
		t.Errorf("Decode(true) = %v, %v", got, err)
	}
	got, err = FlippedSwitch().Decode("false")
	if err != nil || got != true {
		t.Errorf("flipped Decode(false) = %v, %v; want true", got, err)
	}
}

func TestSwitchRejects(t *testing.T) {
	if _, err := Switch().Encode(1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Encode(1) error = %v, want ErrInvalidValue", err)
	}
	for _, raw := range []string{"", "2", "on"} {
		if _, err := Switch().Decode(raw); !errors.Is(err, ErrDecodingFailed) {
			t.Errorf("Decode(%q) error = %v, want ErrDecodingFailed", raw, err)
		}
	}
}

// ─── Text ───────────────────────────────────────────────────────────

func TestText(t *testing.T) {
	got, err := Text().Encode("hello")
	if err != nil || got != "hello" {
		t.Errorf("Encode = %q, %v", got, err)
	}
	if _, err := Text().Encode(5); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Encode(5) error = %v, want ErrInvalidValue", err)
	}
	v, err := Text().Decode("")
	if err != nil || v != "" {
		t.Errorf("Decode(empty) = %v, %v", v, err)
	}
}

// ─── Enum ───────────────────────────────────────────────────────────

func TestEnumEncode(t *testing.T) {
	rule := Enum(MotionDetectionModes)
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{"member", MotionPersonAndPet, "3", false},
		{"name", "pet", "2", false},
		{"ordinal", 7, "7", false},
		{"none", MotionDetectionModes.None(), "-1", false},
		{"wrong set", SensitivityHigh, "", true},
		{"unknown name", "CAT", "", true},
		{"unknown ordinal", 42, "", true},
		{"bool", true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rule.Encode(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Encode(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidValue) {
					t.Errorf("Encode(%v) error = %v, want ErrInvalidValue", tt.value, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestEnumDecode(t *testing.T) {
	rule := Enum(DetectionSensitivities)
	got, err := rule.Decode("4")
	if err != nil || got != SensitivityHigh {
		t.Errorf("Decode(4) = %v, %v; want %v", got, err, SensitivityHigh)
	}
	got, err = rule.Decode("-1")
	if err != nil || got != DetectionSensitivities.None() {
		t.Errorf("Decode(-1) = %v, %v; want NONE", got, err)
	}
	for _, raw := range []string{"", "9", "HIGH"} {
		if _, err := rule.Decode(raw); !errors.Is(err, ErrDecodingFailed) {
			t.Errorf("Decode(%q) error = %v, want ErrDecodingFailed", raw, err)
		}
	}
}

func TestRecordingQualityTupleWire(t *testing.T) {
	rule := Enum(RecordingQualities)

	wire, err := rule.Encode(RecordingQuality1080P)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if wire != "[2]" {
		t.Errorf("Encode(1080P) = %q, want %q", wire, "[2]")
	}

	for _, raw := range []string{"[2]", "2"} {
		got, err := rule.Decode(raw)
		if err != nil {
			t.Fatalf("Decode(%q): %v", raw, err)
		}
		if got != RecordingQuality1080P {
			t.Errorf("Decode(%q) = %v, want %v", raw, got, RecordingQuality1080P)
		}
	}

	wire, _ = rule.Encode(RecordingQuality2K)
	if wire != "3" {
		t.Errorf("Encode(2K) = %q, want 3", wire)
	}
}

func TestTimeFormatOrdinalCollision(t *testing.T) {
	rule := Enum(TimeFormats)
	wire, err := rule.Encode(TimeFormat12H)
	if err != nil || wire != "0" {
		t.Fatalf("Encode(12H) = %q, %v; want 0", wire, err)
	}
	got, err := rule.Decode(wire)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != TimeFormat24H {
		t.Errorf("Decode(0) = %v, want first declared member %v", got, TimeFormat24H)
	}
}

func TestNewEnumSetPanics(t *testing.T) {
	tests := []struct {
		name    string
		members []EnumValue
	}{
		{"foreign member", []EnumValue{{Set: "other", Name: "A", Ordinal: 1}}},
		{"duplicate name", []EnumValue{{Set: "s", Name: "A", Ordinal: 1}, {Set: "s", Name: "A", Ordinal: 2}}},
		{"shadows none", []EnumValue{{Set: "s", Name: "NONE", Ordinal: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewEnumSet did not panic")
				}
			}()
			NewEnumSet("s", tt.members...)
		})
	}
}

// ─── Object ─────────────────────────────────────────────────────────

func TestSnoozeModeRoundTrip(t *testing.T) {
	in := Object{SnoozeAccountID: "user-1", SnoozeTime: 3600}

	wire, err := snoozeMode.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	text, err := base64.StdEncoding.DecodeString(wire)
	if err != nil {
		t.Fatalf("wire is not base64: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(text, &payload); err != nil {
		t.Fatalf("wire is not JSON: %v", err)
	}
	if payload["account_id"] != "user-1" || payload["snooze_time"] != float64(3600) {
		t.Errorf("payload = %v", payload)
	}

	got, err := snoozeMode.Decode(wire)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("Decode = %#v, want %#v", got, in)
	}
}

func TestObjectNil(t *testing.T) {
	wire, err := snoozeMode.Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil): %v", err)
	}
	got, err := snoozeMode.Decode(wire)
	if err != nil || got != nil {
		t.Errorf("Decode(%q) = %v, %v; want nil", wire, got, err)
	}
	got, err = snoozeMode.Decode("")
	if err != nil || got != nil {
		t.Errorf("Decode(empty) = %v, %v; want nil", got, err)
	}
}

func TestObjectRejects(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"not a map", 5},
		{"unknown field", Object{"extra": 1}},
		{"wrong field type", Object{SnoozeTime: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := snoozeMode.Encode(tt.value); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Encode(%v) error = %v, want ErrInvalidValue", tt.value, err)
			}
		})
	}

	if _, err := snoozeMode.Decode("%%%"); !errors.Is(err, ErrDecodingFailed) {
		t.Errorf("Decode(bad base64) error = %v, want ErrDecodingFailed", err)
	}
}

func TestObjectSubFieldEncoding(t *testing.T) {
	rule := ObjectOf(
		Sub("ring", "r", Switch()),
		Sub("style", "s", Enum(NotificationExtensions)),
	)
	wire, err := rule.Encode(Object{"ring": true, "style": NotificationFullEffect})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if wire != `{"r":1,"s":3}` {
		t.Errorf("Encode = %s", wire)
	}

	got, err := rule.Decode(`{"r":0,"s":2,"ignored":true}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := Object{"ring": false, "style": NotificationIncludeThumbnail}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %#v, want %#v", got, want)
	}
}

func TestSubPanicsOnNonScalar(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Sub did not panic for a JSON rule")
		}
	}()
	Sub("zones", "z", JSON())
}

// ─── JSON ───────────────────────────────────────────────────────────

func TestJSONRule(t *testing.T) {
	wire, err := JSON().Encode([]any{"a", 1})
	if err != nil || wire != `["a",1]` {
		t.Fatalf("Encode = %q, %v", wire, err)
	}
	got, err := JSON().Decode(wire)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []any{"a", float64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %#v, want %#v", got, want)
	}
	if _, err := JSON().Encode(make(chan int)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Encode(chan) error = %v, want ErrInvalidValue", err)
	}
	if _, err := JSON().Decode("{"); !errors.Is(err, ErrDecodingFailed) {
		t.Errorf("Decode({) error = %v, want ErrDecodingFailed", err)
	}
}
