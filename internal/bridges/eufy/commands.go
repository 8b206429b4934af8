package eufy

import (
	"fmt"
	"math"
	"sort"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/camera"
	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/params"
)

// Parameter helpers decode the loosely typed JSON parameters of a command.
// Numbers arrive as float64 after json.Unmarshal.

// commandLabel bounds metric label values to the known command names.
func commandLabel(name string) string {
	for _, c := range Commands {
		if c == name {
			return name
		}
	}
	return "unknown"
}

// toggle runs on or off depending on the boolean "on" parameter.
func toggle(p map[string]any, on, off func() error) error {
	v, err := boolParam(p, "on")
	if err != nil {
		return err
	}
	if v {
		return on()
	}
	return off()
}

func boolParam(p map[string]any, key string) (bool, error) {
	raw, ok := p[key]
	if !ok {
		return false, fmt.Errorf("%w: %q is required", ErrInvalidParameters, key)
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q must be a boolean, got %T", ErrInvalidParameters, key, raw)
	}
	return v, nil
}

func intParam(p map[string]any, key string) (int, error) {
	raw, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q is required", ErrInvalidParameters, key)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %q must be a whole number, got %v", ErrInvalidParameters, key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: %q must be a number, got %T", ErrInvalidParameters, key, raw)
	}
}

// enumParam resolves p[key] against the enumeration bound to attr on the
// camera's family. Members may be given by name or by ordinal.
func enumParam(cam *camera.Camera, attr string, p map[string]any, key string) (params.EnumValue, error) {
	binding, err := cam.Schema().Lookup(attr)
	if err != nil {
		return params.EnumValue{}, fmt.Errorf("%w: %s", camera.ErrUnsupported, attr)
	}
	set := binding.Rule.EnumSet()
	if set == nil {
		return params.EnumValue{}, fmt.Errorf("%w: %s is not an enumeration on %s", ErrInvalidParameters, attr, cam.Family())
	}

	raw, ok := p[key]
	if !ok {
		return params.EnumValue{}, fmt.Errorf("%w: %q is required", ErrInvalidParameters, key)
	}

	var (
		member params.EnumValue
		found  bool
	)
	switch v := raw.(type) {
	case string:
		member, found = set.Member(v)
	case float64:
		if v == math.Trunc(v) {
			member, found = set.ByOrdinal(int(v))
		}
	}
	if !found {
		return params.EnumValue{}, fmt.Errorf("%w: %v is not a member of %s", ErrInvalidParameters, raw, set.Name())
	}
	return member, nil
}

// assignmentsParam turns the set_params "params" object into assignments,
// ordered by name so uploads are deterministic.
func assignmentsParam(p map[string]any) ([]params.Assignment, error) {
	raw, ok := p["params"]
	if !ok {
		return nil, fmt.Errorf("%w: %q is required", ErrInvalidParameters, "params")
	}
	values, ok := raw.(map[string]any)
	if !ok || len(values) == 0 {
		return nil, fmt.Errorf("%w: %q must be a non-empty object", ErrInvalidParameters, "params")
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]params.Assignment, 0, len(names))
	for _, name := range names {
		out = append(out, params.Set(name, values[name]))
	}
	return out, nil
}
