// FILE: tunable/decode.go
package tunable

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// ScanTag is the struct tag Scan reads field keys from.
const ScanTag = "spec"

var (
	colorType  = reflect.TypeOf(Color{})
	stringType = reflect.TypeOf("")
)

// Scan decodes the current values into target, a non-nil pointer to a struct
// or map. Struct fields name their key with the `spec:"Key"` tag. Besides
// the usual numeric conversions, color strings decode into Color fields,
// Colors decode into string fields in canonical form, and bools decode into
// numeric fields as 0 or 1.
func (s *Spec) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          ScanTag,
		WeaklyTypedInput: true,
		DecodeHook:       scanDecodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(s.Snapshot()); err != nil {
		return fmt.Errorf("scan of spec %s failed: %w", s.name, err)
	}
	return nil
}

func scanDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		stringToColorHookFunc(),
		colorToStringHookFunc(),
		boolToNumberHookFunc(),
	)
}

// stringToColorHookFunc parses color text into Color fields
func stringToColorHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != colorType {
			return data, nil
		}
		return ParseColor(data.(string))
	}
}

// colorToStringHookFunc renders Color values into string fields
func colorToStringHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f != colorType || t != stringType {
			return data, nil
		}
		return data.(Color).String(), nil
	}
}

// boolToNumberHookFunc maps switches onto numeric metrics
func boolToNumberHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.Bool {
			return data, nil
		}
		switch t.Kind() {
		case reflect.Float32, reflect.Float64,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if data.(bool) {
				return 1, nil
			}
			return 0, nil
		}
		return data, nil
	}
}
