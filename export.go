// FILE: tunable/export.go
package tunable

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var exportPrettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Export renders the current values as a manifest: one object per key in
// declaration order, with colors in canonical rgba form. Labels, declared
// bounds and any extra fields of the original entries are preserved.
func (s *Spec) Export() ([]byte, error) {
	return s.export(false)
}

// ExportLegacy is Export with each colorValue written as the array of
// display representations older tuning exports produced.
func (s *Spec) ExportLegacy() ([]byte, error) {
	return s.export(true)
}

type exportItem struct {
	key      string
	label    string
	value    Value
	min, max *float64
	raw      []byte
}

func (s *Spec) export(legacy bool) ([]byte, error) {
	s.mutex.RLock()
	items := make([]exportItem, 0, len(s.order))
	for _, key := range s.order {
		e := s.entries[key]
		items = append(items, exportItem{
			key:   e.key,
			label: e.label,
			value: e.value,
			min:   e.min,
			max:   e.max,
			raw:   e.raw,
		})
	}
	s.mutex.RUnlock()

	objects := make([][]byte, 0, len(items))
	for _, it := range items {
		obj, err := it.object(legacy)
		if err != nil {
			return nil, fmt.Errorf("failed to export key %s: %w", it.key, err)
		}
		objects = append(objects, obj)
	}

	out := append([]byte{'['}, bytes.Join(objects, []byte{','})...)
	out = append(out, ']')
	return pretty.PrettyOptions(out, exportPrettyOptions), nil
}

// object patches the entry's original manifest object with its current state.
func (it exportItem) object(legacy bool) ([]byte, error) {
	obj := []byte("{}")
	if len(it.raw) > 0 {
		obj = append([]byte(nil), it.raw...)
	}

	var err error
	set := func(path string, v any) {
		if err == nil {
			obj, err = sjson.SetBytes(obj, path, v)
		}
	}
	del := func(path string) {
		if err == nil && gjson.GetBytes(obj, path).Exists() {
			obj, err = sjson.DeleteBytes(obj, path)
		}
	}

	set(fieldKey, it.key)
	if it.label != it.key || gjson.GetBytes(obj, fieldLabel).Exists() {
		set(fieldLabel, it.label)
	}

	switch it.value.Kind() {
	case KindDouble:
		set(fieldSlider, it.value.Double())
		if it.min != nil {
			set(fieldSliderMin, *it.min)
		} else {
			del(fieldSliderMin)
		}
		if it.max != nil {
			set(fieldSliderMax, *it.max)
		} else {
			del(fieldSliderMax)
		}
	case KindBool:
		set(fieldSwitch, it.value.Bool())
	case KindColor:
		if legacy {
			set(fieldColor, it.value.Color().Representations())
		} else {
			set(fieldColor, it.value.Color().String())
		}
	}

	return obj, err
}
