package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// assign copies a loaded value into dest, directly when the types line up
// and through JSON otherwise.
func assign(dest, value any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("cache destination must be a non-nil pointer, got %T", dest)
	}
	if value == nil {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
		return nil
	}
	lv := reflect.ValueOf(value)
	if lv.Type().AssignableTo(rv.Elem().Type()) {
		rv.Elem().Set(lv)
		return nil
	}
	if lv.Kind() == reflect.Pointer && !lv.IsNil() && lv.Elem().Type().AssignableTo(rv.Elem().Type()) {
		rv.Elem().Set(lv.Elem())
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}
	return json.Unmarshal(data, dest)
}
