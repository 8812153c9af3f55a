package refl

import (
	"iter"
	"reflect"
	"strings"
)

func IterFields(ty reflect.Type) iter.Seq[reflect.StructField] {
	return func(yield func(reflect.StructField) bool) {
		for idx := range ty.NumField() {
			if !yield(ty.Field(idx)) {
				return
			}
		}
	}
}

// FieldByName looks up an exported field of a struct value. The name is
// matched exactly first, then case insensitive.
func FieldByName(value reflect.Value, name string) (reflect.Value, bool) {
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, false
		}

		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	var fallback []int
	for field := range IterFields(value.Type()) {
		if !field.IsExported() {
			continue
		}

		if field.Name == name {
			return value.FieldByIndex(field.Index), true
		}

		if fallback == nil && strings.EqualFold(field.Name, name) {
			fallback = field.Index
		}
	}

	if fallback != nil {
		return value.FieldByIndex(fallback), true
	}

	return reflect.Value{}, false
}

// Assign stores value into target, converting it if the types are convertible.
func Assign(target reflect.Value, value any) bool {
	if !target.CanSet() {
		return false
	}

	if value == nil {
		target.SetZero()
		return true
	}

	rValue := reflect.ValueOf(value)
	switch {
	case rValue.Type().AssignableTo(target.Type()):
		target.Set(rValue)
	case rValue.Type().ConvertibleTo(target.Type()) && convertible(rValue.Kind(), target.Kind()):
		target.Set(rValue.Convert(target.Type()))
	default:
		return false
	}

	return true
}

// convertible rejects conversions reflect allows but that change meaning, like int to string.
func convertible(from, to reflect.Kind) bool {
	return isNumber(from) == isNumber(to)
}

func isNumber(kind reflect.Kind) bool {
	return kind >= reflect.Int && kind <= reflect.Complex128
}
