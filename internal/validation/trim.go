package validation

import (
	"reflect"
	"strings"
)

// TrimStrings trims surrounding whitespace from every exported string and
// *string field of the struct s points to, descending into nested structs.
func TrimStrings(s any) {
	trimValue(reflect.ValueOf(s))
}

func trimValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			trimValue(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				trimValue(v.Field(i))
			}
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	}
}
