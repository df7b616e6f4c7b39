package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

type field struct {
	column string
	value  any
}

// Columns lists the db tag names of model in declaration order.
func Columns(model any) []string {
	fields, err := taggedFields(model)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.column)
	}
	return out
}

func taggedFields(model any) ([]field, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", value.Kind())
	}

	typ := value.Type()
	out := make([]field, 0, typ.NumField())
	for i := range typ.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		out = append(out, field{column: column, value: value.Field(i).Interface()})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("model %s has no db columns", typ.Name())
	}
	return out, nil
}
