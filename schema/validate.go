package schema

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	ret := validator.New(validator.WithRequiredStructEnabled())
	ret.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return ret
}

// Validate checks struct values against their `validate` tags; non struct values pass.
func Validate(v interface{}) error {
	return ValidateAs(typeName(v), v)
}

// ValidateAs validates v reporting failures under the given type name.
func ValidateAs(name string, v interface{}) error {
	value := reflect.ValueOf(v)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return &SchemaError{Type: name, Err: errors.New("empty value")}
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	ret := &SchemaError{Type: name, Err: err}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		ret.Field = fieldErrors[0].Field()
		ret.Err = errors.New("failed on '" + fieldErrors[0].Tag() + "' rule")
	}
	return ret
}

func typeName(v interface{}) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
