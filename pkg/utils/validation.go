package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldErrors is the key used for errors that do not belong to a single field.
const NonFieldErrors = "non_field_errors"

var setupOnce sync.Once

// SetupValidator makes gin's validator report JSON field names instead of Go ones.
func SetupValidator() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// ValidateStruct runs the binding rules of obj and returns a ValidationError on failure.
func ValidateStruct(obj interface{}) error {
	SetupValidator()
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return TranslateBindError(err)
	}
	return nil
}

// ValidateVar checks a single value against a validator tag and records failures under field.
func ValidateVar(errs FieldErrors, field string, value interface{}, tag string) {
	SetupValidator()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	err := v.Var(value, tag)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			errs.Add(field, fieldMessage(fe))
		}
	}
}

// TranslateBindError converts the errors gin binding produces into a field-scoped ValidationError.
func TranslateBindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := FieldErrors{}
		for _, fe := range verrs {
			fields.Add(fe.Field(), fieldMessage(fe))
		}
		return ValidationErrors(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return ValidationError(typeErr.Field, typeMessage(typeErr.Type))
	}

	if errors.Is(err, io.EOF) {
		return ValidationError(NonFieldErrors, "Request body is empty.")
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return ValidationError(NonFieldErrors, "Malformed JSON.")
	}

	return ValidationError(NonFieldErrors, err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "min":
		if isText {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	}
	return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
}

func typeMessage(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return "A valid number is required."
	case reflect.Bool:
		return "Must be a valid boolean."
	}
	return "Not a valid string."
}
