package dto

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

// FieldError locates one rejected input, e.g. loc ["body","name"].
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrorResponse is the 422 body.
type ValidationErrorResponse struct {
	Detail []FieldError `json:"detail"`
}

var setupOnce sync.Once

// SetupValidator makes gin's validator report json names instead of Go
// field names and registers the update body rules. Safe to call more than
// once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
		v.RegisterStructValidation(validateUpdateTask, UpdateTaskRequest{})
	})
}

// name and completed are NOT NULL columns, so an explicit null is a type
// error rather than a clear.
func validateUpdateTask(sl validator.StructLevel) {
	r := sl.Current().Interface().(UpdateTaskRequest)
	switch {
	case r.Name.Null:
		sl.ReportError(r.Name, "name", "Name", "notnull", "string")
	case r.Name.Set && r.Name.Value == "":
		sl.ReportError(r.Name, "name", "Name", "min", "1")
	}
	if r.Completed.Null {
		sl.ReportError(r.Completed, "completed", "Completed", "notnull", "boolean")
	}
}

// BodyErrors converts a JSON bind error into a 422 body.
func BodyErrors(err error) ValidationErrorResponse {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &verrs):
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fromFieldError(fe))
		}
		return ValidationErrorResponse{Detail: out}
	case errors.As(err, &typeErr):
		kind := kindName(typeErr.Type)
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, typeErr.Field)
		}
		return single(FieldError{
			Loc:  loc,
			Msg:  "Input should be a valid " + kind,
			Type: kind + "_type",
		})
	case errors.Is(err, io.EOF):
		return single(FieldError{Loc: []string{"body"}, Msg: "Field required", Type: "missing"})
	case errors.As(err, &syntaxErr):
		return single(FieldError{
			Loc:  []string{"body", fmt.Sprint(syntaxErr.Offset)},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		})
	default:
		return single(FieldError{Loc: []string{"body"}, Msg: err.Error(), Type: "json_invalid"})
	}
}

// IntParseError reports a path or query value that is not an integer.
func IntParseError(in, name string) ValidationErrorResponse {
	return single(FieldError{
		Loc:  []string{in, name},
		Msg:  "Input should be a valid integer, unable to parse string as an integer",
		Type: "int_parsing",
	})
}

// NegativeError reports a path or query value below zero.
func NegativeError(in, name string) ValidationErrorResponse {
	return single(FieldError{
		Loc:  []string{in, name},
		Msg:  "Input should be greater than or equal to 0",
		Type: "greater_than_equal",
	})
}

func single(fe FieldError) ValidationErrorResponse {
	return ValidationErrorResponse{Detail: []FieldError{fe}}
}

func fromFieldError(fe validator.FieldError) FieldError {
	loc := []string{"body", fe.Field()}
	switch fe.Tag() {
	case "required":
		return FieldError{Loc: loc, Msg: "Field required", Type: "missing"}
	case "notnull":
		return FieldError{
			Loc:  loc,
			Msg:  "Input should be a valid " + fe.Param(),
			Type: fe.Param() + "_type",
		}
	case "min":
		return FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("String should have at least %s character", fe.Param()),
			Type: "string_too_short",
		}
	default:
		return FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("Value failed the %q rule", fe.Tag()),
			Type: "value_error",
		}
	}
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Map, reflect.Struct:
		return "dictionary"
	default:
		return t.Kind().String()
	}
}
