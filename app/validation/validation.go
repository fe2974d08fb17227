// Package validation runs declarative field rules over request payloads and turns
// violations into field-level messages for the client.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"socialfeed/app/apperror"
)

// FailedMessage is the top-level message of every validation failure.
const FailedMessage = "Validation Failed"

// FieldError describes a single rejected field.
type FieldError struct {
	Type     string `json:"type"`
	Value    any    `json:"value"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// messages maps "<json field>.<tag>" to the client message. Unknown pairs
// fall back to a generic message.
var messages = map[string]string{
	"email.required":    "Please enter a valid email",
	"email.email":       "Please enter a valid email",
	"password.required": "Password cant be empty",
	"password.min":      "Password should at least 5 length",
	"name.required":     "Name cant be empty",
	"name.min":          "Name should at least 5 length",
	"title.required":    "Title cant be empty",
	"title.min":         "Title has minimum 5 length character",
	"content.required":  "Content cant be empty",
	"content.min":       "Content has minimum 5 length character",
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Check validates s and returns its field errors, if any.
func (v *Validator) Check(s any) ([]FieldError, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("failed to validate: %w", err)
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Type:     "field",
			Value:    fe.Value(),
			Msg:      message(fe.Field(), fe.Tag()),
			Path:     fe.Field(),
			Location: "body",
		})
	}
	return out, nil
}

// Field builds a FieldError for rules checked outside struct tags.
func Field(path string, value any, msg string) FieldError {
	return FieldError{Type: "field", Value: value, Msg: msg, Path: path, Location: "body"}
}

// Failed wraps field errors into the 422 application error.
func Failed(fields []FieldError) *apperror.AppError {
	return apperror.NewValidation(FailedMessage, fields)
}

func message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return fmt.Sprintf("Invalid value for %s", field)
}
