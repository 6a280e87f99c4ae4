// Package validation checks request payloads against their struct-tag
// schema and reports failures as structured, per-field details.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Context carries the machine-readable facts about one failed constraint.
type Context struct {
	Key   string `json:"key,omitempty"`
	Label string `json:"label"`
	Limit any    `json:"limit,omitempty"`
}

// Detail describes one failed constraint.
type Detail struct {
	Message string   `json:"message"`
	Path    []string `json:"path"`
	Type    string   `json:"type"`
	Context Context  `json:"context"`
}

// Errors is the set of constraints a payload failed. It is returned as an
// error by Validator and serialized as-is in 400 responses.
type Errors []Detail

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, d := range e {
		msgs[i] = d.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator decodes and validates request payloads.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Decode strictly decodes a single JSON object from r into dst and
// validates it. Unknown fields, type mismatches, trailing data and
// malformed JSON are reported as Errors just like failed constraints.
func (v *Validator) Decode(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeErrors(err)
	}
	if err := ensureEOF(dec); err != nil {
		return err
	}
	return v.Struct(dst)
}

// DecodeBody decodes a JSON object from r into dst without applying any
// rules. Unknown fields are ignored, fields whose JSON type does not fit
// are skipped, and an empty body leaves dst untouched.
// Malformed JSON, a body that is not an object, and trailing data are
// reported as Errors.
func DecodeBody(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		// encoding/json keeps decoding past a mistyped field; only a
		// mismatch of the whole body has no field name.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			return decodeErrors(err)
		}
	}
	return ensureEOF(dec)
}

// ensureEOF rejects anything but whitespace after the first JSON value.
func ensureEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Errors{{
			Message: `"value" must be a single JSON object`,
			Path:    []string{},
			Type:    "object.base",
			Context: Context{Label: "value"},
		}}
	}
	return nil
}

// Struct validates s against its validate tags. It returns nil or Errors.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{
			Message: err.Error(),
			Path:    []string{},
			Type:    "object.base",
			Context: Context{Label: "value"},
		}}
	}

	details := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fieldDetail(fe))
	}
	return details
}

func fieldDetail(fe validator.FieldError) Detail {
	name := fe.Field()
	d := Detail{
		Path:    []string{name},
		Context: Context{Key: name, Label: name},
	}

	switch fe.Tag() {
	case "required":
		d.Type = "any.required"
		d.Message = fmt.Sprintf("%q is required", name)
	case "min":
		if isEmptyString(fe.Value()) {
			d.Type = "string.empty"
			d.Message = fmt.Sprintf("%q is not allowed to be empty", name)
			return d
		}
		d.Context.Limit = limit(fe.Param())
		if fe.Kind() == reflect.String {
			d.Type = "string.min"
			d.Message = fmt.Sprintf("%q length must be at least %s characters long", name, fe.Param())
		} else {
			d.Type = "number.min"
			d.Message = fmt.Sprintf("%q must be greater than or equal to %s", name, fe.Param())
		}
	default:
		d.Type = "any.invalid"
		d.Message = fmt.Sprintf("%q failed on the %q rule", name, fe.Tag())
	}
	return d
}

func isEmptyString(v any) bool {
	switch s := v.(type) {
	case string:
		return s == ""
	case *string:
		return s != nil && *s == ""
	}
	return false
}

func limit(param string) any {
	if n, err := strconv.Atoi(param); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(param, 64); err == nil {
		return f
	}
	return param
}

func decodeErrors(err error) Errors {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		name := typeErr.Field
		d := Detail{
			Path:    strings.Split(name, "."),
			Context: Context{Key: name, Label: name},
		}
		t := typeErr.Type
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		switch t.Kind() {
		case reflect.String:
			d.Type = "string.base"
			d.Message = fmt.Sprintf("%q must be a string", name)
		case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
			d.Type = "number.base"
			d.Message = fmt.Sprintf("%q must be a number", name)
		default:
			d.Type = "any.invalid"
			d.Message = fmt.Sprintf("%q must be of type %s", name, t)
		}
		return Errors{d}
	}

	// encoding/json has no typed error for unknown fields.
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		name, _ := strconv.Unquote(field)
		return Errors{{
			Message: fmt.Sprintf("%q is not allowed", name),
			Path:    []string{name},
			Type:    "object.unknown",
			Context: Context{Key: name, Label: name},
		}}
	}

	return Errors{{
		Message: `"value" must be a valid JSON object`,
		Path:    []string{},
		Type:    "object.base",
		Context: Context{Label: "value"},
	}}
}
