// Package schemas is the validation boundary between untrusted tool payloads and the
// lesson domain model. Payloads are decoded into loosely typed input structs, checked
// with go-playground/validator, and only then converted to models types.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Conceptual-Machines/lesson-agents-go/models"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister("notename", func(fl validator.FieldLevel) bool {
		return models.IsValidNoteName(fl.Field().String())
	})
	mustRegister("interval", func(fl validator.FieldLevel) bool {
		return models.IsValidInterval(fl.Field().String())
	})

	validate.RegisterStructValidation(fretboardRangeStructLevel, FretboardRangeInput{})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("schemas: failed to register %s validation: %v", tag, err))
	}
}

func fretboardRangeStructLevel(sl validator.StructLevel) {
	r := sl.Current().Interface().(FretboardRangeInput)
	if r.FromFret != nil && r.ToFret != nil && *r.ToFret < *r.FromFret {
		sl.ReportError(r.ToFret, "toFret", "ToFret", "gtefield", "fromFret")
	}
}

// overrides replaces the generic message for a namespace (indexes stripped) and tag
var overrides = map[string]string{
	"ChordDiagramInput.positions:required":        "Chord diagram must contain at least one note",
	"ChordDiagramInput.positions:min":             "Chord diagram must contain at least one note",
	"ChordDiagramInput.positions:max":             fmt.Sprintf("Chord diagram exceeds maximum note count (%d)", models.MaxChordNotes),
	"FretboardDiagramInput.notes:required":        "Fretboard diagram must contain at least one note",
	"FretboardDiagramInput.notes:min":             "Fretboard diagram must contain at least one note",
	"FretboardDiagramInput.range.toFret:gtefield": "toFret must be >= fromFret",
}

// decode unmarshals raw into T and validates it. An empty payload is treated as {}.
func decode[T any](raw json.RawMessage) (T, error) {
	var in T
	if len(strings.TrimSpace(string(raw))) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, describeDecodeError(err)
	}
	if err := validate.Struct(in); err != nil {
		return in, describeValidationError(err)
	}
	return in, nil
}

func describeDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "payload"
		}
		return fmt.Errorf("%s: expected %s, got %s", field, typeErr.Type, typeErr.Value)
	}
	return err
}

func describeValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	namespace := fe.Namespace()
	if msg, ok := overrides[stripIndexes(namespace)+":"+fe.Tag()]; ok {
		return msg
	}

	path := namespace
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}

	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "min":
		if isList {
			return fmt.Sprintf("%s must contain at least %s items", path, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", path, fe.Param())
		}
		return fmt.Sprintf("%s must be >= %s", path, fe.Param())
	case "max":
		if isList {
			return fmt.Sprintf("%s must contain at most %s items", path, fe.Param())
		}
		return fmt.Sprintf("%s must be <= %s", path, fe.Param())
	case "len":
		return fmt.Sprintf("%s must contain exactly %s items", path, fe.Param())
	case "notename":
		return fmt.Sprintf("%s: %q is not a valid note name", path, fe.Value())
	case "interval":
		return fmt.Sprintf("%s: %q is not a valid interval", path, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}

// stripIndexes turns "A.notes[3].position" into "A.notes.position"
func stripIndexes(namespace string) string {
	var b strings.Builder
	depth := 0
	for _, r := range namespace {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
