package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FieldError reports a record field that violates its collection's schema.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

// Is makes errors.Is(err, ErrInvalid) true.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalid
}

// Schema is the JSON Schema of a record type, derived from its struct tags.
//
// Constraints come from `jsonschema:"..."` tags: required, minLength,
// maxLength, pattern, enum, minimum and maximum. A property that is not
// required may be null.
type Schema[T any] struct {
	root     *jsonschema.Schema
	compiled *validator.Schema
}

// NewSchema reflects T and compiles the result. title names the schema,
// usually the collection. It panics if the reflected schema does not compile,
// which only a malformed struct tag can cause.
func NewSchema[T any](title string) *Schema[T] {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true, RequiredFromJSONSchemaTags: true}
	s := r.ReflectFromType(reflect.TypeFor[T]())
	s.Title = title
	compiled, err := compileSchema(title, s)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", title, err))
	}
	return &Schema[T]{root: s, compiled: compiled}
}

func compileSchema(title string, s *jsonschema.Schema) (*validator.Schema, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	url := "https://idolcms.invalid/schemas/" + title + ".json"
	c := validator.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// JSON returns the reflected schema.
func (s *Schema[T]) JSON() *jsonschema.Schema {
	return s.root
}

// Validate checks rec against the schema. It returns a *FieldError naming the
// first violation.
func (s *Schema[T]) Validate(rec T) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return &FieldError{Reason: fmt.Sprintf("cannot be encoded: %v", err)}
	}
	v, err := validator.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &FieldError{Reason: fmt.Sprintf("cannot be decoded: %v", err)}
	}
	if v == nil {
		return &FieldError{Reason: "record is null"}
	}
	if err := s.compiled.Validate(dropNulls(v)); err != nil {
		return toFieldError(err)
	}
	return nil
}

// dropNulls removes null object members so that an optional property may be
// null and a required one that is null reads as missing.
func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(val)
		}
	case []any:
		for i, val := range t {
			t[i] = dropNulls(val)
		}
	}
	return v
}

var printer = message.NewPrinter(language.English)

// toFieldError reports the violation at the first instance location.
func toFieldError(err error) error {
	ve, ok := err.(*validator.ValidationError)
	if !ok {
		return &FieldError{Reason: err.Error()}
	}
	leaves := collectLeaves(ve, nil)
	leaf := slices.MinFunc(leaves, func(a, b *validator.ValidationError) int {
		return strings.Compare(fieldPath(a.InstanceLocation), fieldPath(b.InstanceLocation))
	})
	path := fieldPath(leaf.InstanceLocation)
	switch k := leaf.ErrorKind.(type) {
	case *kind.Required:
		return &FieldError{Field: join(path, k.Missing[0]), Reason: "is required"}
	case *kind.AdditionalProperties:
		return &FieldError{Field: join(path, k.Properties[0]), Reason: "is not allowed"}
	case *kind.Type:
		return &FieldError{Field: path, Reason: "must be of type " + strings.Join(k.Want, " or ")}
	case *kind.MinLength:
		if k.Want == 1 {
			return &FieldError{Field: path, Reason: "must not be empty"}
		}
		return &FieldError{Field: path, Reason: fmt.Sprintf("must be at least %d characters", k.Want)}
	case *kind.MaxLength:
		return &FieldError{Field: path, Reason: fmt.Sprintf("must be at most %d characters", k.Want)}
	case *kind.MinItems:
		return &FieldError{Field: path, Reason: fmt.Sprintf("must have at least %d items", k.Want)}
	case *kind.MaxItems:
		return &FieldError{Field: path, Reason: fmt.Sprintf("must have at most %d items", k.Want)}
	case *kind.Minimum:
		return &FieldError{Field: path, Reason: "must be at least " + k.Want.RatString()}
	case *kind.Maximum:
		return &FieldError{Field: path, Reason: "must be at most " + k.Want.RatString()}
	case *kind.Pattern:
		return &FieldError{Field: path, Reason: "must match " + k.Want}
	case *kind.Enum:
		return &FieldError{Field: path, Reason: fmt.Sprintf("must be one of %v", k.Want)}
	default:
		return &FieldError{Field: path, Reason: leaf.ErrorKind.LocalizedString(printer)}
	}
}

func collectLeaves(e *validator.ValidationError, out []*validator.ValidationError) []*validator.ValidationError {
	if len(e.Causes) == 0 {
		return append(out, e)
	}
	for _, c := range e.Causes {
		out = collectLeaves(c, out)
	}
	return out
}

// fieldPath renders an instance location as "tracks[0].title".
func fieldPath(loc []string) string {
	var b strings.Builder
	for _, seg := range loc {
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
