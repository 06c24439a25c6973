// Package validation turns model constraints into a field -> messages map
// suitable for redisplaying a form or returning a JSON error body.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Violations maps a field path (json naming, e.g. "items[0].price") to its messages.
type Violations map[string][]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add appends a message for field.
func (v Violations) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Has reports whether field has at least one message.
func (v Violations) Has(field string) bool { return len(v[field]) > 0 }

// First returns the first message for field, or "".
func (v Violations) First(field string) string {
	if msgs := v[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the violated fields sorted by name.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Merge copies every message of other into v.
func (v Violations) Merge(other Violations) {
	for f, msgs := range other {
		v[f] = append(v[f], msgs...)
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, messageFor("required"))
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s against its `validate` tags.
// It returns nil when s satisfies every constraint.
func Struct(s any) Violations {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	v := make(Violations)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.Add("_", err.Error())
		return v
	}
	for _, fe := range fieldErrs {
		v.Add(fieldPath(fe.Namespace()), messageFor(fe.Tag()))
	}
	return v
}

// fieldPath drops the root type name from a validator namespace
// ("Bill.items[0].product_name" -> "items[0].product_name").
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var messages = map[string]string{
	"required": "This field is required.",
	"number":   "Must be a number.",
	"integer":  "Must be a whole number.",
}

func messageFor(tag string) string {
	if m, ok := messages[tag]; ok {
		return m
	}
	return "Invalid value (" + tag + ")."
}

// Message returns the display message for a constraint code such as "number".
func Message(code string) string { return messageFor(code) }
