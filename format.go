package plugkit

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var prettyJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// StackTracer is implemented by errors that captured the stack they were
// created on.
type StackTracer interface {
	Stack() string
}

// FormatError renders err as "<message>\n<stack>", dropping the stack part
// when nothing in the chain carries one.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var st StackTracer
	if errors.As(err, &st) {
		if stack := st.Stack(); stack != "" {
			return err.Error() + "\n" + stack
		}
	}
	return err.Error()
}

// FormatValue renders a single payload value as display text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return t
	case error:
		return FormatError(t)
	case fmt.Stringer:
		return t.String()
	case []byte:
		return string(t)
	}
	if isStructured(v) {
		out, err := prettyJSON.MarshalIndent(v, "", "  ")
		if err == nil {
			return string(out)
		}
		return fmt.Sprintf("%+v", v)
	}
	return fmt.Sprint(v)
}

// FormatValues renders each value and joins them with a single space.
func FormatValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, FormatValue(v))
	}
	return strings.Join(parts, " ")
}

// FormatFailure renders the line used when an error is attached to an entry.
func FormatFailure(method string, err error, values []any) string {
	if method == "" {
		method = "unknown"
	}
	var b strings.Builder
	b.WriteString("Error in ")
	b.WriteString(method)
	b.WriteString(": ")
	b.WriteString(FormatError(err))
	if len(values) > 0 {
		b.WriteString(" - ")
		b.WriteString(FormatValues(values))
	}
	return b.String()
}

func isStructured(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
