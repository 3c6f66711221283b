package feeders

import (
	"os"
	"reflect"
	"strings"

	"github.com/GoCodeAlone/plugkit"
)

// EnvFeeder fills fields tagged `env:"NAME"` from the environment variable
// PREFIX_NAME (or NAME without a prefix). Unset and empty variables leave
// the field alone. Nested and embedded structs are walked.
type EnvFeeder struct {
	Prefix string
	logger DebugLogger
	lookup func(string) (string, bool)
}

// NewEnvFeeder creates a feeder reading variables under prefix.
func NewEnvFeeder(prefix string) *EnvFeeder {
	return &EnvFeeder{Prefix: prefix, lookup: os.LookupEnv}
}

// SetVerboseDebug enables verbose debug logging; nil disables it.
func (e *EnvFeeder) SetVerboseDebug(logger DebugLogger) {
	e.logger = logger
}

// Feed implements Feeder.
func (e *EnvFeeder) Feed(target any) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	v := reflect.ValueOf(target).Elem()
	return e.feedStruct(v, v.Type().Name())
}

func (e *EnvFeeder) feedStruct(v reflect.Value, path string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}
		fieldPath := path + "." + fieldType.Name

		envTag, hasEnv := fieldType.Tag.Lookup("env")
		if !hasEnv {
			switch {
			case field.Kind() == reflect.Struct:
				if err := e.feedStruct(field, fieldPath); err != nil {
					return err
				}
			case field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.Struct && !field.IsNil():
				if err := e.feedStruct(field.Elem(), fieldPath); err != nil {
					return err
				}
			}
			continue
		}

		name := e.variable(envTag)
		value, ok := e.lookupEnv(name)
		if !ok || value == "" {
			continue
		}
		if e.logger != nil {
			e.logger.Debug("Feeding field from environment", "variable", name, "field", fieldPath)
		}
		if err := plugkit.SetFromString(field, value); err != nil {
			return wrapEnvError(name, fieldPath, err)
		}
	}
	return nil
}

func (e *EnvFeeder) variable(tag string) string {
	name := strings.ToUpper(tag)
	if e.Prefix != "" {
		name = strings.ToUpper(e.Prefix) + "_" + name
	}
	return name
}

func (e *EnvFeeder) lookupEnv(name string) (string, bool) {
	if e.lookup == nil {
		return os.LookupEnv(name)
	}
	return e.lookup(name)
}
