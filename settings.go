package plugkit

import (
	"encoding"
	"fmt"
	"reflect"
	"time"

	"github.com/golobby/cast"
	jsoniter "github.com/json-iterator/go"
)

const (
	tagDefault = "default"
)

// BaseSettings are the settings every module carries. Module settings embed
// it:
//
//	type Settings struct {
//	    plugkit.BaseSettings `yaml:",inline"`
//	    MySetting string `yaml:"mySetting" default:"default"`
//	}
type BaseSettings struct {
	// EnableErrorWrapping selects the Wrapped mode of the module's ErrorWrapper.
	EnableErrorWrapping bool `yaml:"enableErrorWrapping" toml:"enableErrorWrapping" json:"enableErrorWrapping" env:"ENABLE_ERROR_WRAPPING" default:"true" desc:"Report failures of guarded operations"`

	// LogLevel is the minimum severity the module logger emits.
	LogLevel Severity `yaml:"logLevel" toml:"logLevel" json:"logLevel" env:"LOG_LEVEL" default:"info" desc:"Minimum log severity (trace, debug, info, warn, error)"`

	// ShowToast overrides the per-severity toast default, keyed by severity name.
	ShowToast map[string]bool `yaml:"showToast" toml:"showToast" json:"showToast" desc:"Per-severity toast defaults"`
}

// SettingsCarrier is satisfied by any settings type embedding BaseSettings.
type SettingsCarrier interface {
	Base() BaseSettings
}

// Base returns the common settings.
func (s BaseSettings) Base() BaseSettings {
	return s
}

// Validate checks the log level and the toast keys.
func (s BaseSettings) Validate() error {
	if !s.LogLevel.Valid() {
		return fmt.Errorf("logLevel: %w: %d", ErrUnknownSeverity, int(s.LogLevel))
	}
	for key := range s.ShowToast {
		if _, err := ParseSeverity(key); err != nil {
			return fmt.Errorf("showToast: %w", err)
		}
	}
	return nil
}

// LoggerConfig derives the logger configuration for a component called name.
// Unknown toast keys are ignored; Validate reports them.
func (s BaseSettings) LoggerConfig(name string) LoggerConfig {
	defaults := make(map[Severity]bool, len(s.ShowToast))
	for key, show := range s.ShowToast {
		if severity, err := ParseSeverity(key); err == nil {
			defaults[severity] = show
		}
	}
	return LoggerConfig{
		Name:              name,
		MinSeverity:       s.LogLevel,
		ShowToastDefaults: defaults,
	}
}

// Validator is implemented by settings with their own validation.
type Validator interface {
	Validate() error
}

// ValidateSettings runs target's Validate method when it has one.
func ValidateSettings(target any) error {
	if v, ok := target.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// ApplyDefaults sets every zero field of the struct pointed to by target that
// carries a `default:"..."` tag. Embedded and nested structs are walked;
// nil struct pointers are left alone.
func ApplyDefaults(target any) error {
	v := reflect.ValueOf(target)
	if target == nil || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrSettingsNotPointer
	}
	return applyStructDefaults(v.Elem())
}

func applyStructDefaults(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}

		defaultVal, hasDefault := fieldType.Tag.Lookup(tagDefault)
		switch {
		case field.Kind() == reflect.Struct && !hasDefault:
			if err := applyStructDefaults(field); err != nil {
				return err
			}
			continue
		case field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.Struct:
			if !field.IsNil() {
				if err := applyStructDefaults(field.Elem()); err != nil {
					return err
				}
			}
			continue
		}

		if !hasDefault || !field.IsZero() {
			continue
		}
		if err := SetFromString(field, defaultVal); err != nil {
			return fmt.Errorf("%w for %s: %w", ErrDefaultValueParseError, fieldType.Name, err)
		}
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// SetFromString converts raw to the type of field and stores it. Field types
// implementing encoding.TextUnmarshaler parse themselves, durations use
// time.ParseDuration, maps and slices are read as JSON. field must be
// addressable.
func SetFromString(field reflect.Value, raw string) error {
	if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
		return u.UnmarshalText([]byte(raw))
	}
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.Map, reflect.Slice:
		ptr := reflect.New(field.Type())
		if err := jsoniter.UnmarshalFromString(raw, ptr.Interface()); err != nil {
			return err
		}
		field.Set(ptr.Elem())
		return nil
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		converted, err := cast.FromType(raw, field.Type())
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(converted).Convert(field.Type()))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedTypeForDefault, field.Kind())
	}
}
