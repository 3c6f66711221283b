// Package feeders fills settings structs from files and the environment.
package feeders

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/GoCodeAlone/plugkit"
)

// Feeder fills target, a pointer to a struct, from one source.
type Feeder interface {
	Feed(target any) error
}

// DebugLogger receives verbose feeder diagnostics.
type DebugLogger interface {
	Debug(msg string, args ...any)
}

// Load applies the `default` tags of target, runs every feeder in order so
// later sources override earlier ones, then validates the result.
func Load(target any, feeders ...Feeder) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	if err := plugkit.ApplyDefaults(target); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsLoad, err)
	}
	for _, feeder := range feeders {
		if err := feeder.Feed(target); err != nil {
			return fmt.Errorf("%w: %w", ErrSettingsLoad, err)
		}
	}
	if err := plugkit.ValidateSettings(target); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsVerify, err)
	}
	return nil
}

// ForFile picks the file feeder matching the extension of path.
// Unrecognised extensions are read as YAML.
func ForFile(path string) Feeder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTomlFeeder(path)
	case ".json":
		return NewJSONFeeder(path)
	default:
		return NewYamlFeeder(path)
	}
}

func checkTarget(target any) error {
	v := reflect.ValueOf(target)
	if target == nil || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return wrapTargetError(target)
	}
	return nil
}

// fileFeed reads path and decodes it into target, or only the top-level key
// section when key is set. A missing section leaves target untouched.
func fileFeed(
	path, key, format string,
	target any,
	unmarshal func([]byte, any) error,
	section func([]byte, string) ([]byte, bool, error),
	logger DebugLogger,
) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapFileError(ErrFileRead, format, path, err)
	}
	if logger != nil {
		logger.Debug("Feeding settings file", "format", format, "path", path, "key", key, "bytes", len(data))
	}

	if key != "" {
		sectionData, found, err := section(data, key)
		if err != nil {
			return wrapFileError(ErrKeyDecode, format, path, err)
		}
		if !found {
			if logger != nil {
				logger.Debug("Settings section not found", "format", format, "key", key)
			}
			return nil
		}
		data = sectionData
	}

	if err := unmarshal(data, target); err != nil {
		return wrapFileError(ErrFileDecode, format, path, err)
	}
	return nil
}
