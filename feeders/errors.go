package feeders

import (
	"errors"
	"fmt"
)

// Feeder errors
var (
	ErrInvalidTarget  = errors.New("expected pointer to struct")
	ErrFileRead       = errors.New("failed to read settings file")
	ErrFileDecode     = errors.New("failed to decode settings file")
	ErrKeyDecode      = errors.New("failed to decode settings section")
	ErrEnvConversion  = errors.New("cannot convert environment value")
	ErrSettingsLoad   = errors.New("failed to load settings")
	ErrSettingsVerify = errors.New("settings failed validation")
)

func wrapTargetError(got any) error {
	return fmt.Errorf("%w, got %T", ErrInvalidTarget, got)
}

func wrapFileError(sentinel error, format, path string, err error) error {
	return fmt.Errorf("%w (%s) %s: %w", sentinel, format, path, err)
}

func wrapEnvError(name, fieldPath string, err error) error {
	return fmt.Errorf("%w: %s into %s: %w", ErrEnvConversion, name, fieldPath, err)
}
