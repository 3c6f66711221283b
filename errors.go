package plugkit

import (
	"errors"
)

// Instrumentation errors
var (
	// Severity errors
	ErrUnknownSeverity = errors.New("unknown severity")

	// Error wrapping errors
	ErrWrapSignatureMismatch = errors.New("operation already guarded with a different signature")
	ErrWrapNameEmpty         = errors.New("guarded operation name is empty")
	ErrPanic                 = errors.New("operation panicked")

	// Module errors
	ErrHostNil          = errors.New("host is nil")
	ErrHooksNil         = errors.New("module hooks are nil")
	ErrModuleNotLoaded  = errors.New("module is not loaded")
	ErrRegistrationFail = errors.New("host registration failed")
	ErrCallbackNil      = errors.New("callback is nil")
	ErrSettingsNil      = errors.New("settings are nil")

	// Settings errors
	ErrSettingsNotPointer        = errors.New("settings must be a non-nil pointer to a struct")
	ErrUnsupportedTypeForDefault = errors.New("unsupported type for default value")
	ErrDefaultValueParseError    = errors.New("failed to parse default value")

	// Event errors
	ErrObserverNil = errors.New("observer is nil")
)
