package sink

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid sink configuration detected before any
// collaborator is used.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeMissingTableName indicates an empty table name.
	ErrCodeMissingTableName ConfigErrorCode = "MISSING_TABLE_NAME"

	// ErrCodeInvalidColumns indicates column options failed to finalize.
	ErrCodeInvalidColumns ConfigErrorCode = "INVALID_COLUMNS"

	// ErrCodeTriggersDisabled indicates column options disable triggers.
	ErrCodeTriggersDisabled ConfigErrorCode = "TRIGGERS_DISABLED"

	// ErrCodeMissingDependencies indicates the factory yielded no bundle.
	ErrCodeMissingDependencies ConfigErrorCode = "MISSING_DEPENDENCIES"

	// ErrCodeMissingWriter indicates the bundle has no event writer.
	ErrCodeMissingWriter ConfigErrorCode = "MISSING_WRITER"

	// ErrCodeMissingProvisioner indicates auto-create without a shape builder
	// or table creator.
	ErrCodeMissingProvisioner ConfigErrorCode = "MISSING_PROVISIONER"

	// ErrCodeUnresolvedDependencies indicates the factory itself failed.
	ErrCodeUnresolvedDependencies ConfigErrorCode = "UNRESOLVED_DEPENDENCIES"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// HasConfigCode returns true if err is or wraps a ConfigError with code.
func HasConfigCode(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newConfigError(code ConfigErrorCode, msg string, err error) *ConfigError {
	return &ConfigError{Code: code, Message: msg, Err: err}
}

// ProvisionStage names the step of table provisioning that failed.
type ProvisionStage string

const (
	StageBuildShape   ProvisionStage = "build shape"
	StageCreateTable  ProvisionStage = "create table"
	StageReleaseShape ProvisionStage = "release shape"
)

// ProvisionError reports a failure while auto-creating the table.
type ProvisionError struct {
	Stage  ProvisionStage
	Schema string
	Table  string
	Err    error
}

// Error implements the error interface.
func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s.%s: %s: %v", e.Schema, e.Table, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// IsProvisionError returns true if err is or wraps a ProvisionError.
func IsProvisionError(err error) bool {
	var pe *ProvisionError
	return errors.As(err, &pe)
}
