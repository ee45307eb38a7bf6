package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, preserving its code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether any error in the chain carries the code
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Error codes. Configuration errors are always fatal to the run; the import
// strategy codes mark where the resolver gave up.
const (
	CodeConfigInvalid       = "CONFIG_INVALID"
	CodeFileNotFound        = "FILE_NOT_FOUND"
	CodeWorkbookUnreadable  = "WORKBOOK_UNREADABLE"
	CodeSheetExhausted      = "SHEET_EXHAUSTED"
	CodeAllStrategiesFailed = "ALL_STRATEGIES_FAILED"
	CodeMissingIdentifier   = "MISSING_IDENTIFIER"
	CodeNoClassifiedRows    = "NO_CLASSIFIED_ROWS"
	CodeColumnGroupMissing  = "COLUMN_GROUP_MISSING"
	CodeEmptySample         = "EMPTY_SAMPLE"
	CodeEstimationFailed    = "ESTIMATION_FAILED"
	CodeSnapshotFailed      = "SNAPSHOT_FAILED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func FileNotFound(path string) *AppError {
	return Newf(CodeFileNotFound, "workbook path does not resolve: %s", path)
}

func WorkbookUnreadable(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeWorkbookUnreadable,
		Message: fmt.Sprintf("workbook structure cannot be described: %s", path),
		Cause:   cause,
	}
}

func SheetExhausted(path string, candidates []string) *AppError {
	return Newf(CodeSheetExhausted, "no candidate sheet %v nor the first sheet is readable in %s", candidates, path)
}

func AllStrategiesFailed(path string) *AppError {
	return Newf(CodeAllStrategiesFailed, "every import strategy failed for %s", path)
}

func MissingIdentifier(column string) *AppError {
	return Newf(CodeMissingIdentifier, "identifier column %q is absent from the workbook", column)
}

func NoClassifiedRows() *AppError {
	return New(CodeNoClassifiedRows, "no row classified as control or treatment; label heuristic found nothing usable")
}

func ColumnGroupMissing(section string) *AppError {
	return Newf(CodeColumnGroupMissing, "mandatory column group %s discovered empty", section)
}

func EmptySample() *AppError {
	return New(CodeEmptySample, "analyzable sample is empty after filtering")
}

func EstimationFailed(model string, cause error) *AppError {
	return &AppError{
		Code:    CodeEstimationFailed,
		Message: fmt.Sprintf("estimation failed for model %q", model),
		Cause:   cause,
	}
}
