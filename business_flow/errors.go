// Package businessflow contains the pricing workflow use cases: submitting factors and
// configurations, the collection view, exports, session routing and the mock backend logic
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Form and submission errors
	ErrSubmitBlocked         = errors.New("required fields are missing")
	ErrInvalidCategory       = errors.New("unknown pricing factor category")
	ErrUnexpectedStatus      = errors.New("unexpected response status")
	ErrFactorNotFound        = errors.New("pricing factor not found")
	ErrConfigurationNotFound = errors.New("pricing configuration not found")

	// Collection errors
	ErrDefaultConfigurationDelete = errors.New("the default configuration cannot be deleted")
	ErrLoadFailed                 = errors.New("failed to load pricing data")

	// Session errors
	ErrSessionMissing     = errors.New("no session role configured")
	ErrUnauthorizedAccess = errors.New("unauthorized access")
	ErrAdminRequired      = errors.New("admin role required")

	// Backend errors
	ErrAttributeNotInCategory    = errors.New("attribute does not belong to the category")
	ErrFactorNameRequired        = errors.New("factor name is required")
	ErrConfigurationNameRequired = errors.New("configuration name is required")
	ErrConfigurationIDRequired   = errors.New("configuration id is required")
	ErrAttributeInvalid          = errors.New("attribute value has the wrong type")

	// Export errors
	ErrExportFailed = errors.New("failed to build export")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// UserMessage returns the single line shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var businessErr *BusinessError
	if errors.As(err, &businessErr) {
		return businessErr.Message
	}
	return err.Error()
}

// ErrorCode returns the business error code of err, or "" for other errors.
func ErrorCode(err error) string {
	var businessErr *BusinessError
	if errors.As(err, &businessErr) {
		return businessErr.Code
	}
	return ""
}

func IsSubmitBlocked(err error) bool {
	return errors.Is(err, ErrSubmitBlocked)
}

func IsInvalidCategory(err error) bool {
	return errors.Is(err, ErrInvalidCategory)
}

func IsFactorNotFound(err error) bool {
	return errors.Is(err, ErrFactorNotFound)
}

func IsConfigurationNotFound(err error) bool {
	return errors.Is(err, ErrConfigurationNotFound)
}

func IsDefaultConfigurationDelete(err error) bool {
	return errors.Is(err, ErrDefaultConfigurationDelete)
}

func IsSessionMissing(err error) bool {
	return errors.Is(err, ErrSessionMissing)
}

func IsUnauthorizedAccess(err error) bool {
	return errors.Is(err, ErrUnauthorizedAccess)
}

func IsAdminRequired(err error) bool {
	return errors.Is(err, ErrAdminRequired)
}

func IsAttributeNotInCategory(err error) bool {
	return errors.Is(err, ErrAttributeNotInCategory)
}

func IsAttributeInvalid(err error) bool {
	return errors.Is(err, ErrAttributeInvalid)
}

func IsFactorNameRequired(err error) bool {
	return errors.Is(err, ErrFactorNameRequired)
}

func IsConfigurationNameRequired(err error) bool {
	return errors.Is(err, ErrConfigurationNameRequired)
}

func IsConfigurationIDRequired(err error) bool {
	return errors.Is(err, ErrConfigurationIDRequired)
}
