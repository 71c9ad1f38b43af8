package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is an error translated for clients.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps store and driver errors to a code and a message that leaks
// no SQL. context names the thing being handled, e.g. "story".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "A server error occurred."}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505 and sqlite UNIQUE failures
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: alreadyExistsMessage(context, errLower)}
	}

	// postgres 23502 and sqlite NOT NULL failures
	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing."}
	}

	// postgres 22001
	if strings.Contains(errLower, "value too long") {
		return ErrorInfo{Code: ValidationTooLong, Message: "A value is longer than the field allows."}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Could not reach a backing service. Please try again later.",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func notFoundCode(context string) string {
	switch context {
	case "story":
		return StoryNotFound
	case "age group":
		return AgeGroupNotFound
	case "theme":
		return ThemeNotFound
	default:
		return ResourceNotFound
	}
}

func notFoundMessage(context string) string {
	if context == "" {
		return "Not found."
	}
	return "No " + context + " matches the given query."
}

func alreadyExistsMessage(context, errLower string) string {
	if strings.Contains(errLower, "username") {
		return "An admin user with that username already exists."
	}
	if context == "" {
		return "This record already exists."
	}
	return "This " + context + " already exists."
}

func defaultMessage(context string) string {
	if context == "" {
		return "A server error occurred. Please try again later."
	}
	return "Could not process the " + context + ". Please try again later."
}
