package errors

// Error codes returned in the "error" field of JSON error bodies.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// auth (admin sessions)
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"

	// validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationTooLong      = "VALIDATION_TOO_LONG"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// catalogue
	StoryNotFound    = "STORY_NOT_FOUND"
	AgeGroupNotFound = "AGE_GROUP_NOT_FOUND"
	ThemeNotFound    = "THEME_NOT_FOUND"

	// uploads
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadNotConfigured   = "UPLOAD_NOT_CONFIGURED"
	UploadFailed          = "UPLOAD_FAILED"

	// internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
