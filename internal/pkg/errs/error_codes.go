/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrFormParseFailed indicates failure to parse multipart or URL-encoded form data.
	ErrFormParseFailed = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Messaging and File Errors
const (
	// ErrMessageContentTooLong indicates that the user's message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrFileMissing indicates that an upload request did not carry a file part.
	ErrFileMissing = 2301

	// ErrFileSizeTooLarge indicates that the uploaded file exceeded the attachment size limit.
	ErrFileSizeTooLarge = 2302

	// ErrFileNotFound indicates that no blob exists for the requested attachment reference.
	ErrFileNotFound = 2303
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates that the username is missing or malformed.
	ErrInvalidUsername = 3101

	// ErrInvalidPassword indicates that the password is missing or outside the allowed length.
	ErrInvalidPassword = 3102

	// ErrUserAlreadyExists indicates that registration used a username that is already taken.
	ErrUserAlreadyExists = 3103

	// ErrInvalidCredentials indicates that the username/password pair did not match an account.
	ErrInvalidCredentials = 3104

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3105

	// ErrUnauthorized indicates that a valid identity token is required.
	ErrUnauthorized = 3201
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the blob store rejected a read or write.
	ErrFileStorageFailed = 5001

	// ErrHistoryUnavailable indicates that the message store failed while reading or clearing history.
	ErrHistoryUnavailable = 5002

	// ErrDirectoryUnavailable indicates that the user directory could not be queried.
	ErrDirectoryUnavailable = 5003
)
