/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in responses sent to clients.
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

	// ErrInvalidLimit indicates that the limit query parameter is not a positive integer.
	ErrInvalidLimit = 1005

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1006
)

// 2xxx: Participant Business Logic Errors
const (
	// ErrInvalidName indicates that the participant name is empty or otherwise unusable after sanitization.
	ErrInvalidName = 2101

	// ErrNameTaken indicates that the participant name is already registered.
	ErrNameTaken = 2102

	// ErrParticipantNotFound indicates that no participant with the given name is currently registered.
	ErrParticipantNotFound = 2103
)

// 3xxx: Message Business Logic Errors
const (
	// ErrMessageNotFound indicates that no message with the given id exists.
	ErrMessageNotFound = 3101

	// ErrNotMessageOwner indicates an edit or delete attempt by someone other than the original sender.
	ErrNotMessageOwner = 3102

	// ErrUnknownSender indicates a message posted by a sender who is not a registered participant.
	ErrUnknownSender = 3103

	// ErrUnknownViewer indicates a message listing requested by an unregistered viewer.
	ErrUnknownViewer = 3104

	// ErrInvalidKind indicates a message kind outside the recognized set.
	ErrInvalidKind = 3105

	// ErrMessageTooLong indicates that the message text exceeded the maximum length limit.
	ErrMessageTooLong = 3106
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailure indicates a failure in the underlying persistence layer.
	ErrStorageFailure = 5001
)
