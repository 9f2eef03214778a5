/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusUnprocessableEntity},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusUnprocessableEntity},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusUnprocessableEntity},
	ErrInvalidLimit:         {Code: ErrInvalidLimit, Message: "Limit must be a positive integer.", Status: http.StatusUnprocessableEntity},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Participant Business Logic Errors
	ErrInvalidName:         {Code: ErrInvalidName, Message: "Invalid participant name.", Status: http.StatusUnprocessableEntity},
	ErrNameTaken:           {Code: ErrNameTaken, Message: "This name is already in use.", Status: http.StatusConflict},
	ErrParticipantNotFound: {Code: ErrParticipantNotFound, Message: "Participant not found.", Status: http.StatusNotFound},

	// 3xxx: Message Business Logic Errors
	ErrMessageNotFound: {Code: ErrMessageNotFound, Message: "Message not found.", Status: http.StatusNotFound},
	ErrNotMessageOwner: {Code: ErrNotMessageOwner, Message: "Only the sender can modify this message.", Status: http.StatusForbidden},
	ErrUnknownSender:   {Code: ErrUnknownSender, Message: "Sender is not in the room.", Status: http.StatusUnauthorized},
	ErrUnknownViewer:   {Code: ErrUnknownViewer, Message: "Viewer is not in the room.", Status: http.StatusUnauthorized},
	ErrInvalidKind:     {Code: ErrInvalidKind, Message: "Invalid message type.", Status: http.StatusUnprocessableEntity},
	ErrMessageTooLong:  {Code: ErrMessageTooLong, Message: "Message is too long.", Status: http.StatusUnprocessableEntity},

	// 5xxx: Internal System Errors
	ErrUnknown:        {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageFailure: {Code: ErrStorageFailure, Message: "Storage is temporarily unavailable.", Status: http.StatusInternalServerError},
}
