package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bootcamp-api/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Kind classifies an error for the client.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindUnauthorized Kind = "NotAuthorized"
	KindValidation   Kind = "ValidationError"
	KindDuplicateKey Kind = "DuplicateKey"
	KindCast         Kind = "CastError"
	KindUpload       Kind = "UploadError"
	KindUpstream     Kind = "UpstreamLookupFailure"
	KindServer       Kind = "ServerError"
)

// ErrorResponse is an error that knows its HTTP status and client-safe message.
type ErrorResponse struct {
	StatusCode int
	Kind       Kind
	Message    string
	Err        error // cause, logged but never sent
}

func (e *ErrorResponse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

// NewErrorResponse creates an ErrorResponse with an explicit status.
func NewErrorResponse(message string, statusCode int) *ErrorResponse {
	return &ErrorResponse{StatusCode: statusCode, Kind: kindForStatus(statusCode), Message: message}
}

func NotFound(format string, args ...interface{}) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusNotFound, Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ValidationFailed aggregates every field violation into one message.
func ValidationFailed(messages ...string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusBadRequest, Kind: KindValidation, Message: strings.Join(messages, ", ")}
}

// InvalidBody is returned when a request body cannot be decoded.
func InvalidBody(err error) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusBadRequest, Kind: KindValidation, Message: "Invalid request body", Err: err}
}

// CastFailed is returned when an id-shaped parameter is not a valid ObjectID.
func CastFailed(value string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: http.StatusNotFound,
		Kind:       KindCast,
		Message:    fmt.Sprintf("Resource not found with id of %s", value),
		Err:        primitive.ErrInvalidHex,
	}
}

// Unauthorized is returned for a missing or invalid bearer token.
func Unauthorized() *ErrorResponse {
	return NewErrorResponse("Not authorized to access this route", http.StatusUnauthorized)
}

func UploadFailed(message string, statusCode int, cause error) *ErrorResponse {
	return &ErrorResponse{StatusCode: statusCode, Kind: KindUpload, Message: message, Err: cause}
}

func UpstreamFailure(message string, cause error) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusBadGateway, Kind: KindUpstream, Message: message, Err: cause}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusBadGateway:
		return KindUpstream
	}
	return KindServer
}

// TranslateError maps driver, decoder and service errors onto the error taxonomy.
// Unknown errors become a 500 with a generic message.
func TranslateError(err error) *ErrorResponse {
	var er *ErrorResponse
	if errors.As(err, &er) {
		return er
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	var timeErr *time.ParseError

	switch {
	case mongo.IsDuplicateKeyError(err):
		return &ErrorResponse{StatusCode: http.StatusBadRequest, Kind: KindDuplicateKey, Message: "Duplicate field value entered", Err: err}
	case errors.Is(err, primitive.ErrInvalidHex):
		return &ErrorResponse{StatusCode: http.StatusNotFound, Kind: KindCast, Message: "Resource not found", Err: err}
	case errors.Is(err, store.ErrNotFound):
		return &ErrorResponse{StatusCode: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found", Err: err}
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.As(err, &sizeErr), errors.As(err, &timeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return InvalidBody(err)
	}

	return &ErrorResponse{StatusCode: http.StatusInternalServerError, Kind: KindServer, Message: "Server Error", Err: err}
}
