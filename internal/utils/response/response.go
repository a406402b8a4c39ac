// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers —
// they always know what error and message responses look like.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// contentType is set on every body-carrying response. The client reads
// responses as UTF-8, so the charset is stated explicitly.
const contentType = "application/json; charset=UTF-8"

// Error is the envelope for failure responses:
//
//	{ "error": "student not found" }
type Error struct {
	Error string `json:"error"`
}

// Message is the envelope for success responses that carry no record:
//
//	{ "message": "Student added successfully" }
type Message struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status
// code. data can be any encodable value — a record, a slice, an
// envelope.
//
// Order matters: Header() → WriteHeader() → body. Once WriteHeader is
// called the headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteMessage writes a {"message": ...} body with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) error {
	return WriteJSON(w, status, Message{Message: msg})
}

// GeneralError wraps any Go error into the standard Error envelope.
func GeneralError(err error) Error {
	return Error{Error: err.Error()}
}

// ValidationError converts validator field errors into a single
// human-readable Error envelope, e.g.
//
//	{ "error": "field UniqueNumber is required" }
func ValidationError(errs validator.ValidationErrors) Error {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "datetime":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a date in YYYY-MM-DD form", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Error{Error: strings.Join(errMessages, ", ")}
}
