// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like the service.
// Each handler here is therefore a factory: it accepts the service once
// at registration time and returns the actual handler as a closure.
//
// The route table lives in Routes() so there is exactly one place that
// says which (method, path) pair runs which handler. http.ServeMux
// prefers the most specific pattern, which is what guarantees that the
// literal /generateUniqueNumber path wins over the {uniqueNumber}
// wildcard.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dkrylov/students-backend/internal/service"
	"github.com/dkrylov/students-backend/internal/storage"
	"github.com/dkrylov/students-backend/internal/types"
	"github.com/dkrylov/students-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// Response message strings. The client application matches on these.
const (
	msgAdded   = "Student added successfully"
	msgUpdated = "Student updated successfully"
	msgDeleted = "Student deleted successfully"
)

// Routes returns the complete handler for the /api/students mount,
// wrapped in the CORS/method filter.
func Routes(svc *service.StudentService) http.Handler {
	mux := http.NewServeMux()

	// Collection operations. Both the bare mount and the trailing-slash
	// form are accepted; {$} matches only the exact "/api/students/".
	mux.HandleFunc("GET /api/students", GetList(svc))
	mux.HandleFunc("GET /api/students/{$}", GetList(svc))
	mux.HandleFunc("POST /api/students", New(svc))
	mux.HandleFunc("POST /api/students/{$}", New(svc))

	// The literal segment must be registered alongside the wildcard:
	// ServeMux picks the more specific pattern, so a student whose key
	// happened to start like the literal is still unreachable only for
	// the exact string "generateUniqueNumber".
	mux.HandleFunc("GET /api/students/generateUniqueNumber", GenerateUniqueNumber(svc))
	mux.HandleFunc("GET /api/students/{uniqueNumber}", GetByUniqueNumber(svc))

	mux.HandleFunc("PUT /api/students/{uniqueNumber}", Update(svc))
	// A PUT with no key segment is a client error, not a routing miss.
	mux.HandleFunc("PUT /api/students", missingKey)
	mux.HandleFunc("PUT /api/students/{$}", missingKey)

	mux.HandleFunc("DELETE /api/students/{uniqueNumber}", Delete(svc))
	// Compatibility form: DELETE /api/students?unique_number=N.
	mux.HandleFunc("DELETE /api/students", DeleteByQuery(svc))
	mux.HandleFunc("DELETE /api/students/{$}", DeleteByQuery(svc))

	return withCORS(mux)
}

// withCORS attaches the CORS headers to every response before any
// method-specific handling, answers OPTIONS preflights with 204, and
// rejects verbs outside the allowed set with 405. Cross-origin access is
// unconditionally permitted.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		switch r.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
			next.ServeHTTP(w, r)
		default:
			response.WriteJSON(w, http.StatusMethodNotAllowed,
				response.Error{Error: "Method not allowed"})
		}
	})
}

// missingKey rejects update requests that carry no key segment.
func missingKey(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusBadRequest,
		response.GeneralError(errors.New("unique number is required")))
}

// writeServiceError maps the storage error taxonomy onto HTTP statuses.
// Unclassified errors become a 500 with a short message; raw driver
// detail stays in the server log, not in the response.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrStudentNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
	case errors.Is(err, storage.ErrDuplicateUniqueNumber):
		response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
	case errors.Is(err, storage.ErrNoFieldsToUpdate):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
	default:
		response.WriteJSON(w, http.StatusInternalServerError,
			response.Error{Error: "internal server error"})
	}
}

// decodeBody decodes a JSON request body into dst, translating the two
// client-caused failure modes (empty body, malformed JSON) into a 400.
// Returns false if a response was already written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}
	return true
}

// New handles POST /api/students — create a student from the JSON body.
//
// Success: 201 {"message": "Student added successfully"}
// Failures: 400 bad body or validation, 409 duplicate key, 500 store.
func New(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var student types.Student
		if !decodeBody(w, r, &student) {
			return
		}

		if err := validator.New().Struct(student); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		if err := svc.AddStudent(&student); err != nil {
			slog.Error("error creating student",
				slog.String("uniqueNumber", student.UniqueNumber),
				slog.String("error", err.Error()))
			writeServiceError(w, err)
			return
		}

		slog.Info("student created",
			slog.Int64("id", student.ID),
			slog.String("uniqueNumber", student.UniqueNumber))
		response.WriteMessage(w, http.StatusCreated, msgAdded)
	}
}

// GetList handles GET /api/students — all students as a JSON array.
// An empty database yields [] rather than null.
func GetList(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := svc.GetStudents()
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			writeServiceError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// GetByUniqueNumber handles GET /api/students/{uniqueNumber}.
//
// Success: 200 with the record. A miss is a plain 404.
func GetByUniqueNumber(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uniqueNumber := r.PathValue("uniqueNumber")
		slog.Info("getting a student", slog.String("uniqueNumber", uniqueNumber))

		student, err := svc.GetStudentByUniqueNumber(uniqueNumber)
		if err != nil {
			if !errors.Is(err, storage.ErrStudentNotFound) {
				slog.Error("error getting student",
					slog.String("uniqueNumber", uniqueNumber),
					slog.String("error", err.Error()))
			}
			writeServiceError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GenerateUniqueNumber handles GET /api/students/generateUniqueNumber.
//
// Success: 200 {"uniqueNumber": "<digits>"} for a number the uniqueness
// probe reports as free.
func GenerateUniqueNumber(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("generating a unique number")

		number, err := svc.GenerateUniqueNumber()
		if err != nil {
			slog.Error("error generating unique number",
				slog.String("error", err.Error()))
			writeServiceError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK,
			map[string]string{"uniqueNumber": number})
	}
}

// Update handles PUT /api/students/{uniqueNumber} — a partial update.
// Only fields present in the body are written; the rest keep their
// stored values.
//
// Failures: 400 bad body or empty field set, 404 no matching record.
func Update(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uniqueNumber := r.PathValue("uniqueNumber")
		slog.Info("updating a student", slog.String("uniqueNumber", uniqueNumber))

		var upd types.StudentUpdate
		if !decodeBody(w, r, &upd) {
			return
		}

		if err := validator.New().Struct(upd); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		if err := svc.UpdateStudent(uniqueNumber, upd); err != nil {
			if !errors.Is(err, storage.ErrStudentNotFound) &&
				!errors.Is(err, storage.ErrNoFieldsToUpdate) {
				slog.Error("error updating student",
					slog.String("uniqueNumber", uniqueNumber),
					slog.String("error", err.Error()))
			}
			writeServiceError(w, err)
			return
		}

		slog.Info("student updated", slog.String("uniqueNumber", uniqueNumber))
		response.WriteMessage(w, http.StatusOK, msgUpdated)
	}
}

// Delete handles DELETE /api/students/{uniqueNumber}.
// Deleting an absent key is a 404, not a silent success.
func Delete(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uniqueNumber := r.PathValue("uniqueNumber")
		deleteByNumber(svc, w, uniqueNumber)
	}
}

// DeleteByQuery handles the historical DELETE /api/students?unique_number=N
// form still used by older clients. The path-segment form is canonical.
func DeleteByQuery(svc *service.StudentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uniqueNumber := r.URL.Query().Get("unique_number")
		if uniqueNumber == "" {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("unique number is required")))
			return
		}
		deleteByNumber(svc, w, uniqueNumber)
	}
}

func deleteByNumber(svc *service.StudentService, w http.ResponseWriter, uniqueNumber string) {
	slog.Info("deleting a student", slog.String("uniqueNumber", uniqueNumber))

	if err := svc.DeleteStudent(uniqueNumber); err != nil {
		if !errors.Is(err, storage.ErrStudentNotFound) {
			slog.Error("error deleting student",
				slog.String("uniqueNumber", uniqueNumber),
				slog.String("error", err.Error()))
		}
		writeServiceError(w, err)
		return
	}

	slog.Info("student deleted", slog.String("uniqueNumber", uniqueNumber))
	response.WriteMessage(w, http.StatusOK, msgDeleted)
}
