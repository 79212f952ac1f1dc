// Package student contains the HTTP handlers for the Student resource.
//
// Each exported function is a factory: it receives the store once, at
// route registration, and returns the http.HandlerFunc that serves every
// request. Nothing is shared between requests except that store.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

var errInternal = errors.New("internal storage error")

// New handles POST /student.
//
// Request body: all six fields, e.g.
//
//	{ "name": "Ann", "sex": "f", "age": 20, "siblings": 0, "class": 1, "gpa": 9.0 }
//
// Success (200): { "uuid": 1 }. Missing fields give 400, a taken name 409.
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		fields, ok := decodeFields(w, r)
		if !ok {
			return
		}

		lastID, err := store.CreateStudent(r.Context(), fields)
		if err != nil {
			writeStoreError(w, r, "create student", err)
			return
		}

		slog.Info("student created", slog.Int64("uuid", lastID))
		response.WriteJSON(w, http.StatusOK, map[string]int64{"uuid": lastID})
	}
}

// GetByID handles GET /student/{id}. An unknown id gives 404.
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("uuid", id))

		student, err := store.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, "get student", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /students. An empty table gives [] (not null).
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents(r.Context())
		if err != nil {
			writeStoreError(w, r, "list students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /student/{id}. The body must carry all six fields;
// a uuid in the body is ignored.
//
// Success (200): { "success": true|false }, false when the id is unknown.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("uuid", id))

		fields, ok := decodeFields(w, r)
		if !ok {
			return
		}

		updated, err := store.UpdateStudentByID(r.Context(), id, fields)
		if err != nil {
			writeStoreError(w, r, "update student", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]bool{"success": updated})
	}
}

// Delete handles DELETE /student/{id}.
//
// Success (200): { "success": true|false }, false when the id is unknown.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("uuid", id))

		deleted, err := store.DeleteStudentByID(r.Context(), id)
		if err != nil {
			writeStoreError(w, r, "delete student", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]bool{"success": deleted})
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

// decodeFields reads and validates the six-field payload, answering 400
// itself when the body is unusable.
func decodeFields(w http.ResponseWriter, r *http.Request) (types.StudentFields, bool) {
	var fields types.StudentFields

	err := json.NewDecoder(r.Body).Decode(&fields)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return fields, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is not valid JSON for a student")))
		return fields, false
	}

	if err := storage.Validator().Struct(fields); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
			return fields, false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return fields, false
	}

	return fields, true
}

// writeStoreError maps store errors onto statuses. Engine details are
// logged and replaced with a generic message.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *storage.ValidationError

	switch {
	case errors.As(err, &verr):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(verr))
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(storage.ErrNotFound))
	case errors.Is(err, storage.ErrConflict):
		response.WriteJSON(w, http.StatusConflict, response.GeneralError(storage.ErrConflict))
	default:
		slog.Error("storage failure",
			slog.String("op", op),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errInternal))
	}
}
