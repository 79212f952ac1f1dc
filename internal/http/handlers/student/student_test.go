package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// fakeStore records the last call and returns canned results.
type fakeStore struct {
	students []types.Student
	student  types.Student
	newID    int64
	ok       bool
	err      error

	gotID     int64
	gotFields types.StudentFields
}

func (f *fakeStore) CreateStudent(_ context.Context, fields types.StudentFields) (int64, error) {
	f.gotFields = fields
	return f.newID, f.err
}

func (f *fakeStore) GetStudentByID(_ context.Context, id int64) (types.Student, error) {
	f.gotID = id
	return f.student, f.err
}

func (f *fakeStore) GetStudents(context.Context) ([]types.Student, error) {
	return f.students, f.err
}

func (f *fakeStore) UpdateStudentByID(_ context.Context, id int64, fields types.StudentFields) (bool, error) {
	f.gotID, f.gotFields = id, fields
	return f.ok, f.err
}

func (f *fakeStore) DeleteStudentByID(_ context.Context, id int64) (bool, error) {
	f.gotID = id
	return f.ok, f.err
}

func (f *fakeStore) Ping(context.Context) error { return f.err }
func (f *fakeStore) Close() error               { return nil }

const thomas = `{"name": "Thomas Smith", "sex": "male", "age": 27, "siblings": 2, "class": 2, "gpa": 10.0}`

func serve(t *testing.T, store storage.Storage, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /students", GetList(store))
	mux.HandleFunc("GET /student/{id}", GetByID(store))
	mux.HandleFunc("POST /student", New(store))
	mux.HandleFunc("PUT /student/{id}", Update(store))
	mux.HandleFunc("DELETE /student/{id}", Delete(store))

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestGetList(t *testing.T) {
	store := &fakeStore{students: []types.Student{
		{UUID: 1, Name: "Thomas Smith", Sex: "male", Age: 27, Siblings: 2, Class: 2, GPA: 10},
		{UUID: 2, Name: "Steven Alton", Sex: "male", Age: 26, Siblings: 1, Class: 2, GPA: 5.4},
	}}

	rec := serve(t, store, http.MethodGet, "/students", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	got := decode[[]types.Student](t, rec)
	if len(got) != 2 || got[1] != store.students[1] {
		t.Errorf("body = %+v", got)
	}
}

func TestGetListEmpty(t *testing.T) {
	rec := serve(t, &fakeStore{students: []types.Student{}}, http.MethodGet, "/students", "")

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestGetByID(t *testing.T) {
	store := &fakeStore{student: types.Student{UUID: 1, Name: "Thomas Smith", Class: 2}}

	rec := serve(t, store, http.MethodGet, "/student/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.gotID != 1 {
		t.Errorf("store got id %d, want 1", store.gotID)
	}

	got := decode[map[string]any](t, rec)
	for _, key := range []string{"uuid", "name", "sex", "age", "siblings", "class", "gpa"} {
		if _, ok := got[key]; !ok {
			t.Errorf("response missing %q: %v", key, got)
		}
	}
}

func TestCreate(t *testing.T) {
	store := &fakeStore{newID: 7}

	rec := serve(t, store, http.MethodPost, "/student", thomas)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	got := decode[map[string]int64](t, rec)
	if got["uuid"] != 7 {
		t.Errorf("uuid = %d, want 7", got["uuid"])
	}
	if want := (types.Student{Name: "Thomas Smith", Sex: "male", Age: 27, Siblings: 2, Class: 2, GPA: 10}); store.gotFields.Student(0) != want {
		t.Errorf("store got %+v", store.gotFields.Student(0))
	}
}

func TestUpdateIgnoresBodyUUID(t *testing.T) {
	store := &fakeStore{ok: true}
	body := `{"uuid": 99, "name": "Charlie Chaplin", "sex": "male", "age": 27, "siblings": 0, "class": 2, "gpa": 0}`

	rec := serve(t, store, http.MethodPut, "/student/3", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if store.gotID != 3 {
		t.Errorf("store got id %d, want 3", store.gotID)
	}
	if got := decode[map[string]bool](t, rec); !got["success"] {
		t.Errorf("success = false, want true")
	}
}

func TestSuccessFlag(t *testing.T) {
	tests := []struct {
		method string
		body   string
		ok     bool
	}{
		{http.MethodPut, thomas, true},
		{http.MethodPut, thomas, false},
		{http.MethodDelete, "", true},
		{http.MethodDelete, "", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %v", tt.method, tt.ok), func(t *testing.T) {
			rec := serve(t, &fakeStore{ok: tt.ok}, tt.method, "/student/1", tt.body)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := decode[map[string]bool](t, rec); got["success"] != tt.ok {
				t.Errorf("success = %v, want %v", got["success"], tt.ok)
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		wantMsg string
	}{
		{"empty body", http.MethodPost, "/student", "", "request body is empty"},
		{"malformed json", http.MethodPost, "/student", "{name:", "not valid JSON"},
		{"wrong type", http.MethodPost, "/student", `{"age": "old"}`, "not valid JSON"},
		{"missing fields", http.MethodPost, "/student", `{"name": "Ann", "sex": "f", "age": 20, "class": 1}`,
			"field siblings is required, field gpa is required"},
		{"null field", http.MethodPut, "/student/1", `{"name": null, "sex": "f", "age": 20, "siblings": 0, "class": 1, "gpa": 1}`,
			"field name is required"},
		{"non-integer id on get", http.MethodGet, "/student/abc", "", "invalid id"},
		{"non-integer id on put", http.MethodPut, "/student/1.5", thomas, "invalid id"},
		{"non-integer id on delete", http.MethodDelete, "/student/x", "", "invalid id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			rec := serve(t, store, tt.method, tt.target, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			got := decode[map[string]string](t, rec)
			if got["status"] != "error" || !strings.Contains(got["error"], tt.wantMsg) {
				t.Errorf("body = %v, want error containing %q", got, tt.wantMsg)
			}
			if store.gotID != 0 || store.gotFields.Name != nil {
				t.Error("store was called for an invalid request")
			}
		})
	}
}

func TestStoreErrorMapping(t *testing.T) {
	engineErr := &storage.Error{Op: "exec", Err: errors.New("disk I/O error: /var/db/students.db")}

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", http.MethodGet, "/student/5", "",
			fmt.Errorf("no student with uuid 5: %w", storage.ErrNotFound), http.StatusNotFound, "student not found"},
		{"conflict on create", http.MethodPost, "/student", thomas,
			fmt.Errorf("exec: %w", storage.ErrConflict), http.StatusConflict, "already exists"},
		{"conflict on update", http.MethodPut, "/student/1", thomas,
			storage.ErrConflict, http.StatusConflict, "already exists"},
		{"store validation", http.MethodPost, "/student", thomas,
			&storage.ValidationError{Fields: []string{"gpa"}}, http.StatusBadRequest, "field gpa is required"},
		{"storage fault on list", http.MethodGet, "/students", "", engineErr, http.StatusInternalServerError, "internal storage error"},
		{"storage fault on delete", http.MethodDelete, "/student/1", "", engineErr, http.StatusInternalServerError, "internal storage error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &fakeStore{err: tt.err}, tt.method, tt.target, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.wantMsg) {
				t.Errorf("body = %s, want %q", body, tt.wantMsg)
			}
			if strings.Contains(body, "disk I/O") {
				t.Errorf("engine error leaked to client: %s", body)
			}
		})
	}
}
