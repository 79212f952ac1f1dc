// Package router assembles the route table and middleware stack.
package router

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/handlers/health"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/storage"
)

// New returns the API handler.
//
// Route table:
//
//	GET    /students       → list all students
//	GET    /student/{id}   → get one student
//	POST   /student        → create a student
//	PUT    /student/{id}   → replace a student's fields
//	DELETE /student/{id}   → delete a student
//	GET    /healthz        → storage ping
func New(store storage.Storage, log *slog.Logger, cors config.CORS) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /students", student.GetList(store))
	mux.HandleFunc("GET /student/{id}", student.GetByID(store))
	mux.HandleFunc("POST /student", student.New(store))
	mux.HandleFunc("PUT /student/{id}", student.Update(store))
	mux.HandleFunc("DELETE /student/{id}", student.Delete(store))
	mux.HandleFunc("GET /healthz", health.Check(store))

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recover(log),
		middleware.CORS(cors.AllowedOrigins),
	)
}
