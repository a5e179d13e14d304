// routes/routes.go
package routes

import (
	"net/http"

	"bootcamp-api/controllers"
	"bootcamp-api/middleware"
	"bootcamp-api/utils"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Controllers groups every handler set the router serves.
type Controllers struct {
	Bootcamps *controllers.BootcampController
	Courses   *controllers.CourseController
	Users     *controllers.UserController
	Health    *controllers.HealthController
	Tokens    *utils.TokenIssuer
	UploadDir string
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers) {
	router.HandleFunc("/health", c.Health.Health).Methods("GET")
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(c.UploadDir)))).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Bootcamp routes
	api.HandleFunc("/bootcamps", c.Bootcamps.GetBootcamps).Methods("GET")
	api.HandleFunc("/bootcamps", c.Bootcamps.CreateBootcamp).Methods("POST")
	api.HandleFunc("/bootcamps/radius/{zipcode}/{distance}", c.Bootcamps.GetBootcampsInRadius).Methods("GET")
	api.HandleFunc("/bootcamps/{id}", c.Bootcamps.GetBootcamp).Methods("GET")
	api.HandleFunc("/bootcamps/{id}", c.Bootcamps.UpdateBootcamp).Methods("PUT")
	api.HandleFunc("/bootcamps/{id}", c.Bootcamps.DeleteBootcamp).Methods("DELETE")
	api.HandleFunc("/bootcamps/{id}/photo", c.Bootcamps.UploadBootcampPhoto).Methods("PUT")

	// Course routes, also reachable under their bootcamp
	api.HandleFunc("/bootcamps/{bootcampId}/courses", c.Courses.GetCourses).Methods("GET")
	api.HandleFunc("/bootcamps/{bootcampId}/courses", c.Courses.AddCourse).Methods("POST")
	api.HandleFunc("/courses", c.Courses.GetCourses).Methods("GET")
	api.HandleFunc("/courses/{id}", c.Courses.GetCourse).Methods("GET")
	api.HandleFunc("/courses/{id}", c.Courses.UpdateCourse).Methods("PUT")
	api.HandleFunc("/courses/{id}", c.Courses.DeleteCourse).Methods("DELETE")

	// Auth routes
	api.HandleFunc("/auth/register", c.Users.Register).Methods("POST")
	protected := api.PathPrefix("/auth").Subrouter()
	protected.Use(middleware.Protect(c.Tokens))
	protected.HandleFunc("/me", c.Users.GetMe).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, r, utils.NotFound("Route %s not found", r.URL.Path))
	})
}

// NewHandler builds the router and wraps it with request ids, panic recovery and,
// when logRequests is set, one log line per request.
func NewHandler(c Controllers, logger zerolog.Logger, logRequests bool) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, c)

	var h http.Handler = middleware.Recover(router)
	if logRequests {
		h = middleware.Logger(h)
	}
	return middleware.RequestID(logger)(h)
}
